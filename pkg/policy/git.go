package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"mercator-hq/sieve/pkg/config"
)

// GitSource keeps a policy file from a Git repository current. The
// repository is cloned locally and polled for new commits; each new commit
// reloads the policy file. A commit with an invalid policy leaves the
// previous policy in effect.
type GitSource struct {
	cfg       config.GitPolicyConfig
	holder    *Holder
	auth      GitAuth
	localPath string
	logger    *slog.Logger

	mu      sync.Mutex
	repo    *gogit.Repository
	lastSHA string

	// OnReload, when set, is called after every load attempt.
	OnReload ReloadHook
}

// NewGitSource validates cfg and prepares a source. Nothing is cloned until
// Clone is called.
func NewGitSource(cfg config.GitPolicyConfig, holder *Holder, logger *slog.Logger) (*GitSource, error) {
	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	if cfg.Branch == "" {
		return nil, fmt.Errorf("branch cannot be empty")
	}
	if cfg.File == "" {
		return nil, fmt.Errorf("policy file path cannot be empty")
	}
	if holder == nil {
		return nil, fmt.Errorf("holder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	auth, err := NewGitAuth(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultGitTimeout
	}

	localPath := cfg.LocalPath
	if localPath == "" {
		localPath = filepath.Join(os.TempDir(), "sieve-policies")
	}

	return &GitSource{
		cfg:       cfg,
		holder:    holder,
		auth:      auth,
		localPath: localPath,
		logger:    logger.With("component", "policy.git", "repository", cfg.Repository),
	}, nil
}

// Clone clones the repository, or opens an existing clone at the local path.
func (s *GitSource) Clone(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(filepath.Join(s.localPath, ".git")); err == nil {
		repo, err := gogit.PlainOpen(s.localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo: %w", err)
		}
		s.repo = repo
		return nil
	}

	if err := os.MkdirAll(s.localPath, 0755); err != nil {
		return fmt.Errorf("failed to create repository directory: %w", err)
	}

	auth, err := s.auth.Method()
	if err != nil {
		return fmt.Errorf("failed to get auth: %w", err)
	}

	cloneCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	repo, err := gogit.PlainCloneContext(cloneCtx, s.localPath, false, &gogit.CloneOptions{
		URL:           s.cfg.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(s.cfg.Branch),
		SingleBranch:  true,
		Depth:         s.cfg.Depth,
		Auth:          auth,
	})
	if err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}

	s.repo = repo
	s.logger.Info("Policy repository cloned", "branch", s.cfg.Branch, "auth", s.auth.Type())
	return nil
}

// Head returns the SHA of the checked-out commit.
func (s *GitSource) Head() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.head()
}

func (s *GitSource) head() (string, error) {
	if s.repo == nil {
		return "", fmt.Errorf("repository not initialized, call Clone() first")
	}
	ref, err := s.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

// Load reads the policy file from the working tree and stores it. The
// version is the short commit SHA.
func (s *GitSource) Load() error {
	s.mu.Lock()
	sha, err := s.head()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	path := filepath.Join(s.localPath, s.cfg.File)
	rules, _, err := LoadFile(path)
	if s.OnReload != nil {
		s.OnReload("git", err)
	}
	if err != nil {
		s.logger.Error("Failed to load policy from commit, keeping previous",
			"commit", shortSHA(sha),
			"error", err,
		)
		return err
	}

	s.holder.Store(rules, shortSHA(sha), s.cfg.Repository+"/"+s.cfg.File)

	s.mu.Lock()
	s.lastSHA = sha
	s.mu.Unlock()

	s.logger.Info("Policy loaded from repository", "commit", shortSHA(sha), "file", s.cfg.File)
	return nil
}

// Pull fetches new commits. It reports whether HEAD moved.
func (s *GitSource) Pull(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, err := s.head()
	if err != nil {
		return false, err
	}

	worktree, err := s.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	auth, err := s.auth.Method()
	if err != nil {
		return false, fmt.Errorf("failed to get auth: %w", err)
	}

	pullCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	err = worktree.PullContext(pullCtx, &gogit.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(s.cfg.Branch),
		SingleBranch:  true,
		Auth:          auth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return false, fmt.Errorf("failed to pull: %w", err)
	}

	to, err := s.head()
	if err != nil {
		return false, err
	}
	return from != to, nil
}

// Watch polls the repository until ctx is done, reloading the policy when
// new commits arrive. Pull and load errors are logged and polling continues.
func (s *GitSource) Watch(ctx context.Context) error {
	interval := s.cfg.PollInterval
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Policy repository watcher started", "poll_interval", interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Policy repository watcher stopped")
			return nil
		case <-ticker.C:
			changed, err := s.Pull(ctx)
			if err != nil {
				s.logger.Error("Policy repository pull failed", "error", err)
				continue
			}
			if !changed {
				continue
			}
			_ = s.Load()
		}
	}
}

// LastLoadedCommit returns the SHA of the last commit whose policy loaded.
func (s *GitSource) LastLoadedCommit() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSHA
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
