package policy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultMaxFileSize bounds the size of a policy file.
const DefaultMaxFileSize int64 = 1 << 20

// LoadFile reads, parses and validates a policy file. The returned version
// is a content hash, stable for identical files.
func LoadFile(path string) (*Rules, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", &LoadError{Path: path, Message: "cannot stat file", Cause: err}
	}
	if info.IsDir() {
		return nil, "", &LoadError{Path: path, Message: "path is a directory"}
	}
	if info.Size() > DefaultMaxFileSize {
		return nil, "", &LoadError{
			Path:    path,
			Message: fmt.Sprintf("file size %d exceeds limit %d", info.Size(), DefaultMaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", &LoadError{Path: path, Message: "cannot read file", Cause: err}
	}

	rules, err := Parse(data)
	if err != nil {
		return nil, "", &LoadError{Path: path, Message: "invalid policy", Cause: err}
	}
	return rules, Version(data), nil
}

// Parse decodes a YAML policy document and validates it. Unknown fields are
// rejected. An empty document yields an empty policy, which emits everything.
func Parse(data []byte) (*Rules, error) {
	rules := &Rules{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(rules); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}

	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return rules, nil
}

// Version returns the content hash used as a policy version.
func Version(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:12]
}
