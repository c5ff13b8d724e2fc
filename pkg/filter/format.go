package filter

import (
	"strings"

	"mercator-hq/sieve/pkg/callsite"
)

// Formatter renders an emitted request as a single line.
type Formatter func(req callsite.Request) string

// DefaultFormatter renders requests in a stable field order:
//
//	[Error][Action] instance Store.Put category=db tags=[storage,retry]: write failed
//	[Method] class Store.New
//	[Info][Creator] class store.NewStore class=Store
//
// The role is omitted for method traces, category and tags are omitted when
// empty, and the message is omitted when empty. An explicit class is shown
// only when it differs from the owner derived from the signature. Tags are escaped so that
// the list can be split again: a backslash precedes every ',', ']' and '\'
// inside a tag.
func DefaultFormatter(req callsite.Request) string {
	var sb strings.Builder
	sb.Grow(len(req.Signature) + len(req.Message) + 48)

	sb.WriteByte('[')
	sb.WriteString(req.Severity.String())
	sb.WriteByte(']')
	if req.Severity != callsite.MethodName {
		sb.WriteByte('[')
		sb.WriteString(req.Role.String())
		sb.WriteByte(']')
	}

	sb.WriteByte(' ')
	sb.WriteString(req.Kind.String())
	sb.WriteByte(' ')
	sb.WriteString(req.Signature)

	if req.Class != "" && req.Class != callsite.OwnerOf(req.Signature) {
		sb.WriteString(" class=")
		sb.WriteString(req.Class)
	}

	if req.Category != "" {
		sb.WriteString(" category=")
		sb.WriteString(req.Category)
	}

	if len(req.Tags) > 0 {
		sb.WriteString(" tags=[")
		for i, tag := range req.Tags {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(tagEscaper.Replace(tag))
		}
		sb.WriteByte(']')
	}

	if req.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(req.Message)
	}

	return sb.String()
}

var tagEscaper = strings.NewReplacer(`\`, `\\`, `,`, `\,`, `]`, `\]`)

// SplitTags parses the tag list rendered by DefaultFormatter (without the
// surrounding "tags=[" and "]").
func SplitTags(s string) []string {
	if s == "" {
		return nil
	}
	var (
		tags    []string
		current strings.Builder
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ',':
			tags = append(tags, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(tags, current.String())
}
