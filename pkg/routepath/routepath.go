// Package routepath holds the path handling shared by the route tree and the
// outer layers that feed it.
//
// Route paths are normalized by stripping exactly one leading and one
// trailing "/". Interior slashes are never collapsed: "a//b" has an empty
// middle segment, which simply fails to match any registered route.
package routepath

import (
	"errors"
	"strings"
)

// Path validation errors.
var (
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
)

// Normalize strips a single leading and a single trailing "/".
//
//	Normalize("/users/42/") == "users/42"
//	Normalize("/")          == ""
//	Normalize("//a//")      == "/a/"
func Normalize(path string) string {
	path = strings.TrimPrefix(path, "/")
	return strings.TrimSuffix(path, "/")
}

// Segments normalizes path and splits it on "/". The empty path yields a
// single empty segment, which addresses the index route.
func Segments(path string) []string {
	return strings.Split(Normalize(path), "/")
}

// Join builds an absolute path from segments.
func Join(segments ...string) string {
	return "/" + strings.Join(segments, "/")
}

// CutQuery splits a segment at its first "?". found reports whether a
// separator was present.
func CutQuery(segment string) (value, params string, found bool) {
	return strings.Cut(segment, "?")
}

// SplitPathAndQuery splits a path into path and query components.
// The query is returned without the leading "?".
func SplitPathAndQuery(input string) (path, query string) {
	path, query, _ = strings.Cut(input, "?")
	return path, query
}

// Validate rejects paths that must never reach the route tree from an
// untrusted source: backslashes, NUL bytes (literal or encoded) and malformed
// percent escapes.
func Validate(path string) error {
	if strings.Contains(path, "\\") {
		return ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		return validatePercentEscapes(path)
	}
	return nil
}

// validatePercentEscapes checks that all percent-escapes are valid.
// Valid escapes are %XX where X is a hex digit (0-9, a-f, A-F).
func validatePercentEscapes(path string) error {
	i := 0
	for i < len(path) {
		if path[i] == '%' {
			if i+2 >= len(path) {
				return ErrInvalidPercentEscape
			}
			if !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
				return ErrInvalidPercentEscape
			}
			i += 3
		} else {
			i++
		}
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
