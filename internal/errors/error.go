package errors

import (
	"bufio"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
)

// Category represents the type of error.
type Category string

const (
	CategoryTree       Category = "tree"
	CategoryNavigation Category = "navigation"
	CategoryManifest   Category = "manifest"
	CategoryAssets     Category = "assets"
	CategoryConfig     Category = "config"
	CategoryCLI        Category = "cli"
	CategoryRequest    Category = "request"
)

// Location represents a source location, usually inside a manifest.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// NavtreeError is a structured error with source location, suggestions, and documentation.
type NavtreeError struct {
	// Code is a unique error identifier (e.g., "E201").
	Code string

	// Category is the error type (tree, navigation, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the source location where the error occurred.
	Location *Location

	// Context contains surrounding source lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example shows the correct approach.
	Example string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *NavtreeError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *NavtreeError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds source location to the error.
func (e *NavtreeError) WithLocation(file string, line, column int) *NavtreeError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithRange sets the location from an HCL source range.
func (e *NavtreeError) WithRange(rng *hcl.Range) *NavtreeError {
	if rng == nil || rng.Filename == "" {
		return e
	}
	return e.WithLocation(rng.Filename, rng.Start.Line, rng.Start.Column)
}

// WithSuggestion adds a fix suggestion to the error.
func (e *NavtreeError) WithSuggestion(s string) *NavtreeError {
	e.Suggestion = s
	return e
}

// WithExample adds an example to the error.
func (e *NavtreeError) WithExample(ex string) *NavtreeError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *NavtreeError) WithDetail(d string) *NavtreeError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *NavtreeError) Wrap(err error) *NavtreeError {
	e.Wrapped = err
	return e
}

func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a NavtreeError from a registered error code.
func New(code string) *NavtreeError {
	template, ok := registry[code]
	if !ok {
		return &NavtreeError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &NavtreeError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		DocURL:     template.DocURL,
	}
}

// Newf creates a new NavtreeError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *NavtreeError {
	return &NavtreeError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a NavtreeError.
func FromError(err error, code string) *NavtreeError {
	if err == nil {
		return nil
	}
	if ne, ok := err.(*NavtreeError); ok {
		return ne
	}
	return New(code).Wrap(err)
}
