package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vango-dev/navtree/pkg/idtree"
)

// Structural errors, re-exported so callers of this package need not import
// idtree.
var (
	ErrUnknownNode      = idtree.ErrUnknownNode
	ErrIllegalOperation = idtree.ErrIllegalOperation
)

// CodeSegmentNotFound is the NavigationError code for a path that matches no
// route.
const CodeSegmentNotFound = "SEGMENT_NOT_FOUND"

// NavigationError reports a path that could not be resolved. It is the only
// error a navigation consumer is expected to recover from, usually by
// rendering Fallback.
type NavigationError struct {
	Code     string
	Status   int
	Path     string
	Fallback *View
}

// Error implements the error interface.
func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation failed: %s (%d): %q", e.Code, e.Status, e.Path)
}

func notFound(path string, fallback *View) *NavigationError {
	return &NavigationError{
		Code:     CodeSegmentNotFound,
		Status:   http.StatusNotFound,
		Path:     path,
		Fallback: fallback,
	}
}

// AsNavigationError extracts a NavigationError from err's chain.
func AsNavigationError(err error) (*NavigationError, bool) {
	var navErr *NavigationError
	if errors.As(err, &navErr) {
		return navErr, true
	}
	return nil, false
}

// IsNavigationError reports whether err's chain holds a *NavigationError.
func IsNavigationError(err error) bool {
	_, ok := AsNavigationError(err)
	return ok
}

// IsNotFound reports whether err is a SEGMENT_NOT_FOUND navigation error.
func IsNotFound(err error) bool {
	navErr, ok := AsNavigationError(err)
	return ok && navErr.Code == CodeSegmentNotFound
}
