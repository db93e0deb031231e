// Package manifest loads route trees from HCL files.
//
// A manifest declares the not-found view and a nested set of route blocks.
// Each block label is one path segment:
//
//	not_found {
//	  html = "404.html"
//	}
//
//	route "users" {
//	  html = "users.html"
//	  js   = "users"
//
//	  route ":id" {
//	    capture = single    # single, remainder, or a segment count
//	    name    = "id"      # defaults to the label without ':' or '*'
//	    html    = "user.html"
//	  }
//	}
//
// A label starting with ':' or '*' is a wildcard even without a capture
// attribute, capturing one segment or the remainder respectively. The same
// structure may be written as HCL-JSON in a file ending in ".json".
package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/vango-dev/navtree/pkg/router"
)

// ErrDuplicateNotFound is returned when more than one file of a manifest
// declares a not_found block.
var ErrDuplicateNotFound = errors.New("manifest: not_found declared more than once")

// Manifest is the format-agnostic representation of a set of manifest files.
type Manifest struct {
	// Files lists the files the manifest was read from.
	Files []string

	// NotFound is the fallback view, if one was declared.
	NotFound *router.View

	// Routes are the top-level routes in declaration order.
	Routes []*Route
}

// Route is one declared segment and its children.
type Route struct {
	Segment  string
	View     router.View
	Wildcard router.Wildcard
	Children []*Route

	// DeclRange is where the route was declared, for error messages.
	DeclRange hcl.Range
}

// Build creates a tree holding every route of the manifest. opts are
// applied after the manifest's own not-found view, so they can override it.
func (m *Manifest) Build(opts ...router.TreeOption) (*router.Tree, error) {
	var treeOpts []router.TreeOption
	if m.NotFound != nil {
		treeOpts = append(treeOpts, router.WithNotFound(*m.NotFound))
	}
	tree := router.NewTree(append(treeOpts, opts...)...)

	if err := appendRoutes(tree, "", m.Routes); err != nil {
		return nil, err
	}
	return tree, nil
}

// Apply adds the manifest's routes below parentPath of an existing tree.
// The manifest's not-found view is ignored.
func (m *Manifest) Apply(tree *router.Tree, parentPath string) error {
	return appendRoutes(tree, parentPath, m.Routes)
}

func appendRoutes(tree *router.Tree, parentPath string, routes []*Route) error {
	for _, r := range routes {
		path, err := tree.AppendSegment(parentPath, r.Segment, r.View, r.Wildcard)
		if err != nil {
			return fmt.Errorf("manifest: %s: route %q: %w", r.DeclRange, r.Segment, err)
		}
		if err := appendRoutes(tree, path, r.Children); err != nil {
			return err
		}
	}
	return nil
}

// FromTree captures the routes of tree as a manifest.
func FromTree(tree *router.Tree, notFound *router.View) *Manifest {
	m := &Manifest{NotFound: notFound}

	// Routes come parents first; stack[d] is the latest route at depth d+1.
	var stack []*Route
	for _, r := range tree.Routes() {
		route := &Route{
			Segment:  r.Segment,
			View:     r.View,
			Wildcard: r.Wildcard,
		}
		stack = append(stack[:r.Depth-1], route)
		if r.Depth == 1 {
			m.Routes = append(m.Routes, route)
			continue
		}
		parent := stack[r.Depth-2]
		parent.Children = append(parent.Children, route)
	}
	return m
}

// Count returns the number of routes declared in the manifest.
func (m *Manifest) Count() int {
	var count func([]*Route) int
	count = func(routes []*Route) int {
		n := len(routes)
		for _, r := range routes {
			n += count(r.Children)
		}
		return n
	}
	return count(m.Routes)
}

// implicitWildcard reports the wildcard implied by a segment label alone.
func implicitWildcard(segment string) (router.Wildcard, bool) {
	switch {
	case strings.HasPrefix(segment, ":"):
		return router.Capture(segment[1:], router.Single), true
	case strings.HasPrefix(segment, "*"):
		return router.Capture(segment[1:], router.Remainder), true
	default:
		return router.Literal, false
	}
}
