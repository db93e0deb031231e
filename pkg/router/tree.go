package router

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vango-dev/navtree/pkg/idregistry"
	"github.com/vango-dev/navtree/pkg/idtree"
	"github.com/vango-dev/navtree/pkg/routepath"
)

// routeNode is the data held by each node of the underlying idtree.
type routeNode struct {
	// segment is the path segment this node is registered under
	segment string

	view     View
	wildcard Wildcard

	// childByName indexes literal children by segment
	childByName map[string]idregistry.ID

	// wildcardChild is the capturing child, or None
	wildcardChild idregistry.ID
}

func newRouteNode(segment string, view View, wc Wildcard) *routeNode {
	if !wc.IsContainer {
		wc = Literal
	}
	return &routeNode{
		segment:     segment,
		view:        view,
		wildcard:    wc,
		childByName: make(map[string]idregistry.ID),
	}
}

// child returns the child registered under segment, literal or wildcard.
func (n *routeNode) child(t *Tree, segment string) (idregistry.ID, bool) {
	if id, ok := n.childByName[segment]; ok {
		return id, true
	}
	if !n.wildcardChild.IsNone() && t.node(n.wildcardChild).segment == segment {
		return n.wildcardChild, true
	}
	return idregistry.None, false
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithNotFound sets the view attached to every SEGMENT_NOT_FOUND error.
func WithNotFound(view View) TreeOption {
	return func(t *Tree) {
		v := view
		t.notFound = &v
	}
}

// Tree maps route paths to views. Literal segments are looked up by name;
// each node may additionally have one wildcard child that captures one,
// a fixed number, or all remaining segments.
//
// A Tree is not safe for concurrent use.
type Tree struct {
	nodes    *idtree.Tree[*routeNode]
	root     idregistry.ID
	notFound *View
}

// NewTree creates a tree holding only the root. The root is never a route;
// register "" under it for the index page.
func NewTree(opts ...TreeOption) *Tree {
	t := &Tree{nodes: idtree.New[*routeNode]()}
	// The root of an empty tree with generated IDs cannot fail.
	t.root, _ = t.nodes.AppendChild(idregistry.None, newRouteNode("", View{}, Literal), idregistry.None)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// node returns the data of a live node.
func (t *Tree) node(id idregistry.ID) *routeNode {
	n, _ := t.nodes.NodeData(id)
	return n
}

// locate finds the node registered under path. The empty path is the root;
// any other path, including "/", is split into segments.
func (t *Tree) locate(op, path string) (idregistry.ID, []string, error) {
	if strings.TrimSpace(path) == "" {
		return t.root, nil, nil
	}
	segments := routepath.Segments(strings.TrimSpace(path))
	current := t.root
	for _, seg := range segments {
		id, ok := t.node(current).child(t, seg)
		if !ok {
			return idregistry.None, nil, fmt.Errorf("router: %s %q: %w", op, path, ErrUnknownNode)
		}
		current = id
	}
	return current, segments, nil
}

// AppendSegment registers segmentName under the route at parentPath and
// returns the new route's absolute path. An empty parentPath means the
// root. Only the root may have a child with an empty name (the index route).
func (t *Tree) AppendSegment(parentPath, segmentName string, view View, wc Wildcard) (string, error) {
	parentID, parentSegments, err := t.locate("append segment", parentPath)
	if err != nil {
		return "", err
	}
	parent := t.node(parentID)

	name := strings.TrimPrefix(strings.TrimSpace(segmentName), "/")
	switch {
	case strings.Contains(name, "/"):
		return "", fmt.Errorf("router: append segment %q: %w: name contains '/'", segmentName, ErrIllegalOperation)
	case name == "" && parentID != t.root:
		return "", fmt.Errorf("router: append segment under %q: %w: empty segment name", parentPath, ErrIllegalOperation)
	}
	if _, exists := parent.child(t, name); exists {
		return "", fmt.Errorf("router: append segment %q under %q: %w: duplicate segment", name, parentPath, ErrIllegalOperation)
	}

	if wc.IsContainer {
		if !parent.wildcardChild.IsNone() {
			return "", fmt.Errorf("router: append segment %q under %q: %w: parent already has a wildcard child", name, parentPath, ErrIllegalOperation)
		}
		if wc.Arity.kind == arityCount && wc.Arity.n <= 0 {
			return "", fmt.Errorf("router: append segment %q: %w: capture count must be positive", name, ErrIllegalOperation)
		}
		if wc.ValueName == "" {
			wc.ValueName = strings.TrimLeft(name, ":*")
		}
		if wc.ValueName == "" {
			return "", fmt.Errorf("router: append segment %q: %w: wildcard needs a value name", name, ErrIllegalOperation)
		}
		if wc.Arity.kind == arityUnset {
			wc.Arity = Single
		}
	}

	id, err := t.nodes.AppendChild(parentID, newRouteNode(name, view, wc), idregistry.None)
	if err != nil {
		return "", err
	}
	if wc.IsContainer {
		parent.wildcardChild = id
	} else {
		parent.childByName[name] = id
	}

	return routepath.Join(append(parentSegments, name)...), nil
}

// RemoveSegment unregisters the route at path together with every route
// below it.
func (t *Tree) RemoveSegment(path string) error {
	id, _, err := t.locate("remove segment", path)
	if err != nil {
		return err
	}
	if id == t.root {
		return fmt.Errorf("router: remove segment: %w: cannot remove the root", ErrIllegalOperation)
	}

	parentID, err := t.nodes.ParentID(id)
	if err != nil {
		return err
	}
	parent := t.node(parentID)
	if parent.wildcardChild == id {
		parent.wildcardChild = idregistry.None
	} else {
		delete(parent.childByName, t.node(id).segment)
	}
	return t.nodes.DeleteSubtree(id)
}

// Resolve walks path from the root and returns the view and captures of the
// route it lands on.
//
// At every step a literal child named after the next segment wins. Failing
// that, the current node's wildcard child, if any, captures segments
// according to its arity; wildcards never capture empty segments. A
// remainder capture ends the walk. A path that
// cannot be walked, or that ends on the root, fails with a
// *NavigationError carrying CodeSegmentNotFound.
func (t *Tree) Resolve(path string) (*Match, error) {
	segments := routepath.Segments(path)
	ctx := make(Context)
	pattern := make([]string, 0, len(segments))
	current := t.root

	for i := 0; i < len(segments); {
		n := t.node(current)
		seg := segments[i]

		// WALKING_LITERAL
		if id, ok := n.childByName[seg]; ok {
			current = id
			pattern = append(pattern, seg)
			i++
			continue
		}
		if n.wildcardChild.IsNone() {
			return nil, notFound(path, t.notFound)
		}

		// CAPTURING: an empty segment never matches a wildcard.
		if seg == "" {
			return nil, notFound(path, t.notFound)
		}
		w := t.node(n.wildcardChild)
		name := w.wildcard.ValueName
		switch arity := w.wildcard.Arity; {
		case arity.IsRemainder():
			c, ok := captureRemainder(segments[i:])
			if !ok {
				return nil, notFound(path, t.notFound)
			}
			ctx[name] = c
			i = len(segments)
		case arity.kind == arityCount:
			if i+arity.n > len(segments) || slices.Contains(segments[i:i+arity.n], "") {
				return nil, notFound(path, t.notFound)
			}
			values := make([]string, arity.n)
			copy(values, segments[i:i+arity.n])
			ctx[name] = CapturedValue{Kind: CaptureSlice, Values: values}
			i += arity.n
		default:
			ctx[name] = CapturedValue{Kind: CaptureString, Value: seg}
			i++
		}
		current = n.wildcardChild
		pattern = append(pattern, w.segment)
	}

	if current == t.root {
		return nil, notFound(path, t.notFound)
	}
	return &Match{
		Path:    path,
		Route:   routepath.Join(pattern...),
		View:    t.node(current).view,
		Context: ctx,
	}, nil
}

// captureRemainder joins rest back into a path and splits it at the first
// '?', moving the query text into ParamStr. ok is false when the path part
// has an empty segment. The segment holding the '?' may be empty.
func captureRemainder(rest []string) (c CapturedValue, ok bool) {
	value, params, found := routepath.CutQuery(strings.Join(rest, "/"))

	parts := strings.Split(value, "/")
	if found {
		parts = parts[:len(parts)-1]
	}
	if slices.Contains(parts, "") {
		return CapturedValue{}, false
	}

	c = CapturedValue{Kind: CaptureRemainder, Value: value}
	if found {
		c.ParamStr = params
		c.HasParams = true
	}
	return c, true
}

// Lookup returns the view registered at path without any wildcard
// matching: every segment must name a registered child, wildcard children
// included.
func (t *Tree) Lookup(path string) (View, Wildcard, error) {
	id, _, err := t.locate("lookup", path)
	if err != nil {
		return View{}, Wildcard{}, err
	}
	n := t.node(id)
	return n.view, n.wildcard, nil
}

// UpdateView replaces the view registered at path.
func (t *Tree) UpdateView(path string, view View) error {
	id, _, err := t.locate("update view", path)
	if err != nil {
		return err
	}
	if id == t.root {
		return fmt.Errorf("router: update view: %w: the root has no view", ErrIllegalOperation)
	}
	t.node(id).view = view
	return nil
}

// Route describes one registered route.
type Route struct {
	Path     string   `json:"path"`
	Segment  string   `json:"segment"`
	View     View     `json:"view"`
	Capture  string   `json:"capture,omitempty"`
	Arity    string   `json:"arity,omitempty"`
	Depth    int      `json:"depth"`
	Wildcard Wildcard `json:"-"`
}

// Routes lists every registered route in tree order, parents first.
func (t *Tree) Routes() []Route {
	var routes []Route
	var stack []string
	t.nodes.Walk(func(_ idregistry.ID, n *routeNode, depth int) bool {
		if depth == 0 {
			return true
		}
		stack = append(stack[:depth-1], n.segment)

		r := Route{
			Path:     routepath.Join(stack...),
			Segment:  n.segment,
			View:     n.view,
			Depth:    depth,
			Wildcard: n.wildcard,
		}
		if n.wildcard.IsContainer {
			r.Capture = n.wildcard.ValueName
			r.Arity = n.wildcard.Arity.String()
		}
		routes = append(routes, r)
		return true
	})
	return routes
}

// Len returns the number of registered routes, not counting the root.
func (t *Tree) Len() int {
	return t.nodes.Len() - 1
}

// NotFound returns a copy of the fallback view, or nil when none is set.
func (t *Tree) NotFound() *View {
	if t.notFound == nil {
		return nil
	}
	v := *t.notFound
	return &v
}
