// Package idtree implements an n-ary tree whose nodes are addressed by
// identifier rather than by reference.
//
// Every node lives in an idregistry.Registry, so any node can be reached in
// O(1) regardless of depth. Children are kept in a siblings.List in
// insertion order. The tree supports inserting a new ancestor above an
// existing node, moving nodes between sibling positions, and deleting whole
// subtrees.
//
//	t := idtree.New[string]()
//	root, _ := t.AppendChild(idregistry.None, "root", idregistry.None)
//	a, _ := t.AppendChild(root, "a", idregistry.None)
//	mid, _ := t.InsertParentAbove(a, "mid", idregistry.None) // root -> mid -> a
//	_ = t.DeleteSubtree(mid)                                  // removes mid and a
//
// A Tree is a single-owner structure and is not safe for concurrent use.
package idtree

import (
	"errors"
	"fmt"

	"github.com/vango-dev/navtree/pkg/idregistry"
	"github.com/vango-dev/navtree/pkg/siblings"
)

var (
	// ErrUnknownNode is returned when an ID does not resolve to a live node.
	ErrUnknownNode = errors.New("unknown node")

	// ErrIllegalOperation is returned for structurally forbidden requests
	// such as a second root or moving the root.
	ErrIllegalOperation = errors.New("illegal tree operation")
)

type node[D any] struct {
	id       idregistry.ID
	data     D
	parent   *node[D]
	slot     *siblings.Node[*node[D]]
	children *siblings.List[*node[D]]
}

func newNode[D any](data D, parent *node[D]) *node[D] {
	n := &node[D]{
		data:     data,
		parent:   parent,
		children: siblings.New[*node[D]](),
	}
	n.slot = siblings.NewNode(n)
	return n
}

// Tree is an identifier-indexed n-ary tree.
type Tree[D any] struct {
	root     *node[D]
	registry *idregistry.Registry[*node[D]]
}

// New creates an empty tree. The options configure ID generation for the
// tree's registry.
func New[D any](opts ...idregistry.Option) *Tree[D] {
	return &Tree[D]{
		registry: idregistry.New[*node[D]](opts...),
	}
}

func (t *Tree[D]) register(data D, id idregistry.ID, parent *node[D]) (*node[D], error) {
	n := newNode(data, parent)
	mapID, err := t.registry.Set(id, n)
	if err != nil {
		return nil, err
	}
	n.id = mapID
	return n, nil
}

func (t *Tree[D]) lookup(op string, id idregistry.ID) (*node[D], error) {
	n, ok := t.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("idtree: %s: %w: %v", op, ErrUnknownNode, id)
	}
	return n, nil
}

// AppendChild adds a node holding data as the last child of parent and
// returns its ID. With parent set to None on an empty tree the node becomes
// the root. id is used only when the tree requires explicit IDs.
func (t *Tree[D]) AppendChild(parent idregistry.ID, data D, id idregistry.ID) (idregistry.ID, error) {
	if parent.IsNone() {
		if t.root != nil {
			return idregistry.None, fmt.Errorf("idtree: append child: %w: tree already has a root", ErrIllegalOperation)
		}
		n, err := t.register(data, id, nil)
		if err != nil {
			return idregistry.None, err
		}
		t.root = n
		return n.id, nil
	}

	p, err := t.lookup("append child", parent)
	if err != nil {
		return idregistry.None, err
	}
	n, err := t.register(data, id, p)
	if err != nil {
		return idregistry.None, err
	}
	p.children.Append(n.slot)
	return n.id, nil
}

// InsertParentAbove creates a node that takes over descendant's position in
// its parent's children and adopts descendant as its only child. With
// descendant set to None on an empty tree the node becomes the root.
func (t *Tree[D]) InsertParentAbove(descendant idregistry.ID, data D, id idregistry.ID) (idregistry.ID, error) {
	if descendant.IsNone() {
		if t.root != nil {
			return idregistry.None, fmt.Errorf("idtree: insert parent: %w: descendant required once the tree has a root", ErrIllegalOperation)
		}
		n, err := t.register(data, id, nil)
		if err != nil {
			return idregistry.None, err
		}
		t.root = n
		return n.id, nil
	}

	d, err := t.lookup("insert parent", descendant)
	if err != nil {
		return idregistry.None, err
	}
	if d == t.root {
		return idregistry.None, fmt.Errorf("idtree: insert parent: %w: cannot insert above the root", ErrIllegalOperation)
	}

	n, err := t.register(data, id, d.parent)
	if err != nil {
		return idregistry.None, err
	}
	if _, err := d.parent.children.Splice(d.slot.Prev(), d.slot.Next(), n.slot, 1); err != nil {
		t.registry.Remove(n.id)
		return idregistry.None, err
	}
	n.children.Append(d.slot)
	d.parent = n
	return n.id, nil
}

// MoveNodeBefore moves node so it becomes the sibling immediately before
// target, under target's parent. Moving a node onto itself returns its ID
// unchanged.
func (t *Tree[D]) MoveNodeBefore(nodeID, targetID idregistry.ID) (idregistry.ID, error) {
	return t.move(nodeID, targetID, true)
}

// MoveNodeAfter moves node so it becomes the sibling immediately after
// target, under target's parent.
func (t *Tree[D]) MoveNodeAfter(nodeID, targetID idregistry.ID) (idregistry.ID, error) {
	return t.move(nodeID, targetID, false)
}

func (t *Tree[D]) move(nodeID, targetID idregistry.ID, before bool) (idregistry.ID, error) {
	n, err := t.lookup("move node", nodeID)
	if err != nil {
		return idregistry.None, err
	}
	target, err := t.lookup("move node target", targetID)
	if err != nil {
		return idregistry.None, err
	}
	switch {
	case n == t.root:
		return idregistry.None, fmt.Errorf("idtree: move node: %w: cannot move the root", ErrIllegalOperation)
	case target == t.root:
		return idregistry.None, fmt.Errorf("idtree: move node: %w: cannot move relative to the root", ErrIllegalOperation)
	case n == target:
		return n.id, nil
	case isAncestor(n, target):
		return idregistry.None, fmt.Errorf("idtree: move node: %w: %v is an ancestor of %v", ErrIllegalOperation, n.id, target.id)
	}

	n.parent.children.Remove(n.slot)
	list := target.parent.children
	if before {
		list.InsertBefore(target.slot, n.slot, false)
	} else {
		list.InsertAfter(target.slot, n.slot, false)
	}
	n.parent = target.parent
	return n.id, nil
}

// isAncestor reports whether a is a proper ancestor of b.
func isAncestor[D any](a, b *node[D]) bool {
	for p := b.parent; p != nil; p = p.parent {
		if p == a {
			return true
		}
	}
	return false
}

// DeleteSubtree removes the node and all of its descendants. Deleting the
// root empties the tree.
func (t *Tree[D]) DeleteSubtree(id idregistry.ID) error {
	n, err := t.lookup("delete subtree", id)
	if err != nil {
		return err
	}

	if n == t.root {
		t.root = nil
	} else if n.parent != nil {
		n.parent.children.Remove(n.slot)
		n.parent = nil
	}

	t.sweep(n)
	return nil
}

// sweep unregisters every node of the detached subtree rooted at start,
// breadth first. Children are queued before their parent is unlinked, and
// no sibling list is modified while it is being read.
func (t *Tree[D]) sweep(start *node[D]) {
	queue := siblings.NewQueue[*node[D]]()
	t.registry.Remove(start.id)
	queue.Enqueue(start)

	for queue.Len() > 0 {
		current, _ := queue.Dequeue()
		for child := range current.children.Values() {
			t.registry.Remove(child.id)
			queue.Enqueue(child)
		}
		current.parent = nil
	}
}

// NodeData returns the data held by a node.
func (t *Tree[D]) NodeData(id idregistry.ID) (D, error) {
	n, err := t.lookup("node data", id)
	if err != nil {
		var zero D
		return zero, err
	}
	return n.data, nil
}

// OverwriteNodeData replaces the data held by a node.
func (t *Tree[D]) OverwriteNodeData(id idregistry.ID, data D) error {
	n, err := t.lookup("overwrite node data", id)
	if err != nil {
		return err
	}
	n.data = data
	return nil
}

// ParentID returns the ID of a node's parent, or None for the root.
func (t *Tree[D]) ParentID(id idregistry.ID) (idregistry.ID, error) {
	n, err := t.lookup("parent id", id)
	if err != nil {
		return idregistry.None, err
	}
	if n.parent == nil {
		return idregistry.None, nil
	}
	return n.parent.id, nil
}

// ChildIDs returns the IDs of a node's children in sibling order.
func (t *Tree[D]) ChildIDs(id idregistry.ID) ([]idregistry.ID, error) {
	n, err := t.lookup("child ids", id)
	if err != nil {
		return nil, err
	}
	ids := make([]idregistry.ID, 0, n.children.Len())
	for child := range n.children.Values() {
		ids = append(ids, child.id)
	}
	return ids, nil
}

// Root returns the root ID, if the tree has one.
func (t *Tree[D]) Root() (idregistry.ID, bool) {
	if t.root == nil {
		return idregistry.None, false
	}
	return t.root.id, true
}

// Len returns the number of live nodes.
func (t *Tree[D]) Len() int {
	return t.registry.Len()
}

// Contains reports whether id names a live node.
func (t *Tree[D]) Contains(id idregistry.ID) bool {
	return t.registry.Has(id)
}

// Depth returns the number of edges between the root and the node.
func (t *Tree[D]) Depth(id idregistry.ID) (int, error) {
	n, err := t.lookup("depth", id)
	if err != nil {
		return 0, err
	}
	depth := 0
	for p := n.parent; p != nil; p = p.parent {
		depth++
	}
	return depth, nil
}

// Walk visits every node depth first, parents before children and siblings
// in order. Returning false from fn skips the node's descendants. The tree
// must not be modified during the walk.
func (t *Tree[D]) Walk(fn func(id idregistry.ID, data D, depth int) bool) {
	if t.root == nil {
		return
	}

	type frame struct {
		n     *node[D]
		depth int
	}
	stack := []frame{{t.root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.n.id, f.n.data, f.depth) {
			continue
		}
		// Push children in reverse so the first child is visited first.
		for c := f.n.children.Back(); c != nil; c = c.Prev() {
			stack = append(stack, frame{c.Value, f.depth + 1})
		}
	}
}
