// Package siblings implements the ordered, doubly linked sibling list used to
// hold the children of a tree node.
//
// Unlike container/list, the list exposes the splice and "already a member"
// insertion primitives a tree needs to swap one child for a new parent or to
// reorder children in O(1):
//
//	l := siblings.New[string]()
//	a := l.Append(siblings.NewNode("a"))
//	c := l.Append(siblings.NewNode("c"))
//	l.InsertBefore(c, siblings.NewNode("b"), false) // a -> b -> c
//	l.InsertAfter(c, a, true)                        // b -> c -> a
//
// A node belongs to at most one list at a time. Lists are not safe for
// concurrent use, and mutating a list while ranging over All is unsupported.
package siblings

import (
	"errors"
	"fmt"
	"iter"
)

// ErrMalformedList is returned when a chain of nodes does not terminate where
// expected or loops back on itself.
var ErrMalformedList = errors.New("malformed sibling list")

// Node is an element of a List.
type Node[T any] struct {
	// Value is the payload carried by the node.
	Value T

	prev *Node[T]
	next *Node[T]
}

// NewNode returns an unlinked node holding v.
func NewNode[T any](v T) *Node[T] {
	return &Node[T]{Value: v}
}

// Prev returns the previous sibling or nil.
func (n *Node[T]) Prev() *Node[T] {
	return n.prev
}

// Next returns the next sibling or nil.
func (n *Node[T]) Next() *Node[T] {
	return n.next
}

// Link chains the given nodes in order, overwriting their links. It is used
// to build an external chain for FromChain.
func Link[T any](nodes ...*Node[T]) *Node[T] {
	if len(nodes) == 0 {
		return nil
	}
	for i, n := range nodes {
		if i > 0 {
			n.prev = nodes[i-1]
		} else {
			n.prev = nil
		}
		if i < len(nodes)-1 {
			n.next = nodes[i+1]
		} else {
			n.next = nil
		}
	}
	return nodes[0]
}

// List is an ordered doubly linked list with a cached length.
type List[T any] struct {
	head   *Node[T]
	tail   *Node[T]
	length int
}

// New returns an empty list.
func New[T any]() *List[T] {
	return &List[T]{}
}

// FromChain adopts an externally linked chain starting at head. The chain is
// walked once; a repeated node fails with ErrMalformedList.
func FromChain[T any](head *Node[T]) (*List[T], error) {
	l := &List[T]{}
	if head == nil {
		return l, nil
	}
	n, tail, err := countRun(head, nil)
	if err != nil {
		return nil, err
	}
	head.prev = nil
	l.head = head
	l.tail = tail
	l.length = n
	return l, nil
}

// countRun walks from start until end, returning the number of nodes visited
// and the last one. Reaching nil before end, or visiting a node twice, fails.
func countRun[T any](start, end *Node[T]) (int, *Node[T], error) {
	seen := make(map[*Node[T]]struct{})
	var last *Node[T]
	count := 0
	for n := start; n != end; n = n.next {
		if n == nil {
			return 0, nil, fmt.Errorf("%w: end node unreachable", ErrMalformedList)
		}
		if _, ok := seen[n]; ok {
			return 0, nil, fmt.Errorf("%w: circular reference", ErrMalformedList)
		}
		seen[n] = struct{}{}
		last = n
		count++
	}
	return count, last, nil
}

// Len returns the number of nodes in the list.
func (l *List[T]) Len() int {
	return l.length
}

// Front returns the first node or nil.
func (l *List[T]) Front() *Node[T] {
	return l.head
}

// Back returns the last node or nil.
func (l *List[T]) Back() *Node[T] {
	return l.tail
}

// Clear empties the list without touching the nodes.
func (l *List[T]) Clear() {
	l.head = nil
	l.tail = nil
	l.length = 0
}

// detach unlinks n using its own links. The length is left to the caller.
func (l *List[T]) detach(n *Node[T]) *Node[T] {
	switch {
	case n.prev == nil && n.next == nil:
		l.head = nil
		l.tail = nil
	case n.prev == nil:
		l.head = n.next
		l.head.prev = nil
	case n.next == nil:
		l.tail = n.prev
		l.tail.next = nil
	default:
		n.prev.next = n.next
		n.next.prev = n.prev
	}
	n.prev = nil
	n.next = nil
	return n
}

// Prepend inserts n at the front.
func (l *List[T]) Prepend(n *Node[T]) *Node[T] {
	n.prev = nil
	n.next = l.head
	if l.head == nil {
		l.tail = n
	} else {
		l.head.prev = n
	}
	l.head = n
	l.length++
	return n
}

// Append inserts n at the back.
func (l *List[T]) Append(n *Node[T]) *Node[T] {
	n.next = nil
	n.prev = l.tail
	if l.tail == nil {
		l.head = n
	} else {
		l.tail.next = n
	}
	l.tail = n
	l.length++
	return n
}

// InsertBefore places n immediately before anchor. If inList is true, n is
// already a member of this list and is detached first. A nil anchor appends.
// Inserting a node before itself is a no-op.
func (l *List[T]) InsertBefore(anchor, n *Node[T], inList bool) *Node[T] {
	if anchor == n {
		return n
	}
	if inList {
		l.detach(n)
	} else {
		l.length++
	}

	switch {
	case anchor != nil:
		n.next = anchor
		n.prev = anchor.prev
		anchor.prev = n
		if n.prev != nil {
			n.prev.next = n
		} else {
			l.head = n
		}
	case l.tail == nil:
		n.prev = nil
		n.next = nil
		l.head = n
		l.tail = n
	default:
		l.tail.next = n
		n.prev = l.tail
		n.next = nil
		l.tail = n
	}
	return n
}

// InsertAfter places n immediately after anchor. A nil anchor appends.
func (l *List[T]) InsertAfter(anchor, n *Node[T], inList bool) *Node[T] {
	if anchor == nil {
		return l.InsertBefore(nil, n, inList)
	}
	if anchor == n {
		return n
	}
	return l.InsertBefore(anchor.next, n, inList)
}

// Splice replaces every node strictly between prev and next with n. A nil
// prev means the run starts at the head; a nil next means it runs to the
// tail. affected is the number of nodes replaced; a negative value makes
// Splice count the run itself, which costs a walk over it.
//
// The replaced run is cut loose at both ends so its nodes can be reinserted
// elsewhere.
func (l *List[T]) Splice(prev, next, n *Node[T], affected int) (*Node[T], error) {
	first := l.head
	if prev != nil {
		first = prev.next
	}
	last := l.tail
	if next != nil {
		last = next.prev
	}

	if affected < 0 {
		count, _, err := countRun(first, next)
		if err != nil {
			return nil, err
		}
		affected = count
	}

	if affected > 0 && first != nil && last != nil {
		first.prev = nil
		last.next = nil
	}

	n.prev = prev
	n.next = next
	if prev == nil {
		l.head = n
	} else {
		prev.next = n
	}
	if next == nil {
		l.tail = n
	} else {
		next.prev = n
	}

	l.length = l.length + 1 - affected
	return n, nil
}

// Remove detaches n from the list. A nil node yields nil.
func (l *List[T]) Remove(n *Node[T]) *Node[T] {
	if n == nil {
		return nil
	}
	l.detach(n)
	l.length--
	return n
}

// RemoveTail detaches and returns the last node, or nil if the list is empty.
func (l *List[T]) RemoveTail() *Node[T] {
	if l.tail == nil {
		return nil
	}
	return l.Remove(l.tail)
}

// All returns a sequence over the nodes from head to tail. Each call starts a
// fresh walk.
func (l *List[T]) All() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		for n := l.head; n != nil; n = n.next {
			if !yield(n) {
				return
			}
		}
	}
}

// Values returns a sequence over the node payloads from head to tail.
func (l *List[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.head; n != nil; n = n.next {
			if !yield(n.Value) {
				return
			}
		}
	}
}

// Slice copies the payloads into a new slice.
func (l *List[T]) Slice() []T {
	out := make([]T, 0, l.length)
	for v := range l.Values() {
		out = append(out, v)
	}
	return out
}
