package idtree

import (
	"errors"
	"slices"
	"testing"

	"github.com/vango-dev/navtree/pkg/idregistry"
)

var none = idregistry.None

func sid(s string) idregistry.ID { return idregistry.StringID(s) }

// explicitTree builds a tree with string IDs:
//
//	root
//	├── a
//	│   ├── a1
//	│   └── a2
//	└── b
//	    └── b1
func explicitTree(t *testing.T) *Tree[string] {
	t.Helper()
	tr := New[string](idregistry.WithExplicitIDs())
	mustAppend(t, tr, none, "root")
	mustAppend(t, tr, sid("root"), "a")
	mustAppend(t, tr, sid("a"), "a1")
	mustAppend(t, tr, sid("a"), "a2")
	mustAppend(t, tr, sid("root"), "b")
	mustAppend(t, tr, sid("b"), "b1")
	return tr
}

func mustAppend(t *testing.T, tr *Tree[string], parent idregistry.ID, name string) idregistry.ID {
	t.Helper()
	id, err := tr.AppendChild(parent, name, sid(name))
	if err != nil {
		t.Fatalf("AppendChild(%v, %q): %v", parent, name, err)
	}
	return id
}

func children(t *testing.T, tr *Tree[string], id string) []string {
	t.Helper()
	ids, err := tr.ChildIDs(sid(id))
	if err != nil {
		t.Fatalf("ChildIDs(%q): %v", id, err)
	}
	out := make([]string, len(ids))
	for i, c := range ids {
		out[i], _ = c.AsString()
	}
	return out
}

func parentOf(t *testing.T, tr *Tree[string], id string) string {
	t.Helper()
	p, err := tr.ParentID(sid(id))
	if err != nil {
		t.Fatalf("ParentID(%q): %v", id, err)
	}
	s, _ := p.AsString()
	return s
}

func TestAppendChildRoundTrip(t *testing.T) {
	tr := New[string]()
	root, err := tr.AppendChild(none, "root", none)
	if err != nil {
		t.Fatal(err)
	}
	child, err := tr.AppendChild(root, "payload", none)
	if err != nil {
		t.Fatal(err)
	}
	got, err := tr.NodeData(child)
	if err != nil || got != "payload" {
		t.Errorf("NodeData() = %q, %v, want payload", got, err)
	}
	if p, _ := tr.ParentID(child); p != root {
		t.Errorf("ParentID() = %v, want %v", p, root)
	}
	if p, _ := tr.ParentID(root); !p.IsNone() {
		t.Errorf("ParentID(root) = %v, want None", p)
	}
}

func TestAppendChildErrors(t *testing.T) {
	tr := explicitTree(t)

	if _, err := tr.AppendChild(none, "second root", sid("r2")); !errors.Is(err, ErrIllegalOperation) {
		t.Errorf("second root: err = %v, want ErrIllegalOperation", err)
	}
	if _, err := tr.AppendChild(sid("missing"), "x", sid("x")); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("unknown parent: err = %v, want ErrUnknownNode", err)
	}
	if _, err := tr.AppendChild(sid("a"), "dup", sid("b")); !errors.Is(err, idregistry.ErrDuplicateIdentifier) {
		t.Errorf("duplicate id: err = %v, want ErrDuplicateIdentifier", err)
	}
	if v, _ := tr.NodeData(sid("b")); v != "b" {
		t.Errorf("duplicate overwrote data: %q", v)
	}
	if _, err := tr.AppendChild(sid("a"), "bad", sid(" ")); !errors.Is(err, idregistry.ErrInvalidIdentifier) {
		t.Errorf("empty id: err = %v, want ErrInvalidIdentifier", err)
	}
	if tr.Len() != 6 {
		t.Errorf("Len() = %d after failed appends, want 6", tr.Len())
	}

	empty := New[string]()
	if _, err := empty.AppendChild(idregistry.NumberID(3), "x", none); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("empty tree with parent: err = %v, want ErrUnknownNode", err)
	}
}

func TestChildOrderIsInsertionOrder(t *testing.T) {
	tr := explicitTree(t)
	mustAppend(t, tr, sid("root"), "c")
	if got := children(t, tr, "root"); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("children(root) = %v", got)
	}
}

func TestInsertParentAbove(t *testing.T) {
	tr := explicitTree(t)

	id, err := tr.InsertParentAbove(sid("a"), "mid", sid("mid"))
	if err != nil {
		t.Fatal(err)
	}
	if id != sid("mid") {
		t.Errorf("InsertParentAbove() = %v, want mid", id)
	}
	if got := children(t, tr, "root"); !slices.Equal(got, []string{"mid", "b"}) {
		t.Errorf("children(root) = %v, want [mid b]", got)
	}
	if got := children(t, tr, "mid"); !slices.Equal(got, []string{"a"}) {
		t.Errorf("children(mid) = %v, want [a]", got)
	}
	if got := parentOf(t, tr, "a"); got != "mid" {
		t.Errorf("parent(a) = %q, want mid", got)
	}
	if got := parentOf(t, tr, "mid"); got != "root" {
		t.Errorf("parent(mid) = %q, want root", got)
	}
	if got := children(t, tr, "a"); !slices.Equal(got, []string{"a1", "a2"}) {
		t.Errorf("children(a) = %v, want [a1 a2]", got)
	}
}

func TestInsertParentAboveLastChild(t *testing.T) {
	tr := explicitTree(t)
	if _, err := tr.InsertParentAbove(sid("a2"), "wrap", sid("wrap")); err != nil {
		t.Fatal(err)
	}
	if got := children(t, tr, "a"); !slices.Equal(got, []string{"a1", "wrap"}) {
		t.Errorf("children(a) = %v, want [a1 wrap]", got)
	}
	// The wrapped node can still be moved back among its old siblings.
	if _, err := tr.MoveNodeBefore(sid("a2"), sid("a1")); err != nil {
		t.Fatal(err)
	}
	if got := children(t, tr, "a"); !slices.Equal(got, []string{"a2", "a1", "wrap"}) {
		t.Errorf("children(a) = %v, want [a2 a1 wrap]", got)
	}
	if got := children(t, tr, "wrap"); len(got) != 0 {
		t.Errorf("children(wrap) = %v, want []", got)
	}
}

func TestInsertParentAboveErrors(t *testing.T) {
	tr := explicitTree(t)

	if _, err := tr.InsertParentAbove(sid("root"), "x", sid("x")); !errors.Is(err, ErrIllegalOperation) {
		t.Errorf("above root: err = %v, want ErrIllegalOperation", err)
	}
	if _, err := tr.InsertParentAbove(none, "x", sid("x")); !errors.Is(err, ErrIllegalOperation) {
		t.Errorf("none on non-empty tree: err = %v, want ErrIllegalOperation", err)
	}
	if _, err := tr.InsertParentAbove(sid("nope"), "x", sid("x")); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("unknown: err = %v, want ErrUnknownNode", err)
	}

	empty := New[string]()
	root, err := empty.InsertParentAbove(none, "root", none)
	if err != nil {
		t.Fatalf("empty tree: %v", err)
	}
	if r, ok := empty.Root(); !ok || r != root {
		t.Errorf("Root() = %v, %v, want %v", r, ok, root)
	}
}

func TestMoveNode(t *testing.T) {
	tests := []struct {
		name       string
		before     bool
		node       string
		target     string
		wantParent string
		wantOrder  map[string][]string
	}{
		{
			name: "before sibling", before: true, node: "a2", target: "a1", wantParent: "a",
			wantOrder: map[string][]string{"a": {"a2", "a1"}},
		},
		{
			name: "after sibling", node: "a", target: "b", wantParent: "root",
			wantOrder: map[string][]string{"root": {"b", "a"}},
		},
		{
			name: "across parents", node: "a1", target: "b1", wantParent: "b",
			wantOrder: map[string][]string{"a": {"a2"}, "b": {"b1", "a1"}},
		},
		{
			name: "before in other parent", before: true, node: "b1", target: "a2", wantParent: "a",
			wantOrder: map[string][]string{"a": {"a1", "b1", "a2"}, "b": {}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := explicitTree(t)
			move := tr.MoveNodeAfter
			if tt.before {
				move = tr.MoveNodeBefore
			}
			id, err := move(sid(tt.node), sid(tt.target))
			if err != nil {
				t.Fatal(err)
			}
			if id != sid(tt.node) {
				t.Errorf("move returned %v, want %q", id, tt.node)
			}
			if got := parentOf(t, tr, tt.node); got != tt.wantParent {
				t.Errorf("parent(%s) = %q, want %q", tt.node, got, tt.wantParent)
			}
			for parent, want := range tt.wantOrder {
				if got := children(t, tr, parent); !slices.Equal(got, want) {
					t.Errorf("children(%s) = %v, want %v", parent, got, want)
				}
			}
			if tr.Len() != 6 {
				t.Errorf("Len() = %d, want 6", tr.Len())
			}
			// Unrelated nodes keep their parents.
			if got := parentOf(t, tr, "b"); got != "root" {
				t.Errorf("parent(b) = %q, want root", got)
			}
		})
	}
}

func TestMoveNodeErrors(t *testing.T) {
	tr := explicitTree(t)

	if _, err := tr.MoveNodeBefore(sid("root"), sid("a")); !errors.Is(err, ErrIllegalOperation) {
		t.Errorf("move root: err = %v, want ErrIllegalOperation", err)
	}
	if _, err := tr.MoveNodeAfter(sid("a"), sid("root")); !errors.Is(err, ErrIllegalOperation) {
		t.Errorf("relative to root: err = %v, want ErrIllegalOperation", err)
	}
	if _, err := tr.MoveNodeAfter(sid("a"), sid("a1")); !errors.Is(err, ErrIllegalOperation) {
		t.Errorf("into own subtree: err = %v, want ErrIllegalOperation", err)
	}
	if _, err := tr.MoveNodeAfter(sid("x"), sid("a")); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("unknown node: err = %v, want ErrUnknownNode", err)
	}
	if _, err := tr.MoveNodeAfter(sid("a"), sid("x")); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("unknown target: err = %v, want ErrUnknownNode", err)
	}

	id, err := tr.MoveNodeBefore(sid("a1"), sid("a1"))
	if err != nil || id != sid("a1") {
		t.Errorf("self move = %v, %v, want a1, nil", id, err)
	}
	if got := children(t, tr, "a"); !slices.Equal(got, []string{"a1", "a2"}) {
		t.Errorf("children(a) = %v after self move", got)
	}
}

func TestDeleteSubtree(t *testing.T) {
	tr := explicitTree(t)
	before := tr.Len()

	if err := tr.DeleteSubtree(sid("a")); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"a", "a1", "a2"} {
		if _, err := tr.NodeData(sid(id)); !errors.Is(err, ErrUnknownNode) {
			t.Errorf("NodeData(%s) err = %v, want ErrUnknownNode", id, err)
		}
	}
	if tr.Len() != before-3 {
		t.Errorf("Len() = %d, want %d", tr.Len(), before-3)
	}
	if got := children(t, tr, "root"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("children(root) = %v, want [b]", got)
	}

	// Deleted IDs can be registered again.
	mustAppend(t, tr, sid("b"), "a")
}

func TestDeleteRootEmptiesTree(t *testing.T) {
	tr := explicitTree(t)
	if err := tr.DeleteSubtree(sid("root")); err != nil {
		t.Fatal(err)
	}
	if tr.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tr.Len())
	}
	if _, ok := tr.Root(); ok {
		t.Error("Root() reported a root after deleting it")
	}
	if _, err := tr.AppendChild(none, "new root", sid("new")); err != nil {
		t.Errorf("AppendChild after clearing: %v", err)
	}
	if err := tr.DeleteSubtree(sid("root")); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("delete twice: err = %v, want ErrUnknownNode", err)
	}
}

func TestDeleteDeepSubtree(t *testing.T) {
	tr := New[int]()
	root, _ := tr.AppendChild(none, 0, none)
	parent := root
	var ids []idregistry.ID
	for i := 1; i <= 1000; i++ {
		id, err := tr.AppendChild(parent, i, none)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
		parent = id
	}
	if err := tr.DeleteSubtree(ids[0]); err != nil {
		t.Fatal(err)
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
	for _, id := range ids {
		if tr.Contains(id) {
			t.Fatalf("Contains(%v) after delete", id)
		}
	}
}

func TestOverwriteNodeData(t *testing.T) {
	tr := explicitTree(t)
	if err := tr.OverwriteNodeData(sid("a"), "A"); err != nil {
		t.Fatal(err)
	}
	if v, _ := tr.NodeData(sid("a")); v != "A" {
		t.Errorf("NodeData(a) = %q, want A", v)
	}
	if err := tr.OverwriteNodeData(sid("zz"), "x"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("err = %v, want ErrUnknownNode", err)
	}
}

func TestAccessorsUnknownNode(t *testing.T) {
	tr := explicitTree(t)
	if _, err := tr.ParentID(sid("zz")); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("ParentID err = %v", err)
	}
	if _, err := tr.ChildIDs(sid("zz")); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("ChildIDs err = %v", err)
	}
	if _, err := tr.Depth(sid("zz")); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Depth err = %v", err)
	}
}

func TestWalk(t *testing.T) {
	tr := explicitTree(t)

	var order []string
	var depths []int
	tr.Walk(func(id idregistry.ID, data string, depth int) bool {
		order = append(order, data)
		depths = append(depths, depth)
		return true
	})
	if want := []string{"root", "a", "a1", "a2", "b", "b1"}; !slices.Equal(order, want) {
		t.Errorf("walk order = %v, want %v", order, want)
	}
	if want := []int{0, 1, 2, 2, 1, 2}; !slices.Equal(depths, want) {
		t.Errorf("walk depths = %v, want %v", depths, want)
	}

	order = order[:0]
	tr.Walk(func(id idregistry.ID, data string, depth int) bool {
		order = append(order, data)
		return data != "a"
	})
	if want := []string{"root", "a", "b", "b1"}; !slices.Equal(order, want) {
		t.Errorf("pruned walk = %v, want %v", order, want)
	}

	if d, _ := tr.Depth(sid("b1")); d != 2 {
		t.Errorf("Depth(b1) = %d, want 2", d)
	}
}
