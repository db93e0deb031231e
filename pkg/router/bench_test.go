package router

import (
	"context"
	"fmt"
	"testing"
)

// BenchmarkTreeResolveLiteral benchmarks resolving a literal route.
func BenchmarkTreeResolveLiteral(b *testing.B) {
	tree := NewTree()
	for _, seg := range []string{"", "about", "contact", "pricing", "features"} {
		tree.AppendSegment("", seg, View{}, Literal)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Resolve("/about")
	}
}

// BenchmarkTreeResolveCaptures benchmarks resolving three single captures.
func BenchmarkTreeResolveCaptures(b *testing.B) {
	tree := NewTree()
	tree.AppendSegment("", "users", View{}, Literal)
	tree.AppendSegment("/users", ":userId", View{}, Capture("userId", Single))
	tree.AppendSegment("/users/:userId", "posts", View{}, Literal)
	tree.AppendSegment("/users/:userId/posts", ":postId", View{}, Capture("postId", Single))
	tree.AppendSegment("/users/:userId/posts/:postId", "comments", View{}, Literal)
	tree.AppendSegment("/users/:userId/posts/:postId/comments", ":commentId", View{}, Capture("commentId", Single))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Resolve("/users/42/posts/100/comments/999")
	}
}

// BenchmarkTreeResolveRemainder benchmarks a remainder capture with a query.
func BenchmarkTreeResolveRemainder(b *testing.B) {
	tree := NewTree()
	tree.AppendSegment("", "files", View{}, Literal)
	tree.AppendSegment("/files", "*path", View{}, Capture("path", Remainder))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Resolve("/files/a/b/c/d/e?x=1")
	}
}

// BenchmarkTreeResolveLargeTree benchmarks resolving among many siblings.
func BenchmarkTreeResolveLargeTree(b *testing.B) {
	tree := NewTree()
	for i := 0; i < 100; i++ {
		tree.AppendSegment("", fmt.Sprintf("route%d", i), View{}, Literal)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Resolve("/route50")
	}
}

// BenchmarkTreeResolveNotFound benchmarks failed resolutions.
func BenchmarkTreeResolveNotFound(b *testing.B) {
	tree := NewTree(WithNotFound(View{HTML: "404.html"}))
	tree.AppendSegment("", "users", View{}, Literal)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Resolve("/notfound")
	}
}

// BenchmarkTreeAppendRemove benchmarks building and tearing down a subtree.
func BenchmarkTreeAppendRemove(b *testing.B) {
	tree := NewTree()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.AppendSegment("", "a", View{}, Literal)
		tree.AppendSegment("/a", "b", View{}, Literal)
		tree.AppendSegment("/a/b", ":c", View{}, Capture("c", Single))
		tree.RemoveSegment("/a")
	}
}

// BenchmarkRouterNavigate benchmarks a full navigation with history.
func BenchmarkRouterNavigate(b *testing.B) {
	tree := NewTree()
	tree.AppendSegment("", "users", View{}, Literal)
	tree.AppendSegment("/users", ":id", View{}, Capture("id", Single))
	r := New(tree)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Navigate(ctx, "/users/42", WithHistory())
	}
}

// BenchmarkBind benchmarks binding captures into a struct.
func BenchmarkBind(b *testing.B) {
	type Params struct {
		ID   int    `param:"id"`
		Name string `param:"name"`
	}

	ctx := Context{
		"id":   {Kind: CaptureString, Value: "123"},
		"name": {Kind: CaptureString, Value: "test"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var p Params
		ctx.Bind(&p)
	}
}
