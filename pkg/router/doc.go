// Package router maps paths to views and navigates between them.
//
// A Tree holds the route hierarchy. Each node is a path segment; literal
// segments are indexed by name and every node may have one wildcard child
// that captures path segments into the match Context:
//
//	t := router.NewTree(router.WithNotFound(router.View{HTML: "404.html"}))
//	t.AppendSegment("", "", router.View{HTML: "index.html"}, router.Literal)
//	t.AppendSegment("", "users", router.View{HTML: "users.html"}, router.Literal)
//	t.AppendSegment("/users", ":id", router.View{HTML: "user.html"}, router.Capture("id", router.Single))
//	t.AppendSegment("", "files", router.View{}, router.Literal)
//	t.AppendSegment("/files", "*rest", router.View{HTML: "file.html"}, router.Capture("rest", router.Remainder))
//
//	m, _ := t.Resolve("/users/42")          // m.Context["id"].Value == "42"
//	m, _ = t.Resolve("/files/a/b/c?x=1")    // value "a/b/c", paramStr "x=1"
//	_, err := t.Resolve("/nope")            // *NavigationError, SEGMENT_NOT_FOUND
//
// # Captures
//
// A wildcard's Arity decides how much of the path it consumes:
//
//	Single     one segment, stored as a string
//	Count(k)   exactly k segments, stored as a slice
//	Remainder  every remaining segment joined with '/'; ends the walk
//
// Literal children always win over the wildcard and there is no
// backtracking. Only a remainder capture splits a query string off its
// final segment.
//
// # Navigation
//
// A Router sits on top of any Resolver. Navigate resolves a path, turns a
// not-found error with a fallback view into a not-found Page, loads the
// view's controller, renders it and optionally records history:
//
//	r := router.New(t,
//	    router.WithLoader(router.Controllers{"users": usersController}),
//	    router.WithMiddleware(middleware.Prometheus()),
//	)
//	page, err := r.Navigate(ctx, "/users/42", router.WithHistory())
//	page, err = r.Back(ctx)
package router
