// Package server serves a route tree over HTTP.
//
// Endpoints:
//
//	GET    /healthz                 liveness
//	GET    /resolve?path=/users/42  page for a path, as JSON
//	GET    /view/users/42           rendered markup (when a Renderer is set)
//	GET    /routes                  the tree as JSON; ?format=hcl for a manifest
//	POST   /routes                  append a segment
//	PUT    /routes?path=/users      replace a view
//	DELETE /routes?path=/users      remove a subtree
//	POST   /reload                  rebuild the tree (when Reload is set)
//	GET    /ws                      WebSocket navigation sessions
//	GET    /metrics                 Prometheus metrics (when MetricsPath is set)
//
// Editing endpoints are not mounted when Config.ReadOnly is set.
//
// Errors are JSON objects carrying a navtree error code:
//
//	{"error": {"code": "E201", "category": "navigation", "message": "Segment not found", ...}}
//
// # WebSocket Sessions
//
// Each connection owns a router.Router, so back and forward walk that
// connection's history. Requests and replies are JSON text messages:
//
//	→ {"id": "1", "path": "/users/42", "push": true}
//	← {"id": "1", "page": {"path": "/users/42", "route": "/users/:id", ...}}
//	→ {"id": "2", "op": "back"}
//	← {"id": "2", "error": {"code": "E202", ...}}
//
// # Usage
//
//	tree, _ := m.Build()
//	srv := server.New(tree, &server.Config{
//	    Address:     ":8080",
//	    MetricsPath: "/metrics",
//	    Renderer:    assets.NewAssembler(src),
//	})
//	err := srv.Run(ctx)
package server
