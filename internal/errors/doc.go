// Package errors provides structured, actionable error messages for the
// navtree command and server.
//
// Every error has a code that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Error Categories
//
// Codes are grouped by category:
//   - tree (E1xx): Invalid edits to the route tree
//   - navigation (E2xx): Misses, history bounds, controllers
//   - manifest (E3xx): Manifest parse and decode errors, with source locations
//   - assets (E4xx): Missing fragments and fingerprint files
//   - config (E5xx): navtree.json errors
//   - cli (E6xx): Command failures
//   - request (E7xx): Bad or failed HTTP requests
//
// # Usage
//
// Classify maps the sentinel errors of the router, manifest and assets
// packages to their codes. HCL diagnostics carry their source range:
//
//	m, err := manifest.Load("routes.hcl")
//	if err != nil {
//	    errors.Fprint(os.Stderr, err, "E301")
//	}
//	// Output:
//	// ERROR E301: Invalid manifest
//	//
//	//   routes.hcl:4:15
//	//
//	//       2 │ route "users" {
//	//       3 │   route ":id" {
//	//   →   4 │     capture = 0
//	//         │               ^
//	//       5 │   }
//	//
//	//   Invalid capture: Capture count must be positive; got 0.
//	//
//	//   Learn more: https://navtree.dev/docs/errors/E301
package errors
