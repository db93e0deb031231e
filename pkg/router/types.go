package router

import (
	"encoding/json"
	"fmt"
)

// View is the descriptor a route resolves to. The tree stores and returns it
// without interpreting any field.
type View struct {
	// HTML references the markup for the view.
	HTML string `json:"html,omitempty"`

	// CSS references the stylesheet for the view.
	CSS string `json:"css,omitempty"`

	// JSRef names the controller that drives the view.
	JSRef string `json:"jsRef,omitempty"`
}

type arityKind uint8

const (
	arityUnset arityKind = iota
	aritySingle
	arityCount
	arityRemainder
)

// Arity is how many path segments a wildcard node consumes.
type Arity struct {
	kind arityKind
	n    int
}

var (
	// Single consumes exactly one segment into a string capture.
	Single = Arity{kind: aritySingle}

	// Remainder consumes every remaining segment and ends resolution.
	Remainder = Arity{kind: arityRemainder}
)

// Count consumes exactly k segments into a slice capture. k must be
// positive.
func Count(k int) Arity {
	return Arity{kind: arityCount, n: k}
}

// IsSingle reports whether a consumes one segment.
func (a Arity) IsSingle() bool { return a.kind == aritySingle || a.kind == arityUnset }

// IsRemainder reports whether a consumes the rest of the path.
func (a Arity) IsRemainder() bool { return a.kind == arityRemainder }

// N returns k for a fixed-count arity and 0 otherwise.
func (a Arity) N() int {
	if a.kind == arityCount {
		return a.n
	}
	return 0
}

// String implements fmt.Stringer.
func (a Arity) String() string {
	switch a.kind {
	case arityCount:
		return fmt.Sprintf("%d", a.n)
	case arityRemainder:
		return "remainder"
	default:
		return "single"
	}
}

// Wildcard configures a capturing node. When IsContainer is false the other
// fields are ignored and the node matches its segment name literally.
type Wildcard struct {
	IsContainer bool

	// ValueName is the key of the capture in the match context. Empty means
	// the segment name without a leading ':' or '*'.
	ValueName string

	// Arity defaults to Single.
	Arity Arity
}

// Literal is the Wildcard value for an ordinary segment.
var Literal = Wildcard{}

// Capture returns a capturing Wildcard storing under name.
func Capture(name string, arity Arity) Wildcard {
	return Wildcard{IsContainer: true, ValueName: name, Arity: arity}
}

// CaptureKind identifies the shape of a captured value.
type CaptureKind uint8

const (
	// CaptureString is a single segment.
	CaptureString CaptureKind = iota

	// CaptureSlice is a fixed number of segments.
	CaptureSlice

	// CaptureRemainder is the rest of the path, possibly with a query.
	CaptureRemainder
)

// CapturedValue is one entry of a match Context.
type CapturedValue struct {
	Kind CaptureKind

	// Value holds a single segment or the joined remainder.
	Value string

	// Values holds the segments of a fixed-count capture.
	Values []string

	// ParamStr is the text after the first '?' of the final remainder
	// segment. HasParams distinguishes "x?" from "x".
	ParamStr  string
	HasParams bool
}

// MarshalJSON encodes single captures and plain remainders as strings,
// fixed-count captures as arrays and remainders with a query as
// {"value": ..., "paramStr": ...}.
func (c CapturedValue) MarshalJSON() ([]byte, error) {
	switch {
	case c.Kind == CaptureSlice:
		values := c.Values
		if values == nil {
			values = []string{}
		}
		return json.Marshal(values)
	case c.Kind == CaptureRemainder && c.HasParams:
		return json.Marshal(struct {
			Value    string `json:"value"`
			ParamStr string `json:"paramStr"`
		}{c.Value, c.ParamStr})
	default:
		return json.Marshal(c.Value)
	}
}

// Context maps capture names to captured values.
type Context map[string]CapturedValue

// String returns a single or remainder capture.
func (c Context) String(name string) (string, bool) {
	v, ok := c[name]
	if !ok || v.Kind == CaptureSlice {
		return "", false
	}
	return v.Value, true
}

// Slice returns a fixed-count capture.
func (c Context) Slice(name string) ([]string, bool) {
	v, ok := c[name]
	if !ok || v.Kind != CaptureSlice {
		return nil, false
	}
	return v.Values, true
}

// ParamStr returns the query text split off a remainder capture.
func (c Context) ParamStr(name string) (string, bool) {
	v, ok := c[name]
	if !ok || !v.HasParams {
		return "", false
	}
	return v.ParamStr, true
}

// Match is the result of resolving a path.
type Match struct {
	// Path is the path that was resolved.
	Path string `json:"path"`

	// Route is the registered pattern that matched (e.g. "/users/:id").
	Route string `json:"route"`

	View

	// Context holds the captured values; it is empty, never nil, when no
	// wildcard took part in the match.
	Context Context `json:"context"`
}
