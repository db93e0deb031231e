package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vango-dev/navtree/pkg/router"
)

// hclFile represents the top-level structure of a manifest file for decoding.
type hclFile struct {
	NotFound *hclView    `hcl:"not_found,block"`
	Routes   []*hclRoute `hcl:"route,block"`
}

type hclView struct {
	HTML string `hcl:"html,optional"`
	CSS  string `hcl:"css,optional"`
	JS   string `hcl:"js,optional"`
}

type hclRoute struct {
	Segment string         `hcl:"segment,label"`
	HTML    string         `hcl:"html,optional"`
	CSS     string         `hcl:"css,optional"`
	JS      string         `hcl:"js,optional"`
	Capture hcl.Expression `hcl:"capture,optional"`
	Name    string         `hcl:"name,optional"`
	Routes  []*hclRoute    `hcl:"route,block"`
	Remain  hcl.Body       `hcl:",remain"`
}

// captureContext lets capture be written as a bare keyword.
var captureContext = &hcl.EvalContext{
	Variables: map[string]cty.Value{
		"single":    cty.StringVal("single"),
		"remainder": cty.StringVal("remainder"),
	},
}

// Load reads a manifest from a file, or from every ".hcl" and ".json" file
// below a directory in lexical order.
func Load(path string) (*Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = findManifestFiles(path)
		if err != nil {
			return nil, fmt.Errorf("manifest: failed to find files in %s: %w", path, err)
		}
	}

	parser := hclparse.NewParser()
	m := &Manifest{}
	for _, file := range files {
		var f *hcl.File
		var diags hcl.Diagnostics
		if isJSON(file) {
			f, diags = parser.ParseJSONFile(file)
		} else {
			f, diags = parser.ParseHCLFile(file)
		}
		if diags.HasErrors() {
			return nil, fmt.Errorf("manifest: failed to parse %s: %w", file, diags)
		}
		if err := m.merge(file, f); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Parse decodes a single manifest from src. filename selects the syntax
// by extension and appears in error messages.
func Parse(src []byte, filename string) (*Manifest, error) {
	parser := hclparse.NewParser()

	var f *hcl.File
	var diags hcl.Diagnostics
	if isJSON(filename) {
		f, diags = parser.ParseJSON(src, filename)
	} else {
		f, diags = parser.ParseHCL(src, filename)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("manifest: failed to parse %s: %w", filename, diags)
	}

	m := &Manifest{}
	if err := m.merge(filename, f); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) merge(filename string, f *hcl.File) error {
	var parsed hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &parsed); diags.HasErrors() {
		return fmt.Errorf("manifest: failed to decode %s: %w", filename, diags)
	}

	if parsed.NotFound != nil {
		if m.NotFound != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateNotFound, filename)
		}
		m.NotFound = &router.View{
			HTML:  parsed.NotFound.HTML,
			CSS:   parsed.NotFound.CSS,
			JSRef: parsed.NotFound.JS,
		}
	}

	for _, hr := range parsed.Routes {
		r, diags := newRouteFromHCL(hr)
		if diags.HasErrors() {
			return fmt.Errorf("manifest: error in route %q in %s: %w", hr.Segment, filename, diags)
		}
		m.Routes = append(m.Routes, r)
	}
	m.Files = append(m.Files, filename)
	return nil
}

func newRouteFromHCL(hr *hclRoute) (*Route, hcl.Diagnostics) {
	declRange := hr.Remain.MissingItemRange()
	if diags := checkUnsupported(hr.Remain); diags.HasErrors() {
		return nil, diags
	}

	r := &Route{
		Segment: hr.Segment,
		View: router.View{
			HTML:  hr.HTML,
			CSS:   hr.CSS,
			JSRef: hr.JS,
		},
		DeclRange: declRange,
	}

	wc, diags := decodeWildcard(hr, declRange)
	if diags.HasErrors() {
		return nil, diags
	}
	r.Wildcard = wc

	for _, child := range hr.Routes {
		c, childDiags := newRouteFromHCL(child)
		diags = append(diags, childDiags...)
		if childDiags.HasErrors() {
			return nil, diags
		}
		r.Children = append(r.Children, c)
	}
	return r, diags
}

// checkUnsupported rejects attributes left over after decoding a route.
func checkUnsupported(remain hcl.Body) hcl.Diagnostics {
	attrs, diags := remain.JustAttributes()
	if diags.HasErrors() {
		return diags
	}
	for name, attr := range attrs {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported argument",
			Detail:   fmt.Sprintf("An argument named %q is not expected in a route block.", name),
			Subject:  attr.NameRange.Ptr(),
		})
	}
	return diags
}

func decodeWildcard(hr *hclRoute, declRange hcl.Range) (router.Wildcard, hcl.Diagnostics) {
	wc, implicit := implicitWildcard(hr.Segment)

	if hr.Capture != nil {
		val, diags := hr.Capture.Value(captureContext)
		if diags.HasErrors() {
			return router.Literal, diags
		}
		if !val.IsNull() {
			arity, diags := decodeArity(val, hr.Capture.Range())
			if diags.HasErrors() {
				return router.Literal, diags
			}
			wc = router.Wildcard{IsContainer: true, ValueName: wc.ValueName, Arity: arity}
			implicit = true
		}
	}

	if hr.Name != "" {
		if !implicit {
			return router.Literal, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Name without capture",
				Detail:   fmt.Sprintf("Route %q sets name but is not a wildcard; add a capture attribute or prefix the label with ':' or '*'.", hr.Segment),
				Subject:  declRange.Ptr(),
			}}
		}
		wc.ValueName = hr.Name
	}
	return wc, nil
}

func decodeArity(val cty.Value, rng hcl.Range) (router.Arity, hcl.Diagnostics) {
	invalid := func(detail string) hcl.Diagnostics {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid capture",
			Detail:   detail,
			Subject:  rng.Ptr(),
		}}
	}

	switch val.Type() {
	case cty.String:
		switch s := val.AsString(); s {
		case "single":
			return router.Single, nil
		case "remainder":
			return router.Remainder, nil
		default:
			return router.Arity{}, invalid(fmt.Sprintf("Capture must be single, remainder, or a segment count; got %q.", s))
		}
	case cty.Number:
		var k int
		if err := gocty.FromCtyValue(val, &k); err != nil {
			return router.Arity{}, invalid(fmt.Sprintf("Capture count must be a whole number: %s.", err))
		}
		if k <= 0 {
			return router.Arity{}, invalid(fmt.Sprintf("Capture count must be positive; got %d.", k))
		}
		return router.Count(k), nil
	default:
		return router.Arity{}, invalid(fmt.Sprintf("Capture must be a string or number, not %s.", val.Type().FriendlyName()))
	}
}

func isJSON(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".json")
}

func findManifestFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".hcl", ".json":
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}
