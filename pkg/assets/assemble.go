package assets

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/vango-dev/navtree/pkg/router"
)

var pageTemplate = template.Must(template.New("page").Parse(
	`{{if .CSS}}<link rel="stylesheet" href="{{.CSS}}">
{{end}}<div data-navtree-route="{{.Route}}"{{if .Controller}} data-controller="{{.Controller}}"{{end}}{{if .Script}} data-src="{{.Script}}"{{end}}{{if .NotFound}} data-not-found{{end}}>
{{.Body}}
</div>
`))

type pageData struct {
	Route      string
	CSS        string
	Controller string
	Script     string
	NotFound   bool
	Body       template.HTML
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithFingerprints resolves CSS and script names through fp.
func WithFingerprints(fp *Fingerprints) AssemblerOption {
	return func(a *Assembler) {
		a.fingerprints = fp
	}
}

// WithPrefix sets the URL prefix of stylesheet and script links,
// e.g. "/public/".
func WithPrefix(prefix string) AssemblerOption {
	return func(a *Assembler) {
		a.prefix = prefix
	}
}

// WithScriptExt sets the extension appended to a JSRef to name its script.
// Defaults to ".js".
func WithScriptExt(ext string) AssemblerOption {
	return func(a *Assembler) {
		a.scriptExt = ext
	}
}

// Assembler builds page markup from a view's assets. The HTML fragment is
// fetched from the source and wrapped with a stylesheet link and the
// controller reference. It implements router.Renderer.
type Assembler struct {
	src          Source
	fingerprints *Fingerprints
	prefix       string
	scriptExt    string
}

// NewAssembler creates an assembler reading fragments from src.
func NewAssembler(src Source, opts ...AssemblerOption) *Assembler {
	a := &Assembler{src: src, scriptExt: ".js"}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// URL returns the public URL of an asset.
func (a *Assembler) URL(name string) string {
	return a.prefix + a.fingerprints.Resolve(name)
}

// Assemble returns the markup for page.
func (a *Assembler) Assemble(ctx context.Context, page *router.Page) ([]byte, error) {
	data := pageData{
		Route:      page.Route,
		Controller: page.View.JSRef,
		NotFound:   page.NotFound,
	}
	if page.View.CSS != "" {
		data.CSS = a.URL(page.View.CSS)
	}
	if page.View.JSRef != "" {
		data.Script = a.URL(page.View.JSRef + a.scriptExt)
	}
	if page.View.HTML != "" {
		body, err := a.src.Fetch(ctx, page.View.HTML)
		if err != nil {
			return nil, err
		}
		data.Body = template.HTML(body)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("assets: render %s: %w", page.Path, err)
	}
	return buf.Bytes(), nil
}

// Render implements router.Renderer by storing the assembled markup in
// page.HTML.
func (a *Assembler) Render(ctx context.Context, page *router.Page) error {
	out, err := a.Assemble(ctx, page)
	if err != nil {
		return err
	}
	page.HTML = string(out)
	return nil
}
