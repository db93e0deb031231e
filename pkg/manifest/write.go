package manifest

import (
	"io"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/vango-dev/navtree/pkg/router"
)

// Bytes renders the manifest as HCL that Parse reads back into an
// equivalent manifest.
func (m *Manifest) Bytes() []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	if m.NotFound != nil {
		setView(body.AppendNewBlock("not_found", nil).Body(), *m.NotFound)
	}
	for i, r := range m.Routes {
		if i > 0 || m.NotFound != nil {
			body.AppendNewline()
		}
		writeRoute(body, r)
	}
	return hclwrite.Format(f.Bytes())
}

// WriteTo writes the HCL rendering of the manifest to w.
func (m *Manifest) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(m.Bytes())
	return int64(n), err
}

func writeRoute(parent *hclwrite.Body, r *Route) {
	body := parent.AppendNewBlock("route", []string{r.Segment}).Body()

	if wc := r.Wildcard; wc.IsContainer {
		switch {
		case wc.Arity.IsRemainder():
			body.SetAttributeValue("capture", cty.StringVal("remainder"))
		case wc.Arity.N() > 0:
			body.SetAttributeValue("capture", cty.NumberIntVal(int64(wc.Arity.N())))
		default:
			body.SetAttributeValue("capture", cty.StringVal("single"))
		}
		body.SetAttributeValue("name", cty.StringVal(wc.ValueName))
	}
	setView(body, r.View)

	for _, child := range r.Children {
		writeRoute(body, child)
	}
}

func setView(body *hclwrite.Body, v router.View) {
	if v.HTML != "" {
		body.SetAttributeValue("html", cty.StringVal(v.HTML))
	}
	if v.CSS != "" {
		body.SetAttributeValue("css", cty.StringVal(v.CSS))
	}
	if v.JSRef != "" {
		body.SetAttributeValue("js", cty.StringVal(v.JSRef))
	}
}
