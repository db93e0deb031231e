package errors

import (
	stderrors "errors"
	"io/fs"

	"github.com/hashicorp/hcl/v2"

	"github.com/vango-dev/navtree/pkg/assets"
	"github.com/vango-dev/navtree/pkg/manifest"
	"github.com/vango-dev/navtree/pkg/middleware"
	"github.com/vango-dev/navtree/pkg/router"
)

// Classify maps an error returned by the navtree packages to a
// NavtreeError with the matching code. Errors it does not recognise get
// fallback as their code; a *NavtreeError anywhere in the chain is
// returned unchanged.
func Classify(err error, fallback string) *NavtreeError {
	if err == nil {
		return nil
	}

	var ne *NavtreeError
	if stderrors.As(err, &ne) {
		return ne
	}

	var diags hcl.Diagnostics
	if stderrors.As(err, &diags) {
		return fromDiagnostics(err, diags)
	}

	code := fallback
	switch {
	case stderrors.Is(err, manifest.ErrDuplicateNotFound):
		code = "E302"
	case router.IsNotFound(err):
		code = "E201"
	case stderrors.Is(err, router.ErrUnknownNode):
		code = "E101"
	case stderrors.Is(err, router.ErrIllegalOperation):
		code = "E102"
	case stderrors.Is(err, router.ErrNoHistory):
		code = "E202"
	case stderrors.Is(err, router.ErrControllerNotFound):
		code = "E203"
	case stderrors.Is(err, middleware.ErrPanic):
		code = "E204"
	case stderrors.Is(err, assets.ErrNotFound):
		code = "E401"
	case stderrors.Is(err, fs.ErrNotExist):
		code = "E303"
	}
	return New(code).Wrap(err)
}

func fromDiagnostics(err error, diags hcl.Diagnostics) *NavtreeError {
	ne := New("E301").Wrap(err)
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		if d.Detail != "" {
			ne.WithDetail(d.Summary + ": " + d.Detail)
		} else {
			ne.WithDetail(d.Summary)
		}
		ne.WithRange(d.Subject)
		break
	}
	return ne
}
