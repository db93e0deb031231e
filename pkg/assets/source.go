// Package assets fetches the files a view refers to and assembles them into
// the markup for a page.
//
// A Source reads named assets from some backing store. DirSource reads from
// any fs.FS, S3Source from an S3 bucket:
//
//	src := assets.NewDirSource(os.DirFS("views"))
//	fp, _ := assets.LoadFingerprints(ctx, src, "manifest.json")
//	a := assets.NewAssembler(src, assets.WithFingerprints(fp), assets.WithPrefix("/public/"))
//
//	r := router.New(tree, router.WithRenderer(a))
//	page, _ := r.Navigate(ctx, "/users/42") // page.HTML holds the assembled view
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// ErrNotFound is returned when a source has no asset under a ref.
var ErrNotFound = errors.New("asset not found")

// Source reads assets by reference.
type Source interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, ref string) ([]byte, error)

// Fetch implements Source.
func (f SourceFunc) Fetch(ctx context.Context, ref string) ([]byte, error) {
	return f(ctx, ref)
}

// cleanRef turns a view reference into an fs.FS style path. References may
// carry a leading slash; they may not climb out of the source root.
func cleanRef(ref string) (string, error) {
	p := path.Clean("/" + strings.TrimSpace(ref))
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." || !fs.ValidPath(p) {
		return "", fmt.Errorf("assets: invalid ref %q", ref)
	}
	return p, nil
}

// DirSource reads assets from a file system.
type DirSource struct {
	fsys fs.FS
}

// NewDirSource creates a source over fsys, typically os.DirFS(dir).
func NewDirSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys}
}

// Fetch implements Source.
func (s *DirSource) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := cleanRef(ref)
	if err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(s.fsys, p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("assets: %w: %s", ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("assets: read %s: %w", ref, err)
	}
	return data, nil
}
