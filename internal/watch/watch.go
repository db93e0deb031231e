// Package watch polls manifest and view files for changes.
//
//	w := watch.New(watch.Config{Paths: []string{"routes.hcl", "views"}})
//	w.OnChange(func(changes []watch.Change) {
//	    if watch.Has(changes, watch.ChangeManifest) {
//	        reload()
//	    }
//	})
//	go w.Start(ctx)
package watch

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// ChangeType classifies a changed file.
type ChangeType int

const (
	ChangeAsset ChangeType = iota
	ChangeManifest
	ChangeView
	ChangeStyle
	ChangeScript
)

// String implements fmt.Stringer.
func (t ChangeType) String() string {
	switch t {
	case ChangeManifest:
		return "manifest"
	case ChangeView:
		return "view"
	case ChangeStyle:
		return "style"
	case ChangeScript:
		return "script"
	default:
		return "asset"
	}
}

// Change is a created, modified or removed file.
type Change struct {
	Path    string
	Type    ChangeType
	Removed bool
}

// Has reports whether changes holds a change of type t.
func Has(changes []Change, t ChangeType) bool {
	return slices.ContainsFunc(changes, func(c Change) bool { return c.Type == t })
}

// Config configures a Watcher.
type Config struct {
	// Paths are the files and directories to watch.
	Paths []string

	// Ignore lists patterns to skip: a base name glob ("*.swp"), a path
	// glob ("views/tmp/*") or a path segment ("node_modules").
	Ignore []string

	// Interval is the polling period (default 250ms).
	Interval time.Duration

	// Classify overrides the extension based ChangeType of a path.
	Classify func(path string) ChangeType
}

// DefaultIgnore contains the patterns ignored when Config.Ignore is empty.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher reports file changes below a set of paths.
type Watcher struct {
	config   Config
	onChange func([]Change)

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	modTimes map[string]time.Time
}

// New creates a watcher.
func New(config Config) *Watcher {
	if config.Interval == 0 {
		config.Interval = 250 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	if config.Classify == nil {
		config.Classify = Classify
	}
	return &Watcher{
		config:   config,
		modTimes: make(map[string]time.Time),
	}
}

// OnChange sets the callback receiving each poll's changes.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start records the current state of the watched paths and polls until
// ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	w.mu.Lock()
	w.modTimes = w.scan()
	w.mu.Unlock()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.poll()
		}
	}
}

// Stop stops a running watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning reports whether the watcher is polling.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// scan returns the modification time of every watched file.
func (w *Watcher) scan() map[string]time.Time {
	modTimes := make(map[string]time.Time)
	for _, root := range w.config.Paths {
		filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if w.shouldIgnore(p) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if info, err := d.Info(); err == nil {
				modTimes[p] = info.ModTime()
			}
			return nil
		})
	}
	return modTimes
}

// poll compares a fresh scan with the last one and reports the difference.
func (w *Watcher) poll() {
	current := w.scan()

	w.mu.Lock()
	previous := w.modTimes
	w.modTimes = current
	callback := w.onChange
	w.mu.Unlock()

	var changes []Change
	for p, mod := range current {
		if last, ok := previous[p]; !ok || !mod.Equal(last) {
			changes = append(changes, Change{Path: p, Type: w.config.Classify(p)})
		}
	}
	for p := range previous {
		if _, ok := current[p]; !ok {
			changes = append(changes, Change{Path: p, Type: w.config.Classify(p), Removed: true})
		}
	}

	if len(changes) == 0 || callback == nil {
		return
	}
	slices.SortFunc(changes, func(a, b Change) int { return strings.Compare(a.Path, b.Path) })
	callback(changes)
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}

		hasPathSep := strings.ContainsAny(pattern, `/\`)
		if strings.ContainsAny(pattern, "*?[") {
			var matched bool
			if hasPathSep {
				matched, _ = path.Match(filepath.ToSlash(pattern), normalized)
			} else {
				matched, _ = filepath.Match(pattern, name)
			}
			if matched {
				return true
			}
			continue
		}

		if hasPathSep {
			if containsSegments(normalized, filepath.ToSlash(pattern)) {
				return true
			}
		} else if slices.Contains(segments(normalized), pattern) {
			return true
		}
	}
	return false
}

// containsSegments reports whether the segments of pattern appear
// consecutively in p.
func containsSegments(p, pattern string) bool {
	parts := segments(p)
	want := segments(pattern)
	if len(want) == 0 || len(want) > len(parts) {
		return false
	}
	for i := 0; i <= len(parts)-len(want); i++ {
		if slices.Equal(parts[i:i+len(want)], want) {
			return true
		}
	}
	return false
}

func segments(p string) []string {
	var out []string
	for _, part := range strings.Split(p, "/") {
		if part != "" && part != "." {
			out = append(out, part)
		}
	}
	return out
}

// Classify determines the type of a change from the file extension.
func Classify(p string) ChangeType {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".hcl":
		return ChangeManifest
	case ".html", ".htm":
		return ChangeView
	case ".css":
		return ChangeStyle
	case ".js", ".mjs":
		return ChangeScript
	default:
		return ChangeAsset
	}
}
