package router

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrNoHistory is returned by Back and Forward at either end of the history.
var ErrNoHistory = errors.New("router: no history entry")

// NavigateOptions configures a navigation.
type NavigateOptions struct {
	// History pushes the navigation onto the history.
	History bool

	// Replace replaces the current history entry instead of pushing.
	Replace bool

	// State is stored with the history entry and copied onto the page.
	State any

	// Params are query parameters to add to the path.
	Params map[string]any
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithHistory records the navigation as a new history entry.
func WithHistory() NavigateOption {
	return func(o *NavigateOptions) {
		o.History = true
	}
}

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithState attaches state to the navigation's history entry.
func WithState(state any) NavigateOption {
	return func(o *NavigateOptions) {
		o.State = state
	}
}

// WithParams adds query parameters to the navigation path.
func WithParams(params map[string]any) NavigateOption {
	return func(o *NavigateOptions) {
		o.Params = params
	}
}

// NavigationRequest represents a pending navigation.
type NavigationRequest struct {
	Path    string
	Options NavigateOptions
}

// BuildURL returns the path to resolve. Without params the path is
// returned as given.
func (nr *NavigationRequest) BuildURL() (string, error) {
	if len(nr.Options.Params) == 0 {
		return nr.Path, nil
	}

	u, err := url.Parse(nr.Path)
	if err != nil {
		return "", fmt.Errorf("router: invalid path: %s", nr.Path)
	}

	q := u.Query()
	for k, v := range nr.Options.Params {
		q.Set(k, fmt.Sprintf("%v", v))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// HistoryEntry is one visited path.
type HistoryEntry struct {
	Path  string `json:"path"`
	State any    `json:"state,omitempty"`
}

type history struct {
	entries []HistoryEntry
	index   int
}

func (h *history) at(i int) (HistoryEntry, bool) {
	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, false
	}
	return h.entries[i], true
}

// push drops any forward entries and appends e.
func (h *history) push(e HistoryEntry) {
	h.entries = append(h.entries[:h.index+1], e)
	h.index = len(h.entries) - 1
}

func (h *history) replace(e HistoryEntry) {
	if h.index < 0 {
		h.push(e)
		return
	}
	h.entries[h.index] = e
}
