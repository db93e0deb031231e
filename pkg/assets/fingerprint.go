package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Fingerprints maps asset names to their fingerprinted (hashed) versions,
// as written by a build step:
//
//	{
//	  "users.js": "users.a1b2c3d4.min.js",
//	  "users.css": "users.e5f6g7h8.css"
//	}
//
// It is safe for concurrent use.
type Fingerprints struct {
	entries map[string]string
	mu      sync.RWMutex
}

// NewFingerprints creates an empty mapping.
func NewFingerprints() *Fingerprints {
	return &Fingerprints{
		entries: make(map[string]string),
	}
}

// LoadFingerprints reads a JSON mapping from src.
func LoadFingerprints(ctx context.Context, src Source, ref string) (*Fingerprints, error) {
	data, err := src.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("assets: parse fingerprints %s: %w", ref, err)
	}
	if entries == nil {
		entries = make(map[string]string)
	}
	return &Fingerprints{entries: entries}, nil
}

// Resolve returns the fingerprinted name for name, or name unchanged when
// it has none.
func (f *Fingerprints) Resolve(name string) string {
	if f == nil {
		return name
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	if resolved, ok := f.entries[name]; ok {
		return resolved
	}
	return name
}

// Set adds or updates an entry.
func (f *Fingerprints) Set(name, resolved string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[name] = resolved
}

// Len returns the number of entries.
func (f *Fingerprints) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.entries)
}
