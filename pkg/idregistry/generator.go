package idregistry

import (
	"crypto/rand"
	"encoding/hex"
)

// Generator produces identifiers for a registry with auto-generation
// enabled. Implementations must never return the same ID twice for the same
// registry; the registry still rejects collisions.
type Generator interface {
	Next() ID
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func() ID

// Next implements Generator.
func (f GeneratorFunc) Next() ID {
	return f()
}

// Counter is the default generator: 0, 1, 2, ...
// Each registry gets its own counter, so IDs from one tree never influence
// another.
type Counter struct {
	next float64
}

// Sequential returns a counter starting at 0.
func Sequential() *Counter {
	return &Counter{}
}

// Next implements Generator.
func (c *Counter) Next() ID {
	id := NumberID(c.next)
	c.next++
	return id
}

// RandomHex returns a generator of random hex string IDs built from n bytes
// of crypto/rand output.
func RandomHex(n int) Generator {
	if n <= 0 {
		n = 8
	}
	return GeneratorFunc(func() ID {
		b := make([]byte, n)
		if _, err := rand.Read(b); err != nil {
			return None
		}
		return StringID(hex.EncodeToString(b))
	})
}
