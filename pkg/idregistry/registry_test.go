package idregistry

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestSequentialIDs(t *testing.T) {
	r := New[string]()
	for want := 0.0; want < 3; want++ {
		id, err := r.Set(StringID("ignored"), "v")
		if err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, ok := id.AsNumber()
		if !ok || got != want {
			t.Errorf("Set() = %v, want %v", id, want)
		}
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
}

func TestCountersAreRegistryLocal(t *testing.T) {
	a := New[int]()
	b := New[int]()
	a.Set(None, 1)
	a.Set(None, 2)
	id, _ := b.Set(None, 3)
	if n, _ := id.AsNumber(); n != 0 {
		t.Errorf("second registry started at %v, want 0", id)
	}
}

func TestRemovedIDsAreNotReused(t *testing.T) {
	r := New[int]()
	first, _ := r.Set(None, 1)
	r.Remove(first)
	second, _ := r.Set(None, 2)
	if first == second {
		t.Errorf("counter reused %v after removal", first)
	}
}

func TestExplicitIDs(t *testing.T) {
	tests := []struct {
		name    string
		id      ID
		want    ID
		wantErr error
	}{
		{"string", StringID("home"), StringID("home"), nil},
		{"trimmed string", StringID("  home "), StringID("home"), nil},
		{"number", NumberID(42), NumberID(42), nil},
		{"zero", NumberID(0), NumberID(0), nil},
		{"empty string", StringID("   "), None, ErrInvalidIdentifier},
		{"NaN", NumberID(math.NaN()), None, ErrInvalidIdentifier},
		{"infinity", NumberID(math.Inf(1)), None, ErrInvalidIdentifier},
		{"none", None, None, ErrInvalidIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New[int](WithExplicitIDs())
			got, err := r.Set(tt.id, 1)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Set(%v) error = %v, want %v", tt.id, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Set(%v) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestDuplicateNeverOverwrites(t *testing.T) {
	r := New[string](WithExplicitIDs())
	if _, err := r.Set(StringID("a"), "first"); err != nil {
		t.Fatal(err)
	}
	_, err := r.Set(StringID("a"), "second")
	if !errors.Is(err, ErrDuplicateIdentifier) {
		t.Fatalf("err = %v, want ErrDuplicateIdentifier", err)
	}
	if v, _ := r.Get(StringID("a")); v != "first" {
		t.Errorf("Get(a) = %q, want %q", v, "first")
	}
}

func TestGeneratorCollisionRejected(t *testing.T) {
	r := New[int](WithGenerator(GeneratorFunc(func() ID { return StringID("same") })))
	if _, err := r.Set(None, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Set(None, 2); !errors.Is(err, ErrDuplicateIdentifier) {
		t.Fatalf("err = %v, want ErrDuplicateIdentifier", err)
	}
}

func TestGeneratorInvalidOutputRejected(t *testing.T) {
	r := New[int](WithGenerator(GeneratorFunc(func() ID { return None })))
	if _, err := r.Set(None, 1); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("err = %v, want ErrInvalidIdentifier", err)
	}
}

func TestRandomHex(t *testing.T) {
	r := New[int](WithGenerator(RandomHex(4)))
	id, err := r.Set(None, 1)
	if err != nil {
		t.Fatal(err)
	}
	s, ok := id.AsString()
	if !ok || len(s) != 8 {
		t.Errorf("RandomHex id = %v, want 8 hex chars", id)
	}
}

func TestGetRemoveHas(t *testing.T) {
	r := New[string]()
	id, _ := r.Set(None, "x")
	if !r.Has(id) {
		t.Fatal("Has() = false after Set")
	}
	r.Remove(id)
	if _, ok := r.Get(id); ok {
		t.Error("Get() found removed id")
	}
	r.Remove(id)
}

func TestIDJSON(t *testing.T) {
	tests := []struct {
		id   ID
		want string
	}{
		{StringID("a"), `"a"`},
		{NumberID(3), `3`},
		{None, `null`},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.id)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", tt.id, data, tt.want)
		}
		var back ID
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatal(err)
		}
		if back != tt.id {
			t.Errorf("Unmarshal(%s) = %v, want %v", data, back, tt.id)
		}
	}
}

func TestIDString(t *testing.T) {
	if got := NumberID(1.5).String(); got != "1.5" {
		t.Errorf("String() = %q", got)
	}
	if got := StringID("a").String(); got != `"a"` {
		t.Errorf("String() = %q", got)
	}
	if got := None.String(); got != "<none>" {
		t.Errorf("String() = %q", got)
	}
}
