package uild

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	want := map[string]string{
		"user": "usr", "tenant": "tnt", "session": "ses", "document": "doc",
		"transaction": "txn", "product": "prd", "order": "ord", "invoice": "inv",
	}
	for typ, prefix := range want {
		got, err := r.PrefixFor(typ)
		require.NoError(t, err)
		assert.Equal(t, prefix, got)

		back, ok := r.TypeForPrefix(prefix)
		assert.True(t, ok)
		assert.Equal(t, typ, back)
	}

	assert.Equal(t, []string{"document", "invoice", "order", "product", "session", "tenant", "transaction", "user"}, r.Types())
	assert.Len(t, r.Entries(), len(want))
}

func TestRegistryLookupMisses(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.PrefixFor("widget")
	var ute *UnknownTypeError
	require.True(t, errors.As(err, &ute))
	assert.Equal(t, "widget", ute.Type)

	_, ok := r.TypeForPrefix("xyz")
	assert.False(t, ok)
	_, ok = r.TypeForPrefix("")
	assert.False(t, ok)
}

func TestRegistryTypesIsACopy(t *testing.T) {
	r := DefaultRegistry()
	types := r.Types()
	types[0] = "mutated"
	assert.NotEqual(t, "mutated", r.Types()[0])
}

func TestNewRegistryRejects(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"no entries", nil},
		{"empty type", []Entry{{Type: "", Prefix: "abc"}}},
		{"short prefix", []Entry{{Type: "a", Prefix: "ab"}}},
		{"uppercase prefix", []Entry{{Type: "a", Prefix: "ABC"}}},
		{"digit prefix", []Entry{{Type: "a", Prefix: "ab1"}}},
		{"duplicate type", []Entry{{Type: "a", Prefix: "abc"}, {Type: "a", Prefix: "abd"}}},
		{"duplicate prefix", []Entry{{Type: "a", Prefix: "abc"}, {Type: "b", Prefix: "abc"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.entries...)
			assert.Error(t, err)
		})
	}
}

func TestCustomRegistryGenerator(t *testing.T) {
	r, err := NewRegistry(Entry{Type: "widget", Prefix: "wdg"})
	require.NoError(t, err)

	g := NewGenerator(WithRegistry(r))
	id, err := g.Generate("widget", nil)
	require.NoError(t, err)
	assert.True(t, g.Validate(id))
	assert.False(t, Validate(id), "default registry does not know wdg")

	_, err = g.Generate(TypeUser, nil)
	assert.ErrorIs(t, err, ErrUnknownType)
}
