package uild

import (
	"fmt"
	"sort"
)

// Entry binds a logical entity type to its three-letter prefix.
type Entry struct {
	Type   string
	Prefix string
}

// Default entity types.
const (
	TypeUser        = "user"
	TypeTenant      = "tenant"
	TypeSession     = "session"
	TypeDocument    = "document"
	TypeTransaction = "transaction"
	TypeProduct     = "product"
	TypeOrder       = "order"
	TypeInvoice     = "invoice"
)

var defaultEntries = []Entry{
	{Type: TypeUser, Prefix: "usr"},
	{Type: TypeTenant, Prefix: "tnt"},
	{Type: TypeSession, Prefix: "ses"},
	{Type: TypeDocument, Prefix: "doc"},
	{Type: TypeTransaction, Prefix: "txn"},
	{Type: TypeProduct, Prefix: "prd"},
	{Type: TypeOrder, Prefix: "ord"},
	{Type: TypeInvoice, Prefix: "inv"},
}

var defaultRegistry = mustRegistry(defaultEntries...)

// Registry is an immutable bijection between entity types and prefixes.
// It is safe for concurrent use.
type Registry struct {
	prefixes map[string]string // type -> prefix
	types    map[string]string // prefix -> type
	sorted   []string
}

// NewRegistry builds a registry from entries. Every prefix must be exactly
// three lowercase ASCII letters, and neither types nor prefixes may repeat.
func NewRegistry(entries ...Entry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("uild: registry needs at least one entry")
	}

	r := &Registry{
		prefixes: make(map[string]string, len(entries)),
		types:    make(map[string]string, len(entries)),
		sorted:   make([]string, 0, len(entries)),
	}
	for _, e := range entries {
		if e.Type == "" {
			return nil, fmt.Errorf("uild: empty entity type for prefix %q", e.Prefix)
		}
		if !isPrefix(e.Prefix) {
			return nil, fmt.Errorf("uild: prefix %q for type %q must be three lowercase letters", e.Prefix, e.Type)
		}
		if _, dup := r.prefixes[e.Type]; dup {
			return nil, fmt.Errorf("uild: entity type %q registered twice", e.Type)
		}
		if owner, dup := r.types[e.Prefix]; dup {
			return nil, fmt.Errorf("uild: prefix %q already bound to type %q", e.Prefix, owner)
		}
		r.prefixes[e.Type] = e.Prefix
		r.types[e.Prefix] = e.Type
		r.sorted = append(r.sorted, e.Type)
	}
	sort.Strings(r.sorted)

	return r, nil
}

func mustRegistry(entries ...Entry) *Registry {
	r, err := NewRegistry(entries...)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultRegistry returns the built-in registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// PrefixFor returns the prefix registered for entityType.
func (r *Registry) PrefixFor(entityType string) (string, error) {
	p, ok := r.prefixes[entityType]
	if !ok {
		return "", &UnknownTypeError{Type: entityType, Valid: r.Types()}
	}
	return p, nil
}

// TypeForPrefix returns the entity type bound to prefix, or false.
func (r *Registry) TypeForPrefix(prefix string) (string, bool) {
	t, ok := r.types[prefix]
	return t, ok
}

// Types returns the registered entity types in sorted order.
func (r *Registry) Types() []string {
	out := make([]string, len(r.sorted))
	copy(out, r.sorted)
	return out
}

// Entries returns the registry contents sorted by entity type.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.sorted))
	for _, t := range r.sorted {
		out = append(out, Entry{Type: t, Prefix: r.prefixes[t]})
	}
	return out
}

func isPrefix(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}
