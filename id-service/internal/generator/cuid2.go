package generator

import (
	"fmt"

	"github.com/nrednav/cuid2"

	"github.com/junoblue/launch/pkg/uild"
)

const (
	FormatCUID2 = "cuid2"

	DefaultCUID2Length = 24
)

// CUID2Generator generates typed CUID2 ids.
type CUID2Generator struct {
	registry *uild.Registry
	length   int
	generate func() string
}

// NewCUID2Generator creates a new CUID2Generator with the given length.
// length must be between 2 and 32.
func NewCUID2Generator(reg *uild.Registry, length int) (*CUID2Generator, error) {
	if length < 2 || length > 32 {
		return nil, fmt.Errorf("cuid2 length must be between 2 and 32, got %d", length)
	}
	gen, err := cuid2.Init(cuid2.WithLength(length))
	if err != nil {
		return nil, fmt.Errorf("failed to init CUID2 generator: %w", err)
	}
	return &CUID2Generator{registry: reg, length: length, generate: gen}, nil
}

func (g *CUID2Generator) Generate(entityType string, _ uild.Metadata) (string, error) {
	return newTypedID(g.registry, entityType, g.generate())
}

func (g *CUID2Generator) Validate(id string) (bool, string) {
	_, reason := g.parse(id)
	return reason == "", reason
}

func (g *CUID2Generator) parse(id string) (typedID, string) {
	t, reason := splitTyped(g.registry, id)
	if reason != "" {
		return t, reason
	}
	if len(t.Payload) != g.length {
		return t, fmt.Sprintf("expected length %d, got %d", g.length, len(t.Payload))
	}
	if !cuid2.IsCuid(t.Payload) {
		return t, "invalid CUID2 format"
	}
	return t, ""
}

func (g *CUID2Generator) Parse(id string) (*ParseResult, error) {
	t, reason := g.parse(id)
	if reason != "" {
		return nil, invalid(reason)
	}

	return &ParseResult{
		Format:     FormatCUID2,
		EntityType: t.EntityType,
		Prefix:     t.Prefix,
		IDLength:   int32(len(t.Payload)),
	}, nil
}
