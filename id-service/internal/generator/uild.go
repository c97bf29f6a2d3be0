package generator

import (
	"github.com/junoblue/launch/pkg/uild"
)

const FormatUILD = "uild"

// UILDGenerator serves the native prefix-timestamp-nonce-checksum format.
type UILDGenerator struct {
	gen *uild.Generator
}

// NewUILDGenerator wraps gen; nil means the package default.
func NewUILDGenerator(gen *uild.Generator) *UILDGenerator {
	if gen == nil {
		gen = uild.NewGenerator()
	}
	return &UILDGenerator{gen: gen}
}

func (g *UILDGenerator) Generate(entityType string, md uild.Metadata) (string, error) {
	return g.gen.Generate(entityType, md)
}

func (g *UILDGenerator) GenerateBatch(entityType string, count int, md uild.Metadata) ([]string, error) {
	return g.gen.GenerateBatch(entityType, count, md)
}

func (g *UILDGenerator) Validate(id string) (bool, string) {
	return g.gen.Check(id)
}

func (g *UILDGenerator) Parse(id string) (*ParseResult, error) {
	parts, err := g.gen.Parse(id)
	if err != nil {
		return nil, err
	}
	ts, ok := g.gen.TimeOf(id)
	if !ok {
		return nil, invalid("timestamp out of range")
	}
	typ, _ := g.gen.Registry().TypeForPrefix(parts.Prefix)

	return &ParseResult{
		Format:      FormatUILD,
		EntityType:  typ,
		Prefix:      parts.Prefix,
		TimestampMs: ts.UnixMilli(),
		Nonce:       parts.Nonce,
		Checksum:    parts.Checksum,
	}, nil
}
