package generator

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/junoblue/launch/pkg/uild"
)

const (
	FormatNanoID = "nanoid"

	DefaultNanoIDSize     = 21
	DefaultNanoIDAlphabet = "_-0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NanoIDGenerator generates typed NanoIDs with configurable size and alphabet.
type NanoIDGenerator struct {
	registry *uild.Registry
	size     int
	alphabet string
}

// NewNanoIDGenerator creates a new NanoIDGenerator.
// size must be between 1 and 256. alphabet must have at least 2 characters.
func NewNanoIDGenerator(reg *uild.Registry, size int, alphabet string) (*NanoIDGenerator, error) {
	if size < 1 || size > 256 {
		return nil, fmt.Errorf("nanoid size must be between 1 and 256, got %d", size)
	}
	if len(alphabet) < 2 {
		return nil, fmt.Errorf("nanoid alphabet must have at least 2 characters, got %d", len(alphabet))
	}
	return &NanoIDGenerator{registry: reg, size: size, alphabet: alphabet}, nil
}

func (g *NanoIDGenerator) Generate(entityType string, _ uild.Metadata) (string, error) {
	id, err := gonanoid.Generate(g.alphabet, g.size)
	if err != nil {
		return "", fmt.Errorf("failed to generate NanoID: %w", err)
	}
	return newTypedID(g.registry, entityType, id)
}

func (g *NanoIDGenerator) Validate(id string) (bool, string) {
	_, reason := g.parse(id)
	return reason == "", reason
}

func (g *NanoIDGenerator) parse(id string) (typedID, string) {
	t, reason := splitTyped(g.registry, id)
	if reason != "" {
		return t, reason
	}
	if len(t.Payload) != g.size {
		return t, fmt.Sprintf("expected length %d, got %d", g.size, len(t.Payload))
	}
	for _, c := range t.Payload {
		if !strings.ContainsRune(g.alphabet, c) {
			return t, fmt.Sprintf("character '%c' not in alphabet", c)
		}
	}
	return t, ""
}

func (g *NanoIDGenerator) Parse(id string) (*ParseResult, error) {
	t, reason := g.parse(id)
	if reason != "" {
		return nil, invalid(reason)
	}

	return &ParseResult{
		Format:     FormatNanoID,
		EntityType: t.EntityType,
		Prefix:     t.Prefix,
		IDLength:   int32(len(t.Payload)),
		Alphabet:   g.alphabet,
	}, nil
}
