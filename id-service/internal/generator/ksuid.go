package generator

import (
	"encoding/hex"
	"fmt"

	"github.com/segmentio/ksuid"

	"github.com/junoblue/launch/pkg/uild"
)

const (
	FormatKSUID = "ksuid"

	ksuidEncodedSize = 27
)

// KSUIDGenerator generates typed KSUIDs.
type KSUIDGenerator struct {
	registry *uild.Registry
}

// NewKSUIDGenerator creates a new KSUIDGenerator.
func NewKSUIDGenerator(reg *uild.Registry) *KSUIDGenerator {
	return &KSUIDGenerator{registry: reg}
}

func (g *KSUIDGenerator) Generate(entityType string, _ uild.Metadata) (string, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate KSUID: %w", err)
	}
	return newTypedID(g.registry, entityType, id.String())
}

func (g *KSUIDGenerator) Validate(id string) (bool, string) {
	_, _, reason := g.parse(id)
	return reason == "", reason
}

func (g *KSUIDGenerator) parse(id string) (typedID, ksuid.KSUID, string) {
	t, reason := splitTyped(g.registry, id)
	if reason != "" {
		return t, ksuid.Nil, reason
	}
	if len(t.Payload) != ksuidEncodedSize {
		return t, ksuid.Nil, fmt.Sprintf("expected length %d, got %d", ksuidEncodedSize, len(t.Payload))
	}
	parsed, err := ksuid.Parse(t.Payload)
	if err != nil {
		return t, ksuid.Nil, fmt.Sprintf("invalid KSUID format: %v", err)
	}
	return t, parsed, ""
}

func (g *KSUIDGenerator) Parse(id string) (*ParseResult, error) {
	t, parsed, reason := g.parse(id)
	if reason != "" {
		return nil, invalid(reason)
	}

	return &ParseResult{
		Format:        FormatKSUID,
		EntityType:    t.EntityType,
		Prefix:        t.Prefix,
		TimestampMs:   parsed.Time().UnixMilli(),
		RandomPayload: hex.EncodeToString(parsed.Payload()),
	}, nil
}
