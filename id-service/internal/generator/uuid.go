package generator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/junoblue/launch/pkg/uild"
)

const FormatUUID = "uuid"

// UUIDGenerator generates typed UUID v4 ids, e.g. usr_6f1c...
type UUIDGenerator struct {
	registry *uild.Registry
}

// NewUUIDGenerator creates a new UUIDGenerator.
func NewUUIDGenerator(reg *uild.Registry) *UUIDGenerator {
	return &UUIDGenerator{registry: reg}
}

func (g *UUIDGenerator) Generate(entityType string, _ uild.Metadata) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %w", err)
	}
	return newTypedID(g.registry, entityType, id.String())
}

func (g *UUIDGenerator) Validate(id string) (bool, string) {
	_, _, reason := g.parse(id)
	return reason == "", reason
}

func (g *UUIDGenerator) parse(id string) (typedID, uuid.UUID, string) {
	t, reason := splitTyped(g.registry, id)
	if reason != "" {
		return t, uuid.Nil, reason
	}
	parsed, err := uuid.Parse(t.Payload)
	if err != nil {
		return t, uuid.Nil, fmt.Sprintf("invalid UUID format: %v", err)
	}
	if parsed.Version() != 4 {
		return t, uuid.Nil, fmt.Sprintf("expected UUID v4, got v%d", parsed.Version())
	}
	return t, parsed, ""
}

func (g *UUIDGenerator) Parse(id string) (*ParseResult, error) {
	t, parsed, reason := g.parse(id)
	if reason != "" {
		return nil, invalid(reason)
	}

	var variant string
	switch parsed.Variant() {
	case uuid.RFC4122:
		variant = "RFC4122"
	case uuid.Reserved:
		variant = "Reserved"
	case uuid.Microsoft:
		variant = "Microsoft"
	case uuid.Future:
		variant = "Future"
	default:
		variant = "Unknown"
	}

	return &ParseResult{
		Format:      FormatUUID,
		EntityType:  t.EntityType,
		Prefix:      t.Prefix,
		UUIDVersion: int32(parsed.Version()),
		UUIDVariant: variant,
	}, nil
}
