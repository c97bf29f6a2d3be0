package generator

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/junoblue/launch/pkg/uild"
)

const FormatULID = "ulid"

// ULIDGenerator generates typed ULIDs. Ids minted in the same millisecond
// by one generator sort in creation order.
type ULIDGenerator struct {
	registry *uild.Registry

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator(reg *uild.Registry) *ULIDGenerator {
	return &ULIDGenerator{
		registry: reg,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

func (g *ULIDGenerator) Generate(entityType string, _ uild.Metadata) (string, error) {
	g.mu.Lock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	g.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return newTypedID(g.registry, entityType, id.String())
}

func (g *ULIDGenerator) Validate(id string) (bool, string) {
	_, _, reason := g.parse(id)
	return reason == "", reason
}

func (g *ULIDGenerator) parse(id string) (typedID, ulid.ULID, string) {
	t, reason := splitTyped(g.registry, id)
	if reason != "" {
		return t, ulid.ULID{}, reason
	}
	if len(t.Payload) != ulid.EncodedSize {
		return t, ulid.ULID{}, fmt.Sprintf("expected length %d, got %d", ulid.EncodedSize, len(t.Payload))
	}
	parsed, err := ulid.ParseStrict(t.Payload)
	if err != nil {
		return t, ulid.ULID{}, fmt.Sprintf("invalid ULID format: %v", err)
	}
	return t, parsed, ""
}

func (g *ULIDGenerator) Parse(id string) (*ParseResult, error) {
	t, parsed, reason := g.parse(id)
	if reason != "" {
		return nil, invalid(reason)
	}

	return &ParseResult{
		Format:        FormatULID,
		EntityType:    t.EntityType,
		Prefix:        t.Prefix,
		TimestampMs:   int64(parsed.Time()),
		RandomPayload: hex.EncodeToString(parsed.Entropy()),
	}, nil
}
