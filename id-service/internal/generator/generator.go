package generator

import (
	"errors"
	"fmt"

	"github.com/junoblue/launch/pkg/uild"
)

const MaxBatch = uild.MaxBatch

var (
	ErrUnknownFormat = errors.New("unknown id format")
	ErrInvalidID     = errors.New("invalid id")
)

// Generator mints, validates and parses one id format. Every format embeds
// the entity type so it can be recovered from the id alone.
type Generator interface {
	Generate(entityType string, md uild.Metadata) (string, error)
	Validate(id string) (bool, string) // (valid, reason)
	Parse(id string) (*ParseResult, error)
}

// batcher is implemented by formats that mint a batch more cheaply than
// one call at a time.
type batcher interface {
	GenerateBatch(entityType string, count int, md uild.Metadata) ([]string, error)
}

// ParseResult holds the fields recovered from an id. Fields that do not
// apply to a format stay zero.
type ParseResult struct {
	Format        string `json:"format"`
	EntityType    string `json:"entity_type"`
	Prefix        string `json:"prefix"`
	TimestampMs   int64  `json:"timestamp_ms,omitempty"`   // uild/snowflake/ulid/ksuid
	Nonce         string `json:"nonce,omitempty"`          // uild
	Checksum      string `json:"checksum,omitempty"`       // uild
	MachineID     int64  `json:"machine_id,omitempty"`     // snowflake
	Sequence      int64  `json:"sequence,omitempty"`       // snowflake
	UUIDVersion   int32  `json:"uuid_version,omitempty"`   // uuid
	UUIDVariant   string `json:"uuid_variant,omitempty"`   // uuid
	RandomPayload string `json:"random_payload,omitempty"` // ulid/ksuid, hex
	IDLength      int32  `json:"id_length,omitempty"`      // nanoid/cuid2 payload length
	Alphabet      string `json:"alphabet,omitempty"`       // nanoid
}

// GenerateBatch mints count ids of entityType, count in [1, MaxBatch].
func GenerateBatch(g Generator, entityType string, count int, md uild.Metadata) ([]string, error) {
	if count < 1 || count > MaxBatch {
		return nil, fmt.Errorf("%w: count must be between 1 and %d, got %d", uild.ErrInvalidCount, MaxBatch, count)
	}
	if b, ok := g.(batcher); ok {
		return b.GenerateBatch(entityType, count, md)
	}

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id, err := g.Generate(entityType, md)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidID, reason)
}
