package uild

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
)

// MaxBatch caps GenerateBatch.
const MaxBatch = 1000

const separator = "-"

// Metadata perturbs the checksum of a generated identifier. It is not
// stored in the identifier.
type Metadata map[string]any

// Canonical returns the textual form hashed into the checksum: "" for nil
// or empty metadata, otherwise JSON with map keys in sorted order.
func (m Metadata) Canonical() string {
	if len(m) == 0 {
		return ""
	}
	b, err := json.Marshal(map[string]any(m))
	if err != nil {
		// Values json cannot encode (channels, funcs) still need a stable form;
		// fmt prints maps with sorted keys.
		return fmt.Sprintf("%v", map[string]any(m))
	}
	return string(b)
}

// Generator mints and inspects identifiers against one registry.
// The zero value is not usable; call NewGenerator.
type Generator struct {
	registry *Registry
	clock    Clock
	entropy  Entropy
}

// Option configures a Generator.
type Option func(*Generator)

// WithRegistry replaces the default registry.
func WithRegistry(r *Registry) Option {
	return func(g *Generator) { g.registry = r }
}

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(g *Generator) { g.clock = c }
}

// WithEntropy replaces the UUID-backed nonce source.
func WithEntropy(e Entropy) Option {
	return func(g *Generator) { g.entropy = e }
}

// NewGenerator returns a Generator using the default registry, the system
// clock and UUID entropy unless overridden.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		registry: DefaultRegistry(),
		clock:    SystemClock{},
		entropy:  UUIDEntropy{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Registry returns the generator's registry.
func (g *Generator) Registry() *Registry {
	return g.registry
}

// Generate mints an identifier for entityType. md may be nil.
func (g *Generator) Generate(entityType string, md Metadata) (string, error) {
	prefix, err := g.registry.PrefixFor(entityType)
	if err != nil {
		return "", err
	}

	nonce, err := g.entropy.Nonce()
	if err != nil {
		return "", err
	}

	ts := strconv.FormatInt(g.clock.Now().UnixMilli(), 16)
	base := prefix + separator + ts + separator + fmt.Sprintf("%08x", nonce)

	return base + separator + Checksum(base, md), nil
}

// GenerateBatch mints count identifiers of the same type and metadata.
func (g *Generator) GenerateBatch(entityType string, count int, md Metadata) ([]string, error) {
	if count < 1 || count > MaxBatch {
		return nil, fmt.Errorf("%w: must be between 1 and %d, got %d", ErrInvalidCount, MaxBatch, count)
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

// Checksum derives the four-character checksum for base
// ("prefix-timestamp-nonce") and md.
func Checksum(base string, md Metadata) string {
	sum := sha256.Sum256([]byte(base + md.Canonical()))
	return hex.EncodeToString(sum[:2])
}
