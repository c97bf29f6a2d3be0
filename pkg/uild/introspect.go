package uild

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TypeOf returns the entity type named by the identifier's prefix.
//
// Only the first field is inspected; the rest of the string is not
// validated, so TypeOf can succeed on input Validate rejects. Callers rely
// on this partial decoding.
func (g *Generator) TypeOf(candidate string) (string, bool) {
	prefix, _, _ := strings.Cut(candidate, separator)
	return g.registry.TypeForPrefix(prefix)
}

// TimestampOf returns the creation time embedded in the identifier as
// seconds since the Unix epoch.
//
// Like TypeOf it reads only its own field (the second) and does not run
// full validation.
func (g *Generator) TimestampOf(candidate string) (float64, bool) {
	ms, ok := timestampMillis(candidate)
	if !ok {
		return 0, false
	}
	return float64(ms) / 1000, true
}

// TimeOf is TimestampOf as a time.Time with millisecond precision.
func (g *Generator) TimeOf(candidate string) (time.Time, bool) {
	ms, ok := timestampMillis(candidate)
	if !ok || ms > math.MaxInt64 {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)), true
}

// Compare orders two valid identifiers by embedded timestamp, returning -1,
// 0 or +1. Identifiers minted in the same millisecond compare equal.
func (g *Generator) Compare(a, b string) (int, error) {
	ta, err := g.validMillis(a)
	if err != nil {
		return 0, err
	}
	tb, err := g.validMillis(b)
	if err != nil {
		return 0, err
	}

	switch {
	case ta < tb:
		return -1, nil
	case ta > tb:
		return 1, nil
	default:
		return 0, nil
	}
}

func (g *Generator) validMillis(candidate string) (uint64, error) {
	if _, err := g.Parse(candidate); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, candidate)
	}
	ms, ok := timestampMillis(candidate)
	if !ok {
		return 0, fmt.Errorf("%w: timestamp of %q overflows 64 bits", ErrInvalid, candidate)
	}
	return ms, nil
}

func timestampMillis(candidate string) (uint64, bool) {
	fields := strings.Split(candidate, separator)
	if len(fields) < 2 {
		return 0, false
	}
	ms, err := strconv.ParseUint(fields[1], 16, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}
