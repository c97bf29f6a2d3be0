package uild

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// Entropy supplies 32-bit nonces. Implementations must be safe for
// concurrent use.
type Entropy interface {
	Nonce() (uint32, error)
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// UUIDEntropy takes the leading 32 bits of a random (v4) UUID. The version
// and variant bits sit further into the UUID, so all 32 bits are random.
type UUIDEntropy struct{}

func (UUIDEntropy) Nonce() (uint32, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return 0, fmt.Errorf("uild: failed to draw nonce: %w", err)
	}
	return binary.BigEndian.Uint32(id[:4]), nil
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// EntropyFunc adapts a function to Entropy.
type EntropyFunc func() (uint32, error)

func (f EntropyFunc) Nonce() (uint32, error) { return f() }
