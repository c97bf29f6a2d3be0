package generator

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/junoblue/launch/pkg/uild"
)

const (
	FormatSnowflake = "snowflake"

	DefaultSnowflakeEpoch int64 = 1704067200000 // 2024-01-01T00:00:00Z

	timestampBits = 41
	machineIDBits = 10
	sequenceBits  = 12

	maxMachineID = (1 << machineIDBits) - 1 // 1023
	maxSequence  = (1 << sequenceBits) - 1  // 4095

	machineIDShift = sequenceBits
	timestampShift = sequenceBits + machineIDBits
)

var (
	errBeforeEpoch    = errors.New("current time is before custom epoch")
	errClockBackwards = errors.New("clock moved backwards")
)

// SnowflakeGenerator generates typed 64-bit snowflake ids. The numeric part
// is unique per machine id; the type prefix is not part of it.
type SnowflakeGenerator struct {
	registry *uild.Registry
	now      func() int64

	mu        sync.Mutex
	epoch     int64 // custom epoch in ms
	machineID int64 // 10-bit machine ID
	sequence  int64 // 12-bit sequence
	lastTime  int64 // last generation timestamp in ms
}

// NewSnowflakeGenerator creates a new SnowflakeGenerator.
// machineID must be in range [0, 1023].
// epoch is the custom epoch in unix milliseconds.
func NewSnowflakeGenerator(reg *uild.Registry, machineID int64, epoch int64) (*SnowflakeGenerator, error) {
	if machineID < 0 || machineID > maxMachineID {
		return nil, fmt.Errorf("machine_id must be between 0 and %d, got %d", maxMachineID, machineID)
	}
	return &SnowflakeGenerator{
		registry:  reg,
		now:       func() int64 { return time.Now().UnixMilli() },
		epoch:     epoch,
		machineID: machineID,
	}, nil
}

func (g *SnowflakeGenerator) Generate(entityType string, _ uild.Metadata) (string, error) {
	prefix, err := g.registry.PrefixFor(entityType)
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	n, err := g.nextLocked()
	if err != nil {
		return "", err
	}
	return prefix + string(typedSeparator) + strconv.FormatInt(n, 10), nil
}

// GenerateBatch holds the lock for the whole batch so the sequence runs
// uninterrupted.
func (g *SnowflakeGenerator) GenerateBatch(entityType string, count int, _ uild.Metadata) ([]string, error) {
	prefix, err := g.registry.PrefixFor(entityType)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		n, err := g.nextLocked()
		if err != nil {
			return nil, err
		}
		ids = append(ids, prefix+string(typedSeparator)+strconv.FormatInt(n, 10))
	}
	return ids, nil
}

// nextLocked must be called with g.mu held.
func (g *SnowflakeGenerator) nextLocked() (int64, error) {
	now := g.now()
	if now < g.epoch {
		return 0, errBeforeEpoch
	}
	if now < g.lastTime {
		return 0, fmt.Errorf("%w: current=%d, last=%d", errClockBackwards, now, g.lastTime)
	}

	if now == g.lastTime {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			// sequence exhausted, wait for the next millisecond
			for now <= g.lastTime {
				now = g.now()
			}
		}
	} else {
		g.sequence = 0
	}

	g.lastTime = now
	return ((now - g.epoch) << timestampShift) | (g.machineID << machineIDShift) | g.sequence, nil
}

func (g *SnowflakeGenerator) Validate(id string) (bool, string) {
	_, _, reason := g.parse(id)
	return reason == "", reason
}

func (g *SnowflakeGenerator) parse(id string) (typedID, int64, string) {
	t, reason := splitTyped(g.registry, id)
	if reason != "" {
		return t, 0, reason
	}
	n, err := strconv.ParseInt(t.Payload, 10, 64)
	if err != nil {
		return t, 0, "invalid integer format"
	}
	if n < 0 {
		return t, 0, "id must be a positive integer"
	}

	ts := (n >> timestampShift) & ((1 << timestampBits) - 1)
	if ts+g.epoch > g.now() {
		return t, 0, "timestamp is in the future"
	}
	return t, n, ""
}

func (g *SnowflakeGenerator) Parse(id string) (*ParseResult, error) {
	t, n, reason := g.parse(id)
	if reason != "" {
		return nil, invalid(reason)
	}

	return &ParseResult{
		Format:      FormatSnowflake,
		EntityType:  t.EntityType,
		Prefix:      t.Prefix,
		TimestampMs: ((n >> timestampShift) & ((1 << timestampBits) - 1)) + g.epoch,
		MachineID:   (n >> machineIDShift) & maxMachineID,
		Sequence:    n & maxSequence,
	}, nil
}
