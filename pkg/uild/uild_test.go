package uild

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedGenerator(ms int64, nonce uint32) *Generator {
	return NewGenerator(
		WithClock(ClockFunc(func() time.Time { return time.UnixMilli(ms) })),
		WithEntropy(EntropyFunc(func() (uint32, error) { return nonce, nil })),
	)
}

func TestGenerateForEveryType(t *testing.T) {
	for _, e := range DefaultRegistry().Entries() {
		t.Run(e.Type, func(t *testing.T) {
			id, err := Generate(e.Type, nil)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(id, e.Prefix+"-"), id)
			assert.True(t, Validate(id), id)

			typ, ok := TypeOf(id)
			assert.True(t, ok)
			assert.Equal(t, e.Type, typ)
		})
	}
}

func TestGenerateWithMetadata(t *testing.T) {
	id, err := Generate(TypeUser, Metadata{"org": "test", "role": "admin"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "usr-"))
	assert.True(t, Validate(id))
}

func TestGenerateGolden(t *testing.T) {
	g := fixedGenerator(0x18c2f0a1b23, 0x3f9a2b7c)

	t.Run("without metadata", func(t *testing.T) {
		id, err := g.Generate(TypeUser, nil)
		require.NoError(t, err)
		assert.Equal(t, "usr-18c2f0a1b23-3f9a2b7c-4fcc", id)
	})

	t.Run("empty metadata hashes like none", func(t *testing.T) {
		id, err := g.Generate(TypeUser, Metadata{})
		require.NoError(t, err)
		assert.Equal(t, "usr-18c2f0a1b23-3f9a2b7c-4fcc", id)
	})

	t.Run("metadata only changes checksum", func(t *testing.T) {
		id, err := g.Generate(TypeUser, Metadata{"role": "admin", "org": "test"})
		require.NoError(t, err)
		assert.Equal(t, "usr-18c2f0a1b23-3f9a2b7c-6c62", id)
	})
}

func TestGeneratePadsNonceAndTimestamp(t *testing.T) {
	g := fixedGenerator(0, 0)
	id, err := g.Generate(TypeTenant, nil)
	require.NoError(t, err)
	assert.Equal(t, "tnt-0-00000000-2b92", id)
	assert.True(t, g.Validate(id))
}

func TestGenerateUnknownType(t *testing.T) {
	_, err := Generate("not-a-real-type", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownType))

	var ute *UnknownTypeError
	require.True(t, errors.As(err, &ute))
	assert.Equal(t, "not-a-real-type", ute.Type)
	assert.ElementsMatch(t, []string{"user", "tenant", "session", "document", "transaction", "product", "order", "invoice"}, ute.Valid)
	assert.Contains(t, err.Error(), "not-a-real-type")
	assert.Contains(t, err.Error(), "invoice")
}

func TestGenerateEntropyFailure(t *testing.T) {
	boom := errors.New("entropy exhausted")
	g := NewGenerator(WithEntropy(EntropyFunc(func() (uint32, error) { return 0, boom })))

	_, err := g.Generate(TypeUser, nil)
	assert.ErrorIs(t, err, boom)
}

func TestGenerateUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id, err := Generate(TypeUser, nil)
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestGenerateConcurrent(t *testing.T) {
	const workers, perWorker = 16, 200

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id, err := Generate(TypeOrder, nil)
				if !assert.NoError(t, err) || !assert.True(t, Validate(id)) {
					return
				}
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)
}

func TestGenerateBatch(t *testing.T) {
	ids, err := GenerateBatch(TypeInvoice, 25, nil)
	require.NoError(t, err)
	assert.Len(t, ids, 25)
	for _, id := range ids {
		assert.True(t, strings.HasPrefix(id, "inv-"))
	}

	for _, n := range []int{0, -1, MaxBatch + 1} {
		_, err := GenerateBatch(TypeInvoice, n, nil)
		assert.ErrorIs(t, err, ErrInvalidCount, "count %d", n)
	}

	_, err = GenerateBatch("nope", 2, nil)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"canonical", "usr-18c2f0a1b23-3f9a2b7c-4d2e", true},
		{"uppercase hex", "doc-18C2F0A1B23-3F9A2B7C-4D2E", true},
		{"single field", "invalid", false},
		{"three fields", "usr-123-456", false},
		{"unregistered prefix", "xyz-123-456-789", false},
		{"empty", "", false},
		{"five fields", "usr-1-00000000-abcd-1", false},
		{"empty timestamp", "usr--3f9a2b7c-4d2e", false},
		{"non hex timestamp", "usr-12g-3f9a2b7c-4d2e", false},
		{"signed timestamp", "usr-+12-3f9a2b7c-4d2e", false},
		{"short nonce", "usr-12-3f9a2b7-4d2e", false},
		{"long nonce", "usr-12-3f9a2b7c0-4d2e", false},
		{"non hex nonce", "usr-12-3f9a2b7z-4d2e", false},
		{"short checksum", "usr-12-3f9a2b7c-4d2", false},
		{"non hex checksum", "usr-12-3f9a2b7c-4d2x", false},
		{"uppercase prefix", "USR-12-3f9a2b7c-4d2e", false},
		{"long timestamp", "usr-ffffffffffffffffffff-3f9a2b7c-4d2e", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.input))
		})
	}
}

func TestCheckReasons(t *testing.T) {
	ok, reason := Check("usr-18c2f0a1b23-3f9a2b7c-4d2e")
	assert.True(t, ok)
	assert.Empty(t, reason)

	ok, reason = Check("usr-123-456")
	assert.False(t, ok)
	assert.Equal(t, "expected 4 dash-separated fields", reason)

	ok, reason = Check("usr-12-3f9a2b7z-4d2e")
	assert.False(t, ok)
	assert.Equal(t, "invalid nonce: must be 8 hex digits", reason)

	_, err := Parse("xyz-123-456-789")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "prefix", pe.Field)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParse(t *testing.T) {
	p, err := Parse("txn-18c2f0a1b23-3f9a2b7c-4d2e")
	require.NoError(t, err)
	assert.Equal(t, Parts{Prefix: "txn", Timestamp: "18c2f0a1b23", Nonce: "3f9a2b7c", Checksum: "4d2e"}, p)
	assert.Equal(t, "txn-18c2f0a1b23-3f9a2b7c", p.Base())
	assert.Equal(t, "txn-18c2f0a1b23-3f9a2b7c-4d2e", p.String())
}

func TestVerify(t *testing.T) {
	md := Metadata{"org": "test"}
	id, err := Generate(TypeSession, md)
	require.NoError(t, err)

	assert.True(t, Verify(id, md))
	assert.False(t, Verify("usr-18c2f0a1b23-3f9a2b7c-0000", nil))
	assert.False(t, Verify("invalid", nil))

	// A checksum can coincide for different metadata; this pair does not.
	assert.True(t, Verify("usr-18c2f0a1b23-3f9a2b7c-4fcc", nil))
	assert.False(t, Verify("usr-18c2f0a1b23-3f9a2b7c-4fcc", Metadata{"org": "test", "role": "admin"}))
}

func TestTypeOf(t *testing.T) {
	typ, ok := TypeOf("tnt-18c2f0a1b23-3f9a2b7c-4d2e")
	assert.True(t, ok)
	assert.Equal(t, TypeTenant, typ)

	for _, in := range []string{"invalid", "", "xyz-1-2-3", "-usr"} {
		_, ok := TypeOf(in)
		assert.False(t, ok, in)
	}
}

func TestTimestampOf(t *testing.T) {
	before := float64(time.Now().UnixMilli()) / 1000
	id, err := Generate(TypeUser, nil)
	require.NoError(t, err)

	ts, ok := TimestampOf(id)
	require.True(t, ok)
	assert.InDelta(t, before, ts, 1.0)

	ts, ok = TimestampOf("usr-18c2f0a1b23-3f9a2b7c-4d2e")
	require.True(t, ok)
	assert.Equal(t, 1701596240.675, ts)

	tm, ok := TimeOf("usr-18c2f0a1b23-3f9a2b7c-4d2e")
	require.True(t, ok)
	assert.Equal(t, int64(1701596240675), tm.UnixMilli())

	for _, in := range []string{"invalid", "", "usr-", "usr-zz-3f9a2b7c-4d2e", "usr-ffffffffffffffffff-3f9a2b7c-4d2e"} {
		_, ok := TimestampOf(in)
		assert.False(t, ok, in)
	}

	_, ok = TimeOf("usr-ffffffffffffffff-3f9a2b7c-4d2e")
	assert.False(t, ok, "beyond int64 milliseconds")
}

func TestPartialDecodeTolerance(t *testing.T) {
	in := "usr-18c2f0a1b23"
	assert.False(t, Validate(in))

	typ, ok := TypeOf(in)
	assert.True(t, ok)
	assert.Equal(t, TypeUser, typ)

	ts, ok := TimestampOf(in)
	assert.True(t, ok)
	assert.Equal(t, 1701596240.675, ts)
}

func TestCompare(t *testing.T) {
	older := "usr-18c2f0a1b23-3f9a2b7c-4d2e"
	newer := "ord-18c2f0a1b24-00000000-0000"

	c, err := Compare(older, newer)
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare(newer, older)
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	c, err = Compare(older, "doc-18c2f0a1b23-ffffffff-ffff")
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	_, err = Compare(older, "invalid")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Compare("usr-fffffffffffffffff-3f9a2b7c-4d2e", older)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMetadataCanonical(t *testing.T) {
	assert.Equal(t, "", Metadata(nil).Canonical())
	assert.Equal(t, "", Metadata{}.Canonical())
	assert.Equal(t, `{"a":1,"b":{"x":true,"y":"z"}}`, Metadata{"b": map[string]any{"y": "z", "x": true}, "a": 1}.Canonical())
	assert.Equal(t, "map[ch:<nil>]", Metadata{"ch": (chan int)(nil)}.Canonical())
	assert.NotPanics(t, func() { _ = Metadata{"f": math.Inf(1)}.Canonical() })
}
