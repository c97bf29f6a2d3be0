package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenantID = "tnt-18c2f0a1b23-3f9a2b7c-4d2e"

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "tenant:"+tenantID+":events", Channel("tenant", tenantID))
	assert.Equal(t, "tenant:*:events", Pattern("tenant"))
	assert.Equal(t, "tenant-events", Topic("tenant"))

	entity, id, err := ParseChannel(Channel("tenant", tenantID))
	require.NoError(t, err)
	assert.Equal(t, "tenant", entity)
	assert.Equal(t, tenantID, id)
}

func TestChannelToTopicAndKey(t *testing.T) {
	topic, key, err := channelToTopicAndKey(Channel("tenant", tenantID))
	require.NoError(t, err)
	assert.Equal(t, "tenant-events", topic)
	assert.Equal(t, tenantID, key)

	topic, err = patternToTopic(Pattern("tenant"))
	require.NoError(t, err)
	assert.Equal(t, "tenant-events", topic)

	for _, bad := range []string{"", "tenant", "tenant::events", "tenant:x:updates", "a:b:c:events"} {
		_, _, err := channelToTopicAndKey(bad)
		assert.Error(t, err, bad)
	}

	_, _, err = channelToTopicAndKey(Pattern("tenant"))
	assert.Error(t, err)
	_, err = patternToTopic(Channel("tenant", tenantID))
	assert.Error(t, err)
}

func TestSanitizeGroupID(t *testing.T) {
	assert.Equal(t, "tenant---events", sanitizeGroupID("tenant:*:events"))
}

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent("tenant.created", tenantID, map[string]string{"subdomain": "acme"})
	require.NoError(t, err)
	assert.Equal(t, "tenant.created", ev.Type)
	assert.Equal(t, tenantID, ev.Subject)
	assert.WithinDuration(t, time.Now(), ev.Timestamp, time.Second)

	var payload struct {
		Subdomain string `json:"subdomain"`
	}
	require.NoError(t, ev.UnmarshalPayload(&payload))
	assert.Equal(t, "acme", payload.Subdomain)
}

func TestNewPubSubRejectsUnknownDriver(t *testing.T) {
	_, err := NewPubSub(Config{Driver: "nats"})
	assert.Error(t, err)

	ps, err := NewPubSub(Config{Driver: DriverMemory})
	require.NoError(t, err)
	assert.NoError(t, ps.Close())
}

func receive(t *testing.T, ch <-chan *Event) *Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestMemoryPubSub(t *testing.T) {
	ctx := context.Background()
	ps := NewMemoryPubSub()
	defer ps.Close()

	one, err := ps.Subscribe(ctx, Channel("tenant", tenantID))
	require.NoError(t, err)
	all, err := ps.SubscribePattern(ctx, Pattern("tenant"))
	require.NoError(t, err)

	ev, err := NewEvent("tenant.settings_updated", tenantID, nil)
	require.NoError(t, err)
	require.NoError(t, ps.Publish(ctx, Channel("tenant", tenantID), ev))

	assert.Equal(t, ev, receive(t, one))
	assert.Equal(t, ev, receive(t, all))

	other, err := NewEvent("tenant.created", "tnt-other", nil)
	require.NoError(t, err)
	require.NoError(t, ps.Publish(ctx, Channel("tenant", "tnt-other"), other))
	assert.Equal(t, other, receive(t, all))
	assert.Empty(t, one)

	require.NoError(t, ps.Unsubscribe(ctx, Channel("tenant", tenantID)))
	_, ok := <-one
	assert.False(t, ok)
}

func TestMemoryPubSubContextCancel(t *testing.T) {
	ps := NewMemoryPubSub()
	defer ps.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := ps.SubscribePattern(ctx, Pattern("tenant"))
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after cancel")
	}
}
