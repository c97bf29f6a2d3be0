package pubsub

import (
	"fmt"
	"strings"
)

const (
	channelSep    = ":"
	channelSuffix = "events"
	wildcard      = "*"
)

// Channel names the event stream of one entity: "<entity>:<id>:events".
func Channel(entity, id string) string {
	return entity + channelSep + id + channelSep + channelSuffix
}

// Pattern matches the event streams of every entity of a kind:
// "<entity>:*:events".
func Pattern(entity string) string {
	return Channel(entity, wildcard)
}

// Topic is the Kafka topic carrying all channels of entity.
func Topic(entity string) string {
	return entity + "-" + channelSuffix
}

// ParseChannel splits a channel or pattern into entity and id.
func ParseChannel(channel string) (entity, id string, err error) {
	parts := strings.Split(channel, channelSep)
	if len(parts) != 3 || parts[2] != channelSuffix || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid channel format: %s", channel)
	}
	return parts[0], parts[1], nil
}

// channelToTopicAndKey converts a channel to a Kafka topic and message key.
//
//	"tenant:tnt-18c2f0a1b23-3f9a2b7c-4d2e:events" → topic "tenant-events", key "tnt-18c2f0a1b23-3f9a2b7c-4d2e"
func channelToTopicAndKey(channel string) (topic, key string, err error) {
	entity, id, err := ParseChannel(channel)
	if err != nil {
		return "", "", err
	}
	if id == wildcard {
		return "", "", fmt.Errorf("channel %s is a pattern", channel)
	}
	return Topic(entity), id, nil
}

// patternToTopic converts a subscribe pattern to a Kafka topic.
//
//	"tenant:*:events" → "tenant-events"
func patternToTopic(pattern string) (string, error) {
	entity, id, err := ParseChannel(pattern)
	if err != nil {
		return "", err
	}
	if id != wildcard {
		return "", fmt.Errorf("pattern %s must use %q for the id", pattern, wildcard)
	}
	return Topic(entity), nil
}
