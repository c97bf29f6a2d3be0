package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/junoblue/launch/pkg/log"
)

const headerEventType = "event_type"

// kafkaSubscription tracks a single consumer subscription.
type kafkaSubscription struct {
	consumer *kafka.Consumer
	cancel   context.CancelFunc
}

// KafkaPubSub implements PubSub on Kafka. Every channel of an entity kind
// shares one topic and the entity id is the message key, so events about
// one entity stay ordered within a partition.
type KafkaPubSub struct {
	producer      *kafka.Producer
	subscriptions map[string]*kafkaSubscription // key (channel or pattern) → subscription
	config        KafkaConfig
	mu            sync.Mutex
	doneCh        chan struct{}
}

// NewKafkaPubSub creates a new Kafka-based PubSub instance.
func NewKafkaPubSub(cfg KafkaConfig) (*KafkaPubSub, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"acks":              "all",
		"linger.ms":         5,
		"compression.type":  "snappy",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	kps := &KafkaPubSub{
		producer:      p,
		subscriptions: make(map[string]*kafkaSubscription),
		config:        cfg,
		doneCh:        make(chan struct{}),
	}

	go kps.deliveryReportHandler()

	if len(cfg.Topics) > 0 {
		if err := kps.ensureTopics(cfg.Topics); err != nil {
			l := log.L()
			l.Warn().Err(err).Strs("topics", cfg.Topics).Msg("failed to ensure kafka topics (may already exist)")
		}
	}

	return kps, nil
}

// ensureTopics creates the configured topics if they don't exist.
func (k *KafkaPubSub) ensureTopics(names []string) error {
	admin, err := kafka.NewAdminClientFromProducer(k.producer)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	partitions := k.config.Partitions
	if partitions <= 0 {
		partitions = 4
	}
	replication := k.config.ReplicationFactor
	if replication <= 0 {
		replication = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	topics := make([]kafka.TopicSpecification, 0, len(names))
	for _, name := range names {
		topics = append(topics, kafka.TopicSpecification{
			Topic:             name,
			NumPartitions:     partitions,
			ReplicationFactor: replication,
		})
	}

	results, err := admin.CreateTopics(ctx, topics)
	if err != nil {
		return fmt.Errorf("failed to create topics: %w", err)
	}

	l := log.L()
	for _, r := range results {
		if r.Error.Code() != kafka.ErrNoError && r.Error.Code() != kafka.ErrTopicAlreadyExists {
			l.Warn().Str("topic", r.Topic).Str("error", r.Error.String()).Msg("failed to create kafka topic")
		}
	}

	return nil
}

// deliveryReportHandler processes delivery reports from the producer.
func (k *KafkaPubSub) deliveryReportHandler() {
	l := log.L()
	for e := range k.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				l.Error().Err(ev.TopicPartition.Error).
					Str("topic", *ev.TopicPartition.Topic).
					Str("key", string(ev.Key)).
					Msg("kafka pubsub delivery failed")
			}
		}
	}
	close(k.doneCh)
}

// Publish publishes an event to the specified channel (converted to Kafka topic + key).
func (k *KafkaPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	topic, key, err := channelToTopicAndKey(channel)
	if err != nil {
		return fmt.Errorf("failed to parse channel: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(event.Type)},
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	return nil
}

// Subscribe subscribes to one entity's channel, filtering the shared topic by key.
func (k *KafkaPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	topic, key, err := channelToTopicAndKey(channel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse channel: %w", err)
	}

	return k.subscribeToTopic(ctx, channel, topic, key)
}

// SubscribePattern consumes every message on the entity's topic.
func (k *KafkaPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error) {
	topic, err := patternToTopic(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pattern: %w", err)
	}

	return k.subscribeToTopic(ctx, pattern, topic, "")
}

// subscribeToTopic creates a consumer for a topic, optionally filtering by key.
func (k *KafkaPubSub) subscribeToTopic(ctx context.Context, subKey, topic, filterKey string) (<-chan *Event, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if existing, ok := k.subscriptions[subKey]; ok {
		existing.cancel()
		existing.consumer.Close()
		delete(k.subscriptions, subKey)
	}

	c, err := k.newConsumer(subKey)
	if err != nil {
		return nil, err
	}
	if err := c.Subscribe(topic, nil); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	eventCh := make(chan *Event, 100)
	k.subscriptions[subKey] = &kafkaSubscription{consumer: c, cancel: cancel}

	go k.consumeMessages(subCtx, c, eventCh, filterKey)

	return eventCh, nil
}

// newConsumer builds a consumer in a group of its own, so each
// subscription sees the full stream the way a Redis subscriber does.
func (k *KafkaPubSub) newConsumer(subKey string) (*kafka.Consumer, error) {
	groupID := k.config.GroupID
	if groupID == "" {
		groupID = "pubsub-default"
	}
	offsetReset := k.config.OffsetReset
	if offsetReset == "" {
		offsetReset = "latest"
	}

	cm := &kafka.ConfigMap{
		"bootstrap.servers":       k.config.Brokers,
		"group.id":                groupID + "-" + sanitizeGroupID(subKey),
		"auto.offset.reset":       offsetReset,
		"enable.auto.commit":      true,
		"auto.commit.interval.ms": 5000,
	}
	if k.config.ClientID != "" {
		if err := cm.SetKey("client.id", k.config.ClientID); err != nil {
			return nil, err
		}
	}

	c, err := kafka.NewConsumer(cm)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	return c, nil
}

// consumeMessages reads the topic and forwards decoded events until ctx is
// done or the consumer hits a fatal error.
func (k *KafkaPubSub) consumeMessages(ctx context.Context, c *kafka.Consumer, eventCh chan<- *Event, filterKey string) {
	defer close(eventCh)
	l := log.Ctx(ctx)

	for ctx.Err() == nil {
		msg, err := c.ReadMessage(500 * time.Millisecond)
		if err != nil {
			var kerr kafka.Error
			if !errors.As(err, &kerr) {
				l.Error().Err(err).Msg("kafka pubsub read failed")
				continue
			}
			if kerr.Code() == kafka.ErrTimedOut {
				continue
			}
			l.Error().Err(kerr).Int("code", int(kerr.Code())).Bool("fatal", kerr.IsFatal()).Msg("kafka pubsub error")
			if kerr.IsFatal() {
				return
			}
			continue
		}

		if filterKey != "" && string(msg.Key) != filterKey {
			continue
		}

		event, err := decodeMessage(msg)
		if err != nil {
			l.Warn().Err(err).Str("key", string(msg.Key)).Msg("kafka pubsub: failed to decode event")
			continue
		}

		select {
		case eventCh <- event:
		case <-ctx.Done():
			return
		default:
			l.Warn().Str("event_type", event.Type).Msg("kafka pubsub: subscriber full, event dropped")
		}
	}
}

// decodeMessage unmarshals msg. The event_type header, the message key and
// the broker timestamp fill in whatever the body left out.
func decodeMessage(msg *kafka.Message) (*Event, error) {
	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return nil, err
	}
	if event.Type == "" {
		for _, h := range msg.Headers {
			if h.Key == headerEventType {
				event.Type = string(h.Value)
			}
		}
	}
	if event.Subject == "" {
		event.Subject = string(msg.Key)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = msg.Timestamp.UTC()
	}
	return &event, nil
}

// Unsubscribe unsubscribes from a channel or pattern.
func (k *KafkaPubSub) Unsubscribe(ctx context.Context, channel string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if sub, ok := k.subscriptions[channel]; ok {
		sub.cancel()
		if err := sub.consumer.Close(); err != nil {
			return fmt.Errorf("failed to close consumer: %w", err)
		}
		delete(k.subscriptions, channel)
	}

	return nil
}

// Close closes all subscriptions and the producer.
func (k *KafkaPubSub) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	for key, sub := range k.subscriptions {
		sub.cancel()
		sub.consumer.Close()
		delete(k.subscriptions, key)
	}

	k.producer.Flush(5000)
	k.producer.Close()
	<-k.doneCh

	return nil
}

var groupIDRegexp = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeGroupID replaces characters not suitable for Kafka group IDs.
func sanitizeGroupID(s string) string {
	return groupIDRegexp.ReplaceAllString(s, "-")
}
