package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"
)

// Topics, without the configured prefix.
const (
	TopicOrderCreated = "order.created"
	TopicMessageSent  = "message.sent"
)

// Publisher emits domain events after their transaction has committed.
// Delivery is best effort: callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	return nil
}

// KafkaPublisher publishes JSON events through a synchronous sarama producer.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	prefix   string
}

// NewKafkaPublisher connects to brokers; topics are "<prefix>.<topic>".
func NewKafkaPublisher(brokers []string, prefix string) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	log.Info().Strs("brokers", brokers).Msg("Kafka producer initialized")
	return NewKafkaPublisherWithProducer(producer, prefix), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer (tests use sarama/mocks).
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, prefix string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, prefix: prefix}
}

func (p *KafkaPublisher) topic(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic(topic),
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send %s event: %w", topic, err)
	}
	log.Debug().Str("topic", msg.Topic).Int32("partition", partition).Int64("offset", offset).Msg("Published event")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// OrderCreated is the payload of TopicOrderCreated.
type OrderCreated struct {
	OrderID       string `json:"order_id"`
	BuyerID       string `json:"buyer_id"`
	ListingID     string `json:"listing_id"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	Source        string `json:"source"`
}

// MessageSent is the payload of TopicMessageSent.
type MessageSent struct {
	MessageID  string `json:"message_id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	ListingID  string `json:"listing_id"`
}

// PublishQuietly publishes and logs instead of returning errors.
func PublishQuietly(ctx context.Context, p Publisher, topic, key string, payload interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, key, payload); err != nil {
		log.Warn().Err(err).Str("topic", topic).Str("key", key).Msg("event publish failed")
	}
}
