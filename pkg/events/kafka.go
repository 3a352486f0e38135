package events

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	DefaultBroker = "localhost:19092"
	DefaultTopic  = "postwoman.workspace-events"
)

// KafkaConfig configures the Kafka/Redpanda publisher.
type KafkaConfig struct {
	Brokers []string `hcl:"brokers,optional"`
	Topic   string   `hcl:"topic,optional"`
}

// GetBrokers returns the broker addresses. It checks the environment first,
// then the config, then the default.
func GetBrokers(cfg *KafkaConfig) []string {
	if brokers := os.Getenv("POSTWOMAN_KAFKA_BROKERS"); brokers != "" {
		return strings.Split(brokers, ",")
	}
	if cfg != nil && len(cfg.Brokers) > 0 {
		return cfg.Brokers
	}
	return []string{DefaultBroker}
}

// GetTopic returns the event topic. It checks the environment first, then
// the config, then the default.
func GetTopic(cfg *KafkaConfig) string {
	if topic := os.Getenv("POSTWOMAN_KAFKA_TOPIC"); topic != "" {
		return topic
	}
	if cfg != nil && cfg.Topic != "" {
		return cfg.Topic
	}
	return DefaultTopic
}

// producer is the subset of *kgo.Client the publisher uses.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaPublisher publishes events as JSON records.
type KafkaPublisher struct {
	client producer
	topic  string
	logger hclog.Logger
}

// NewKafkaPublisher connects to the configured brokers.
func NewKafkaPublisher(cfg *KafkaConfig, logger hclog.Logger) (*KafkaPublisher, error) {
	brokers := GetBrokers(cfg)
	topic := GetTopic(cfg)

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),

		// Wait for all in-sync replicas.
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.GzipCompression()),

		kgo.RetryBackoffFn(func(tries int) time.Duration {
			backoff := time.Duration(tries) * 100 * time.Millisecond
			if backoff > 60*time.Second {
				backoff = 60 * time.Second
			}
			return backoff
		}),
		kgo.RequestRetries(10),

		kgo.ProducerLinger(10*time.Millisecond),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return newKafkaPublisher(client, topic, logger), nil
}

func newKafkaPublisher(client producer, topic string, logger hclog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &KafkaPublisher{
		client: client,
		topic:  topic,
		logger: logger.Named("events").With("topic", topic),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(e.Key()),
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Trace("event published", "type", e.Type, "id", e.ID)
	return nil
}

func (p *KafkaPublisher) Close() error {
	p.client.Close()
	return nil
}
