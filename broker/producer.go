// Package broker fans received gateway events out to Kafka so that
// worker processes can consume them off the hot path of the session.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/twmb/murmur3"
	"go.uber.org/zap"

	"github.com/accordkit/accord/config"
	"github.com/accordkit/accord/gateway"
	logger "github.com/accordkit/accord/middleware/log"
	"github.com/accordkit/accord/model"
)

// Event is the envelope published per dispatch event.
type Event struct {
	Type      string          `json:"type"`
	GuildID   model.Snowflake `json:"guild_id,omitempty"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// Producer publishes events to a single topic, keyed by guild ID so
// all events of one guild land on the same partition in order.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *logger.Logger
}

// NewProducer connects to the Kafka brokers from the configuration.
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Partitioner = sarama.NewCustomHashPartitioner(murmur3.New32)
	saramaConfig.Net.DialTimeout = 10 * time.Second
	saramaConfig.Net.ReadTimeout = 10 * time.Second
	saramaConfig.Net.WriteTimeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &Producer{
		producer: producer,
		topic:    cfg.Topic,
		logger:   log,
	}, nil
}

// newProducerFromSync wires an existing SyncProducer; used by tests.
func newProducerFromSync(p sarama.SyncProducer, topic string, log *logger.Logger) *Producer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Producer{producer: p, topic: topic, logger: log}
}

// Publish sends one event. Direct-message events have no guild ID and
// are keyed by event type instead.
func (p *Producer) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	key := event.GuildID.String()
	if event.GuildID.IsZero() {
		key = event.Type
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.DebugContext(ctx, "event published",
		zap.String("event", event.Type),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// Handler adapts the producer into a gateway dispatch handler. Publish
// failures are logged and dropped; the session must not stall on Kafka.
func (p *Producer) Handler() gateway.Handler {
	return func(ctx context.Context, event string, data json.RawMessage) {
		var scope struct {
			GuildID model.Snowflake `json:"guild_id"`
		}
		_ = json.Unmarshal(data, &scope)

		err := p.Publish(ctx, Event{
			Type:      event,
			GuildID:   scope.GuildID,
			Data:      data,
			Timestamp: time.Now().UnixMilli(),
		})
		if err != nil {
			p.logger.WarnContext(ctx, "failed to publish gateway event",
				zap.String("event", event), zap.Error(err))
		}
	}
}

// Close shuts the underlying producer down.
func (p *Producer) Close() error {
	return p.producer.Close()
}
