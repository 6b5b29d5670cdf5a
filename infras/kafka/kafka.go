package kafka

//go:generate go run go.uber.org/mock/mockgen -source=./kafka.go -destination=./mocks/kafka_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"libres/config"
	"libres/shared/constant"
)

var errEmptyTopic = errors.New("topic is required")

// Message is a JSON event. EventType travels as a header so consumers can route without
// decoding the payload.
type Message struct {
	Key       string
	EventType string
	Value     any
}

func (m Message) Encode(topic string) (kafkaGo.Message, error) {
	payload, err := json.Marshal(m.Value)
	if err != nil {
		return kafkaGo.Message{}, fmt.Errorf("failed to encode %q event: %w", m.EventType, err)
	}

	out := kafkaGo.Message{Topic: topic, Key: []byte(m.Key), Value: payload}
	if m.EventType != "" {
		out.Headers = []kafkaGo.Header{{Key: constant.RequestHeaderEventType, Value: []byte(m.EventType)}}
	}

	return out, nil
}

// Decode is the inverse of Message.Encode with the payload read into T.
func Decode[T any](raw kafkaGo.Message) (Message, error) {
	var value T
	if err := json.Unmarshal(raw.Value, &value); err != nil {
		return Message{}, fmt.Errorf("failed to decode message %q: %w", raw.Key, err)
	}

	msg := Message{Key: string(raw.Key), Value: value}

	for _, header := range raw.Headers {
		if header.Key == constant.RequestHeaderEventType {
			msg.EventType = string(header.Value)
		}
	}

	return msg, nil
}

// Handler processes one fetched message. Its error is logged and the offset committed anyway.
type Handler func(ctx context.Context, msg kafkaGo.Message) error

type Client interface {
	SendMessages(ctx context.Context, topic string, messages ...Message) error
	Consume(ctx context.Context, topic string, handle Handler) error
	Close() error
}

type client struct {
	cfg    config.Kafka
	dialer *kafkaGo.Dialer
	writer *kafkaGo.Writer
}

func New(cfg *config.Config) Client {
	dialer := &kafkaGo.Dialer{DualStack: true}
	transport := &kafkaGo.Transport{}

	// Local brokers usually run without auth.
	if cfg.Kafka.SASL.Username != "" {
		mechanism := plain.Mechanism{Username: cfg.Kafka.SASL.Username, Password: cfg.Kafka.SASL.Password}
		dialer.SASLMechanism = mechanism
		transport.SASL = mechanism
	}

	log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("Kafka client initialized")

	return &client{
		cfg:    cfg.Kafka,
		dialer: dialer,
		writer: &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(cfg.Kafka.Brokers...),
			Transport:              transport,
			Balancer:               &kafkaGo.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

// SendMessages writes messages to topic. Messages sharing a key land on the same partition,
// so events of one reservation keep their order.
func (c *client) SendMessages(ctx context.Context, topic string, messages ...Message) error {
	batch := make([]kafkaGo.Message, len(messages))

	for idx, message := range messages {
		encoded, err := message.Encode(topic)
		if err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("Failed to encode Kafka message.")

			return err
		}

		batch[idx] = encoded
	}

	if err := c.writer.WriteMessages(ctx, batch...); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to send message to Kafka.")

		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	log.Debug().Str("topic", topic).Int("count", len(batch)).Msg("Sent message successfully.")

	return nil
}

// Consume reads topic as the configured consumer group until ctx is done. Offsets are
// committed after handle returns, so a crash mid message means redelivery.
func (c *client) Consume(ctx context.Context, topic string, handle Handler) error {
	if topic == "" {
		return errEmptyTopic
	}

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:     c.cfg.Brokers,
		Topic:       topic,
		GroupID:     c.cfg.ConsumerGroup,
		Dialer:      c.dialer,
		StartOffset: kafkaGo.FirstOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Kafka reader.")
		}
	}()

	for {
		msg, err := reader.FetchMessage(ctx)

		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			log.Error().Err(err).Str("topic", topic).Msg("Failed to read message from Kafka.")

			continue
		}

		if err = handle(ctx, msg); err != nil {
			log.Error().Err(err).Str("topic", topic).Str("key", string(msg.Key)).Int64("offset", msg.Offset).
				Msg("Failed to handle Kafka message.")
		}

		if err = reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Str("topic", topic).Int64("offset", msg.Offset).Msg("Failed to commit Kafka offset.")
		}
	}
}

func (c *client) Close() error {
	if err := c.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka writer: %w", err)
	}

	return nil
}
