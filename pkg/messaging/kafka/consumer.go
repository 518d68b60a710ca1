package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/erain9/sealedbid/pkg/messaging"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// RoundConsumer reads round messages from Kafka
type RoundConsumer struct {
	reader messageReader
}

// NewRoundConsumer creates a consumer for the given broker and topic
func NewRoundConsumer(brokerAddr, topic, groupID string) *RoundConsumer {
	return &RoundConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: []string{brokerAddr},
			Topic:   topic,
			GroupID: groupID,
		}),
	}
}

// ConsumeRoundMessages calls handler for each message until ctx is done.
// Undecodable payloads are skipped.
func (c *RoundConsumer) ConsumeRoundMessages(ctx context.Context, handler func(*messaging.RoundMessage) error) error {
	logger := zerolog.Ctx(ctx)

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		var round messaging.RoundMessage
		if err := json.Unmarshal(msg.Value, &round); err != nil {
			logger.Warn().Err(err).Int64("offset", msg.Offset).Msg("Skipping undecodable round message")
			continue
		}

		if err := handler(&round); err != nil {
			return err
		}
	}
}

// Close closes the reader
func (c *RoundConsumer) Close() error {
	return c.reader.Close()
}

// DefaultTailGroup is the consumer group SetupConsumer joins when none is given
const DefaultTailGroup = "sealedbid-tail"

// SetupConsumer starts a consumer in groupID that logs every published round
func SetupConsumer(ctx context.Context, logger zerolog.Logger, brokerAddr, topic, groupID string) *RoundConsumer {
	if groupID == "" {
		groupID = DefaultTailGroup
	}
	consumer := NewRoundConsumer(brokerAddr, topic, groupID)

	go func() {
		logger.Info().Str("topic", topic).Str("group", groupID).Msg("Starting Kafka consumer")
		err := consumer.ConsumeRoundMessages(logger.WithContext(ctx), func(msg *messaging.RoundMessage) error {
			logger.Info().
				Str("round_id", msg.RoundID).
				Int("round", msg.Round).
				Str("mechanism", msg.Mechanism).
				Str("winner", msg.Winner).
				Str("payment", msg.Payment).
				Bool("fell_back", msg.FellBack).
				Int("bids", len(msg.Bids)).
				Msg("Received round message")
			return nil
		})
		if err != nil {
			logger.Error().Err(err).Msg("Kafka consumer error")
		}
	}()

	return consumer
}
