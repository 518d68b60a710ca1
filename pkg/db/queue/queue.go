package queue

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/erain9/sealedbid/pkg/messaging"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const maxRetry = 5

// newSyncProducer is swapped in tests
var newSyncProducer = sarama.NewSyncProducer

// QueueMessageSender implements the MessageSender interface
// for sending round messages to Kafka through a sarama sync producer
type QueueMessageSender struct {
	producer sarama.SyncProducer
	topic    string
}

// NewQueueMessageSender creates a sender connected to the given brokers
func NewQueueMessageSender(brokers []string, topic string) (*QueueMessageSender, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = maxRetry
	config.Producer.Return.Successes = true

	producer, err := newSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &QueueMessageSender{
		producer: producer,
		topic:    topic,
	}, nil
}

// SendRoundMessage encodes the message as protobuf and sends it to Kafka
func (q *QueueMessageSender) SendRoundMessage(_ context.Context, msg *messaging.RoundMessage) error {
	messageBytes, err := EncodeRoundMessage(msg)
	if err != nil {
		return err
	}

	_, _, err = q.producer.SendMessage(&sarama.ProducerMessage{
		Topic: q.topic,
		Key:   sarama.StringEncoder(msg.RoundID),
		Value: sarama.ByteEncoder(messageBytes),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close closes the underlying producer
func (q *QueueMessageSender) Close() error {
	return q.producer.Close()
}

// EncodeRoundMessage serializes a round message as a protobuf Struct
func EncodeRoundMessage(msg *messaging.RoundMessage) ([]byte, error) {
	bids := make([]interface{}, 0, len(msg.Bids))
	for _, bid := range msg.Bids {
		bids = append(bids, map[string]interface{}{
			"bidder": bid.Bidder,
			"amount": bid.Amount,
		})
	}

	protoMsg, err := structpb.NewStruct(map[string]interface{}{
		"roundID":   msg.RoundID,
		"round":     msg.Round,
		"mechanism": msg.Mechanism,
		"winner":    msg.Winner,
		"payment":   msg.Payment,
		"fellBack":  msg.FellBack,
		"bids":      bids,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build round message: %w", err)
	}

	data, err := proto.Marshal(protoMsg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal round message: %w", err)
	}
	return data, nil
}

// DecodeRoundMessage parses a payload produced by EncodeRoundMessage
func DecodeRoundMessage(data []byte) (*messaging.RoundMessage, error) {
	var protoMsg structpb.Struct
	if err := proto.Unmarshal(data, &protoMsg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal round message: %w", err)
	}

	fields := protoMsg.GetFields()
	msg := &messaging.RoundMessage{
		RoundID:   fields["roundID"].GetStringValue(),
		Round:     int(fields["round"].GetNumberValue()),
		Mechanism: fields["mechanism"].GetStringValue(),
		Winner:    fields["winner"].GetStringValue(),
		Payment:   fields["payment"].GetStringValue(),
		FellBack:  fields["fellBack"].GetBoolValue(),
	}

	for _, v := range fields["bids"].GetListValue().GetValues() {
		bid := v.GetStructValue().GetFields()
		msg.Bids = append(msg.Bids, messaging.BidEntry{
			Bidder: bid["bidder"].GetStringValue(),
			Amount: bid["amount"].GetStringValue(),
		})
	}

	return msg, nil
}

var _ messaging.MessageSender = (*QueueMessageSender)(nil)
