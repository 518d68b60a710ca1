package testutil

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

// DefaultKafkaAddr is used when SEALEDBID_KAFKA_ADDR is unset
const DefaultKafkaAddr = "localhost:9092"

// KafkaAddr returns the broker address integration tests should use
func KafkaAddr() string {
	if addr := os.Getenv("SEALEDBID_KAFKA_ADDR"); addr != "" {
		return addr
	}
	return DefaultKafkaAddr
}

// SkipIfKafkaUnavailable skips the test if Kafka is unavailable on the specified address
func SkipIfKafkaUnavailable(t *testing.T, kafkaAddr string) {
	t.Helper()

	conn, err := net.DialTimeout("tcp", kafkaAddr, 2*time.Second)
	if err != nil {
		t.Skipf("Skipping test: Kafka not available at %s - %v", kafkaAddr, err)
		return
	}
	_ = conn.Close()

	// An open port is not enough; ask the broker for its partitions
	kconn, err := kafka.Dial("tcp", kafkaAddr)
	if err != nil {
		t.Skipf("Skipping test: Kafka at %s is not responding - %v", kafkaAddr, err)
		return
	}
	defer kconn.Close()

	_ = kconn.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := kconn.Brokers(); err != nil && !errors.Is(err, io.EOF) {
		t.Skipf("Skipping test: Kafka at %s is not responding correctly - %v", kafkaAddr, err)
	}
}

// CreateTopic creates topic on the controller broker, tolerating an existing topic
func CreateTopic(ctx context.Context, kafkaAddr, topic string) error {
	conn, err := kafka.DialContext(ctx, "tcp", kafkaAddr)
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}

	ctrl, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer ctrl.Close()

	err = ctrl.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if errors.Is(err, kafka.TopicAlreadyExists) {
		return nil
	}
	return err
}
