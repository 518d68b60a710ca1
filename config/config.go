package config

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kafka transport modes
const (
	KafkaModeWriter   = "kafka-go"
	KafkaModeProducer = "sarama"
)

// Config represents the simulator binary configuration
type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Kafka struct {
		Enabled       bool   `yaml:"enabled"`
		Mode          string `yaml:"mode"`
		BrokerAddr    string `yaml:"broker_addr"`
		Topic         string `yaml:"topic"`
		ConsumerGroup string `yaml:"consumer_group"`
		// Tail consumes the published round results and logs them
		Tail bool `yaml:"tail"`
	} `yaml:"kafka"`

	Telemetry struct {
		Enabled        bool   `yaml:"enabled"`
		Endpoint       string `yaml:"endpoint"`
		ServiceVersion string `yaml:"service_version"`
	} `yaml:"telemetry"`

	// Source is the config file the values were read from, if any
	Source string `yaml:"-"`
}

// LoadConfig parses args into a Config. Values from a -config YAML file
// override flag values.
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("auctionsim", flag.ContinueOnError)

	configFile := fs.String("config", "", "Path to config file (YAML)")
	logLevel := fs.String("log_level", "info", "Log level: debug, info, warn, error")
	logFormat := fs.String("log_format", "pretty", "Log format: json, pretty")
	kafkaEnabled := fs.Bool("kafka", false, "Publish round results to Kafka")
	kafkaMode := fs.String("kafka_mode", KafkaModeWriter, "Kafka client: kafka-go, sarama")
	broker := fs.String("kafka_broker", "localhost:9092", "Kafka broker address")
	topic := fs.String("kafka_topic", "auction-rounds", "Kafka topic for round results")
	tail := fs.Bool("kafka_tail", false, "Consume and log published round results")
	otelEnabled := fs.Bool("otel", false, "Export traces and metrics to an OTLP collector")
	otelEndpoint := fs.String("otel_endpoint", "localhost:4317", "OTLP gRPC collector endpoint")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	config := &Config{}
	config.Log.Level = *logLevel
	config.Log.Format = *logFormat
	config.Kafka.Enabled = *kafkaEnabled
	config.Kafka.Mode = *kafkaMode
	config.Kafka.BrokerAddr = *broker
	config.Kafka.Topic = *topic
	config.Kafka.ConsumerGroup = "auctionsim-tail"
	config.Kafka.Tail = *tail
	config.Telemetry.Enabled = *otelEnabled
	config.Telemetry.Endpoint = *otelEndpoint
	config.Telemetry.ServiceVersion = "dev"

	if *configFile != "" {
		yamlFile, err := os.ReadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(yamlFile, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		config.Source = *configFile
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.Log.Format {
	case "json", "pretty":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	if !c.Kafka.Enabled {
		return nil
	}
	switch c.Kafka.Mode {
	case KafkaModeWriter, KafkaModeProducer:
	default:
		return fmt.Errorf("unknown kafka mode %q", c.Kafka.Mode)
	}
	if c.Kafka.BrokerAddr == "" || c.Kafka.Topic == "" {
		return fmt.Errorf("kafka broker and topic are required when kafka is enabled")
	}
	return nil
}
