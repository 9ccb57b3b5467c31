package kafka

import (
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/rs/zerolog"

	"github.com/emoncse/bugtracker/internal/domain"
	"github.com/emoncse/bugtracker/pkg/log"
)

type confluentProducer struct {
	producer *kafka.Producer
	topic    string
	logger   zerolog.Logger
}

// NewActivityProducer creates a Kafka-backed activity exporter. Records
// are keyed by project id so one project's activities stay ordered
// within a partition.
func NewActivityProducer(brokers, topic string) (ActivityProducer, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "1",
	})
	if err != nil {
		return nil, err
	}

	p := &confluentProducer{
		producer: producer,
		topic:    topic,
		logger:   log.L().With().Str("component", "kafka").Logger(),
	}
	go p.drainEvents()
	return p, nil
}

func (p *confluentProducer) drainEvents() {
	for e := range p.producer.Events() {
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			p.logger.Error().
				Err(m.TopicPartition.Error).
				Msg("activity delivery failed")
		}
	}
}

func (p *confluentProducer) Produce(activity *domain.Activity) error {
	data, err := json.Marshal(activity)
	if err != nil {
		return err
	}

	return p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &p.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(activity.ProjectID),
		Value: data,
	}, nil)
}

func (p *confluentProducer) Close() {
	p.producer.Flush(5000)
	p.producer.Close()
}
