package broker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Kafka struct {
	writer *kafka.Writer
}

func NewKafka(brokers []string, topic string) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	// Проверяем подключение и создаем топик
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return nil, fmt.Errorf("kafka connection failed: %w", err)
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		logrus.WithError(err).WithField("topic", topic).Debug("Could not create topic (might already exist)")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logrus.WithFields(logrus.Fields{"brokers": strings.Join(brokers, ","), "topic": topic}).Info("Connected to Kafka")
	return &Kafka{writer: writer}, nil
}

func newKafkaMessage(n *entity.Notification) (kafka.Message, error) {
	body, err := encode(n)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   partitionKey(n),
		Value: body,
		Time:  n.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(routingKey(n))},
		},
	}, nil
}

func (k *Kafka) Publish(ctx context.Context, n *entity.Notification) error {
	msg, err := newKafkaMessage(n)
	if err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
