package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"restaurant-reviews/internal/model"

	"github.com/segmentio/kafka-go"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// PublishReview keys messages by restaurant so one restaurant's reviews stay ordered.
func (p *KafkaPublisher) PublishReview(ctx context.Context, msg model.ReviewMessage) error {
	message, err := toKafkaMessage(msg)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("publish review: %w, id: %s", err, msg.ReviewId)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toKafkaMessage(msg model.ReviewMessage) (kafka.Message, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode review message: %w, id: %s", err, msg.ReviewId)
	}

	return kafka.Message{
		Key:   []byte(msg.Restaurant),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(msg.Type)},
		},
	}, nil
}
