package kds

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/yeremiapane/qr-restaurant/utils"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher forwards events to a topic keyed by restaurant id, so a
// restaurant's events stay ordered within one partition.
type KafkaPublisher struct {
	Writer messageWriter
}

// NewKafkaWriter returns an async writer: request handlers never wait on the
// broker, and delivery failures are only logged.
func NewKafkaWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		BatchTimeout:           50 * time.Millisecond,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				utils.ErrorLogger.Printf("Error delivering %d event(s) to kafka: %v", len(messages), err)
			}
		},
	}
}

func NewKafkaPublisher(writer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling event %s: %v", event.Type, err)
		return
	}

	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.RestaurantID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		utils.ErrorLogger.Printf("Error publishing event %s to kafka: %v", event.Type, err)
	}
}
