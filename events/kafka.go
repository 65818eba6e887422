package events

import (
	"context"
	"strings"
	"time"

	"github.com/junaidrashid-git/storefront-api/logging"
	"github.com/segmentio/kafka-go"
)

// Message is one record handed to a Publisher.
type Message struct {
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
}

type Publisher interface {
	Publish(ctx context.Context, msgs ...Message) error
	Close() error
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(brokersCSV string) []string {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// KafkaPublisher routes each message to its own topic, or to the default
// topic when the message has none.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaPublisher(brokers []string, defaultTopic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		topic: defaultTopic,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msgs ...Message) error {
	out := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		topic := m.Topic
		if topic == "" {
			topic = p.topic
		}
		km := kafka.Message{Topic: topic, Key: []byte(m.Key), Value: m.Value, Time: time.Now().UTC()}
		for k, v := range m.Headers {
			km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
		}
		out = append(out, km)
	}
	return p.writer.WriteMessages(ctx, out...)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher stands in when no brokers are configured: events are logged
// and marked sent.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, msgs ...Message) error {
	for _, m := range msgs {
		logging.Log(logging.Fields{
			Step:    "outbox_publish",
			Status:  "logged",
			EventID: m.Headers["event_id"],
			Message: string(m.Value),
		})
	}
	return nil
}

func (LogPublisher) Close() error { return nil }
