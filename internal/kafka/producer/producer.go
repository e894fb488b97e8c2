package producer

import (
	"context"
	"github.com/segmentio/kafka-go"
	"imageModeration/internal/config"
	"imageModeration/internal/lib/logger/sl"
	"log/slog"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ProducerIface
type ProducerIface interface {
	SendMessage(ctx context.Context, key, message []byte) error
	Close() error
}

type Producer struct {
	writer *kafka.Writer
	log    *slog.Logger
}

func NewProducer(kafkaCfg *config.Kafka, log *slog.Logger) (*Producer, error) {
	writer := &kafka.Writer{
		Addr:  kafka.TCP(kafkaCfg.Brokers...),
		Topic: kafkaCfg.Topic,
		// events of one owner land on one partition and stay ordered
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		log:    log,
	}, nil
}

func (p *Producer) SendMessage(ctx context.Context, key, message []byte) error {
	msg := kafka.Message{
		Key:   key,
		Value: message,
	}

	err := p.writer.WriteMessages(ctx, msg)
	if err != nil {
		p.log.Error("failed to send message to kafka", slog.String("topic", p.writer.Topic), sl.Err(err))
		return err
	}

	p.log.Debug("message sent to kafka", slog.String("topic", p.writer.Topic))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Discard stands in for Producer when kafka is disabled.
type Discard struct{}

func (Discard) SendMessage(context.Context, []byte, []byte) error { return nil }

func (Discard) Close() error { return nil }
