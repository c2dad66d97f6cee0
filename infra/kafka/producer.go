// Package kafka holds the direct market-data producer. It pushes feed
// events to the topic fire-and-forget; guaranteed delivery goes through
// the outbox and jobs/broadcaster instead.
package kafka

import (
	"context"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Ch3ngL0rd/orderbooks/events"
)

type Producer struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewProducer(brokers []string, topic string, log *zap.Logger) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireOne,
			Async:        true,
			BatchTimeout: 10 * time.Millisecond,
		},
		log: log,
	}
}

func (p *Producer) Send(ctx context.Context, key, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}

// Publish implements events.Publisher. Errors are logged, not returned;
// the engine never blocks on the feed.
func (p *Producer) Publish(e events.Event) {
	value, err := e.Encode()
	if err != nil {
		p.log.Error("encode event", zap.Uint64("seq", e.Seq), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	key := []byte(strconv.FormatUint(e.Seq, 10))
	if err := p.Send(ctx, key, value); err != nil {
		p.log.Warn("publish event", zap.Uint64("seq", e.Seq), zap.Error(err))
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
