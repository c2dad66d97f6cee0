// Package broadcaster drains the durable outbox into Kafka. Delivery is
// at-least-once: an event is marked SENT before the produce call and
// ACKED only after the broker confirms it, so a crash in between replays
// the event on the next pass.
package broadcaster

import (
	"context"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Ch3ngL0rd/orderbooks/infra/outbox"
)

type Broadcaster struct {
	outbox   *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
	log      *zap.Logger
}

func New(
	ob *outbox.Outbox,
	brokers []string,
	topic string,
	interval time.Duration,
	log *zap.Logger,
) (*Broadcaster, error) {

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Broadcaster{
		outbox:   ob,
		producer: producer,
		topic:    topic,
		interval: interval,
		log:      log,
	}, nil
}

// Run drains pending events on a ticker until ctx is cancelled. Call it
// from its own goroutine.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info("broadcaster started",
		zap.String("topic", b.topic),
		zap.Duration("interval", b.interval),
	)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.drainOnce()
		}
	}
}

func (b *Broadcaster) drainOnce() {
	var sent int
	err := b.outbox.ScanPending(func(seq uint64, rec outbox.Record) error {
		if err := b.outbox.MarkSent(seq); err != nil {
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(strconv.FormatUint(seq, 10)),
			Value: sarama.ByteEncoder(rec.Payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			// Stays SENT; the next pass retries it.
			b.log.Warn("produce failed",
				zap.Uint64("feed_seq", seq),
				zap.Uint32("retries", rec.Retries),
				zap.Error(err),
			)
			return nil
		}

		sent++
		return b.outbox.MarkAcked(seq)
	})
	if err != nil {
		b.log.Error("outbox drain", zap.Error(err))
		return
	}

	if sent > 0 {
		if purged, err := b.outbox.PurgeAcked(); err != nil {
			b.log.Error("outbox purge", zap.Error(err))
		} else {
			b.log.Debug("outbox drained", zap.Int("sent", sent), zap.Int("purged", purged))
		}
	}
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
