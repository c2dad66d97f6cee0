package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Ch3ngL0rd/orderbooks/api"
	"github.com/Ch3ngL0rd/orderbooks/config"
	"github.com/Ch3ngL0rd/orderbooks/domain/orderbook"
	"github.com/Ch3ngL0rd/orderbooks/domain/trade"
	"github.com/Ch3ngL0rd/orderbooks/events"
	"github.com/Ch3ngL0rd/orderbooks/infra/kafka"
	"github.com/Ch3ngL0rd/orderbooks/infra/outbox"
	"github.com/Ch3ngL0rd/orderbooks/infra/sequence"
	"github.com/Ch3ngL0rd/orderbooks/infra/wal"
	"github.com/Ch3ngL0rd/orderbooks/jobs/broadcaster"
	"github.com/Ch3ngL0rd/orderbooks/service"
	"github.com/Ch3ngL0rd/orderbooks/snapshot"
	"github.com/Ch3ngL0rd/orderbooks/util"
)

const walSegmentSize = 2 << 20

func main() {
	log, err := util.NewLogger()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	cfg := config.Load(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Recovery: snapshot first, then replay the WAL suffix above it.
	book := orderbook.NewOrderBook()
	journal := trade.NewJournal()

	fromSeq, err := snapshot.Load(snapshot.PathIn(cfg.SnapshotDir), book, journal)
	if err != nil {
		log.Fatal("load snapshot", zap.Error(err))
	}

	seq := sequence.New(fromSeq)
	if err := service.ReplayFromWAL(cfg.WALDir, fromSeq, book, journal, seq, log); err != nil {
		log.Fatal("wal replay", zap.Error(err))
	}

	w, err := wal.Open(wal.Config{Dir: cfg.WALDir, SegmentSize: walSegmentSize, Sync: true})
	if err != nil {
		log.Fatal("open wal", zap.Error(err))
	}
	defer w.Close()

	// Feed: always the WebSocket hub; Kafka only when brokers are set.
	hub := api.NewHub(log)
	go hub.Run(ctx)

	var (
		pub events.Publisher = hub
		ob  *outbox.Outbox
	)
	if cfg.KafkaEnabled() {
		ob, err = outbox.Open(cfg.OutboxDir)
		if err != nil {
			log.Fatal("open outbox", zap.Error(err))
		}
		defer ob.Close()

		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer producer.Close()
		pub = events.Fanout{hub, producer}

		bc, err := broadcaster.New(ob, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.BroadcastEvery, log)
		if err != nil {
			log.Fatal("start broadcaster", zap.Error(err))
		}
		defer bc.Close()
		go bc.Run(ctx)
	}

	svc := service.NewOrderService(book, journal, seq, w, ob, pub, log)

	writer := &snapshot.Writer{Dir: cfg.SnapshotDir}
	go checkpointLoop(ctx, svc, writer, cfg.SnapshotEvery, log)

	srv := api.NewServer(svc, hub, log)
	go func() {
		if err := srv.Start(cfg.HTTPAddr); err != nil {
			log.Fatal("api server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	// Final checkpoint keeps the next start's replay short.
	if err := svc.Checkpoint(writer); err != nil {
		log.Error("final checkpoint", zap.Error(err))
	}
}

func checkpointLoop(
	ctx context.Context,
	svc *service.OrderService,
	w *snapshot.Writer,
	every time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.Checkpoint(w); err != nil {
				log.Error("checkpoint", zap.Error(err))
			}
		}
	}
}
