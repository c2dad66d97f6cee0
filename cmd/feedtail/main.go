// Command feedtail follows the Kafka event feed and prints each event,
// one JSON object per line. Handy for watching a running engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/segmentio/kafka-go"

	"github.com/Ch3ngL0rd/orderbooks/events"
)

func main() {
	brokers := flag.String("brokers", "localhost:9092", "comma-separated Kafka brokers")
	topic := flag.String("topic", "orderbook.events", "feed topic")
	group := flag.String("group", "", "consumer group id; empty tails from the start")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := kafka.ReaderConfig{
		Brokers: strings.Split(*brokers, ","),
		Topic:   *topic,
	}
	if *group != "" {
		cfg.GroupID = *group
	} else {
		cfg.Partition = 0
		cfg.StartOffset = kafka.FirstOffset
	}

	r := kafka.NewReader(cfg)
	defer r.Close()

	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			fmt.Fprintf(os.Stderr, "read: %v\n", err)
			os.Exit(1)
		}

		ev, err := events.Decode(msg.Value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "decode offset %d: %v\n", msg.Offset, err)
			continue
		}

		switch {
		case ev.Trade != nil:
			fmt.Printf("%d %s id=%d price=%d qty=%d taker=%s %s/%s\n",
				ev.Seq, ev.Type, ev.Trade.ID, ev.Trade.Price, ev.Trade.Qty,
				ev.Trade.Taker, ev.Trade.Buyer, ev.Trade.Seller)
		case ev.Order != nil:
			fmt.Printf("%d %s id=%d side=%s price=%d qty=%d user=%s\n",
				ev.Seq, ev.Type, ev.Order.ID, ev.Order.Side,
				ev.Order.Price, ev.Order.Qty, ev.Order.User)
		default:
			fmt.Printf("%d %s\n", ev.Seq, ev.Type)
		}
	}
}
