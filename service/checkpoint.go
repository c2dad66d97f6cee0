package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/Ch3ngL0rd/orderbooks/snapshot"
)

// Checkpoint writes a snapshot of the current book and journal, then drops
// WAL segments wholly below it. State is copied under the book lock; the
// slow part, encode plus fsync, runs after the lock is released.
func (s *OrderService) Checkpoint(w *snapshot.Writer) error {
	s.mu.Lock()
	seq := s.seq.Current()
	orders := s.book.Snapshot()
	trades := s.journal.All()
	s.mu.Unlock()

	snap := snapshot.Snapshot{
		Seq:     seq,
		Created: time.Now(),
		Orders:  make([]snapshot.OrderEntry, 0, len(orders)),
		Trades:  trades,
	}
	for _, o := range orders {
		snap.Orders = append(snap.Orders, snapshot.OrderEntry{
			ID:    o.ID,
			Side:  uint8(o.Side),
			User:  o.User,
			Price: o.Price,
			Qty:   o.Qty,
			Time:  o.Time,
		})
	}

	if err := w.Write(snap); err != nil {
		return err
	}
	if err := s.wal.TruncateBefore(seq); err != nil {
		s.log.Warn("wal truncate", zap.Uint64("seq", seq), zap.Error(err))
	}

	s.log.Info("checkpoint written",
		zap.Uint64("seq", seq),
		zap.Int("resting_orders", len(orders)),
		zap.Int("trades", len(trades)),
	)
	return nil
}
