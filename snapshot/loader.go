package snapshot

import (
	"encoding/gob"
	"os"

	"github.com/Ch3ngL0rd/orderbooks/domain/orderbook"
	"github.com/Ch3ngL0rd/orderbooks/domain/trade"
)

// Load restores book and journal state from the snapshot at path and
// returns its sequence. A missing snapshot is not an error; replay then
// starts from sequence zero.
func Load(path string, book *orderbook.OrderBook, journal *trade.Journal) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, err
	}

	for _, e := range s.Orders {
		o := orderbook.Order{
			ID:    e.ID,
			Side:  orderbook.Side(e.Side),
			User:  e.User,
			Price: e.Price,
			Qty:   e.Qty,
			Time:  e.Time,
		}
		if err := book.Restore(o); err != nil {
			return 0, err
		}
	}
	journal.Restore(s.Trades)

	return s.Seq, nil
}
