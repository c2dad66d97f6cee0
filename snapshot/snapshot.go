// Package snapshot persists a point-in-time view of the book and trade
// journal so the command log can be truncated. A snapshot plus the WAL
// suffix above its sequence reconstructs identical state.
package snapshot

import (
	"time"

	"github.com/Ch3ngL0rd/orderbooks/domain/trade"
)

type Snapshot struct {
	Seq     uint64
	Created time.Time
	Orders  []OrderEntry
	Trades  []trade.Trade
}

type OrderEntry struct {
	ID    uint64
	Side  uint8
	User  string
	Price int64
	Qty   int64
	Time  int64
}
