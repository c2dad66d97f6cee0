package orderbook

type Side uint8

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Ask {
		return "ask"
	}
	return "bid"
}

// Opposite returns the side an incoming order matches against.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// Order is a resting limit order. ID, Side, User and Price are immutable
// after creation; only Qty decreases as fills execute. When Qty reaches
// zero the order leaves both the ledger and the index.
type Order struct {
	ID    uint64
	Side  Side
	User  string
	Price int64
	Qty   int64
	Time  int64

	next  *Order
	prev  *Order
	level *PriceLevel
}

// Next returns the order behind this one in its price level's FIFO queue.
func (o *Order) Next() *Order { return o.next }
