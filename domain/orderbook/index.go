package orderbook

// PriceTimeIndex keeps both book sides ordered by (price, submission time).
// Bids are served highest price first, asks lowest price first; FIFO within
// a level resolves ties by time. It holds links to ledger-owned orders and
// never owns them.
type PriceTimeIndex struct {
	bids *RBTree
	asks *RBTree
}

func NewPriceTimeIndex() *PriceTimeIndex {
	return &PriceTimeIndex{bids: NewRBTree(), asks: NewRBTree()}
}

func (ix *PriceTimeIndex) tree(side Side) *RBTree {
	if side == Bid {
		return ix.bids
	}
	return ix.asks
}

// Best returns the highest-priority resting order on a side, or nil when
// the side is empty.
func (ix *PriceTimeIndex) Best(side Side) *Order {
	var lvl *PriceLevel
	if side == Bid {
		lvl = ix.bids.MaxLevel()
	} else {
		lvl = ix.asks.MinLevel()
	}
	if lvl == nil {
		return nil
	}
	return lvl.head
}

func (ix *PriceTimeIndex) Insert(o *Order) {
	ix.tree(o.Side).UpsertLevel(o.Price).Enqueue(o)
}

// Remove unlinks an order from its level and drops the level once empty.
func (ix *PriceTimeIndex) Remove(o *Order) {
	lvl := o.level
	if lvl == nil {
		return
	}
	lvl.unlink(o)
	if lvl.head == nil {
		ix.tree(o.Side).DeleteLevel(lvl.Price)
	}
}

// Depth returns the number of populated price levels on a side.
func (ix *PriceTimeIndex) Depth(side Side) int {
	return ix.tree(side).Size()
}

// Walk visits a side's levels best-price-first.
func (ix *PriceTimeIndex) Walk(side Side, fn func(*PriceLevel) bool) {
	if side == Bid {
		ix.bids.ForEachDescending(fn)
	} else {
		ix.asks.ForEachAscending(fn)
	}
}
