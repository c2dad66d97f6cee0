package orderbook

// Execution records one match between an incoming (taker) order and a
// resting (maker) order. The price is always the maker's price: the
// instigator takes the resting order's price, never its own.
type Execution struct {
	Taker     Side
	TakerID   uint64
	TakerUser string
	MakerID   uint64
	MakerUser string
	Price     int64
	Qty       int64
	Time      int64
	TakerLeft int64 // taker quantity remaining after this fill
	MakerLeft int64 // maker quantity remaining after this fill
}

// BuyRef and SellRef map the taker/maker pair onto buy/sell order ids.
func (e Execution) BuyRef() uint64 {
	if e.Taker == Bid {
		return e.TakerID
	}
	return e.MakerID
}

func (e Execution) SellRef() uint64 {
	if e.Taker == Ask {
		return e.TakerID
	}
	return e.MakerID
}

func (e Execution) BuyUser() string {
	if e.Taker == Bid {
		return e.TakerUser
	}
	return e.MakerUser
}

func (e Execution) SellUser() string {
	if e.Taker == Ask {
		return e.TakerUser
	}
	return e.MakerUser
}

// SubmitResult is the outcome of one limit submission: zero or more
// executions, plus the resting remainder when the order did not fully fill.
type SubmitResult struct {
	OrderID    uint64
	Executions []Execution
	Resting    *Order // nil when the incoming order fully filled
}

// OrderBook is one instrument's book: the order ledger plus the price-time
// index over it. Identifiers and timestamps are supplied by the caller so
// that replaying the same command sequence rebuilds an identical book.
type OrderBook struct {
	ledger *Ledger
	index  *PriceTimeIndex
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		ledger: NewLedger(),
		index:  NewPriceTimeIndex(),
	}
}

// SubmitLimit executes an incoming limit order against the opposing side's
// depth. It repeatedly matches the best opposing order while the limit
// price crosses, trading at the resting order's price, and rests any
// remainder. Each iteration strictly reduces the remaining quantity or
// removes a resting order, so the loop terminates.
func (b *OrderBook) SubmitLimit(id uint64, ts int64, side Side, user string, price, qty int64) (SubmitResult, error) {
	if price <= 0 || qty <= 0 {
		return SubmitResult{}, ErrInvalidOrder
	}

	res := SubmitResult{OrderID: id}
	remaining := qty

	for remaining > 0 {
		maker := b.index.Best(side.Opposite())
		if maker == nil || !crosses(side, price, maker.Price) {
			break
		}

		q := min(remaining, maker.Qty)
		remaining -= q

		ex := Execution{
			Taker:     side,
			TakerID:   id,
			TakerUser: user,
			MakerID:   maker.ID,
			MakerUser: maker.User,
			Price:     maker.Price,
			Qty:       q,
			Time:      ts,
			TakerLeft: remaining,
		}

		left, err := b.fill(maker, q)
		if err != nil {
			return res, err
		}
		ex.MakerLeft = left
		res.Executions = append(res.Executions, ex)
	}

	if remaining > 0 {
		o := &Order{ID: id, Side: side, User: user, Price: price, Qty: remaining, Time: ts}
		if err := b.ledger.Insert(o); err != nil {
			return res, err
		}
		b.index.Insert(o)
		res.Resting = o
	}
	return res, nil
}

// MarketTake matches unconditionally against the best opposing order for
// that order's full quantity, at its price.
func (b *OrderBook) MarketTake(id uint64, ts int64, side Side, user string) (Execution, error) {
	maker := b.index.Best(side.Opposite())
	if maker == nil {
		return Execution{}, ErrNoLiquidity
	}

	ex := Execution{
		Taker:     side,
		TakerID:   id,
		TakerUser: user,
		MakerID:   maker.ID,
		MakerUser: maker.User,
		Price:     maker.Price,
		Qty:       maker.Qty,
		Time:      ts,
	}
	if _, err := b.fill(maker, maker.Qty); err != nil {
		return Execution{}, err
	}
	return ex, nil
}

// Cancel removes an order from the book and returns a copy of it.
func (b *OrderBook) Cancel(id uint64) (Order, error) {
	o, err := b.ledger.Remove(id)
	if err != nil {
		return Order{}, err
	}
	b.index.Remove(o)
	cp := *o
	cp.next, cp.prev, cp.level = nil, nil, nil
	return cp, nil
}

// CancelAtPrice removes every order belonging to user at an exact price,
// on both sides, and returns copies of the cancelled orders.
func (b *OrderBook) CancelAtPrice(user string, price int64) []Order {
	var victims []*Order
	for _, side := range []Side{Bid, Ask} {
		lvl := b.index.tree(side).FindLevel(price)
		if lvl == nil {
			continue
		}
		for o := lvl.head; o != nil; o = o.next {
			if o.User == user {
				victims = append(victims, o)
			}
		}
	}

	cancelled := make([]Order, 0, len(victims))
	for _, o := range victims {
		if _, err := b.ledger.Remove(o.ID); err != nil {
			continue
		}
		b.index.Remove(o)
		cp := *o
		cp.next, cp.prev, cp.level = nil, nil, nil
		cancelled = append(cancelled, cp)
	}
	return cancelled
}

// Restore re-inserts a resting order with its original id and timestamp.
// Used when rebuilding the book from a snapshot.
func (b *OrderBook) Restore(o Order) error {
	r := &Order{ID: o.ID, Side: o.Side, User: o.User, Price: o.Price, Qty: o.Qty, Time: o.Time}
	if err := b.ledger.Insert(r); err != nil {
		return err
	}
	b.index.Insert(r)
	return nil
}

func (b *OrderBook) BestBid() (int64, bool) {
	o := b.index.Best(Bid)
	if o == nil {
		return 0, false
	}
	return o.Price, true
}

func (b *OrderBook) BestAsk() (int64, bool) {
	o := b.index.Best(Ask)
	if o == nil {
		return 0, false
	}
	return o.Price, true
}

// Len returns the number of resting orders across both sides.
func (b *OrderBook) Len() int { return b.ledger.Len() }

// Depth returns the number of populated price levels on a side.
func (b *OrderBook) Depth(side Side) int { return b.index.Depth(side) }

// Get returns the resting order with the given id.
func (b *OrderBook) Get(id uint64) (Order, error) {
	o, err := b.ledger.Get(id)
	if err != nil {
		return Order{}, err
	}
	cp := *o
	cp.next, cp.prev, cp.level = nil, nil, nil
	return cp, nil
}

// Snapshot copies all resting orders, bids best-first then asks best-first.
func (b *OrderBook) Snapshot() []Order {
	out := make([]Order, 0, b.ledger.Len())
	for _, side := range []Side{Bid, Ask} {
		b.index.Walk(side, func(lvl *PriceLevel) bool {
			for o := lvl.head; o != nil; o = o.next {
				out = append(out, Order{
					ID: o.ID, Side: o.Side, User: o.User,
					Price: o.Price, Qty: o.Qty, Time: o.Time,
				})
			}
			return true
		})
	}
	return out
}

// fill applies one execution to a resting order, keeping ledger and index
// in sync. Returns the maker's remaining quantity.
func (b *OrderBook) fill(maker *Order, q int64) (int64, error) {
	lvl := maker.level
	removed, err := b.ledger.ReduceQty(maker.ID, q)
	if err != nil {
		return 0, err
	}
	if lvl != nil {
		lvl.reduce(q)
	}
	if removed {
		b.index.Remove(maker)
	}
	return maker.Qty, nil
}

func crosses(side Side, limit, resting int64) bool {
	if side == Bid {
		return limit >= resting
	}
	return limit <= resting
}
