package orderbook

// Ledger is the canonical owner of outstanding orders, keyed by order id.
// The price-time index only links the same Order values; every mutation
// goes through the ledger first so the two stay consistent.
type Ledger struct {
	orders map[uint64]*Order
}

func NewLedger() *Ledger {
	return &Ledger{orders: make(map[uint64]*Order)}
}

func (l *Ledger) Len() int { return len(l.orders) }

func (l *Ledger) Insert(o *Order) error {
	if _, ok := l.orders[o.ID]; ok {
		return ErrDuplicateID
	}
	l.orders[o.ID] = o
	return nil
}

func (l *Ledger) Get(id uint64) (*Order, error) {
	o, ok := l.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

// ReduceQty decrements an order's remaining quantity by amount. The order
// is removed from the ledger when its quantity reaches zero; removed
// reports whether that happened.
func (l *Ledger) ReduceQty(id uint64, amount int64) (removed bool, err error) {
	o, ok := l.orders[id]
	if !ok {
		return false, ErrNotFound
	}
	if amount <= 0 || amount > o.Qty {
		return false, ErrInvalidFill
	}
	o.Qty -= amount
	if o.Qty == 0 {
		delete(l.orders, id)
		return true, nil
	}
	return false, nil
}

// Remove deletes an order outright. Used for cancellation.
func (l *Ledger) Remove(id uint64) (*Order, error) {
	o, ok := l.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(l.orders, id)
	return o, nil
}
