package orderbook

// PriceLevel is the FIFO queue of resting orders at one price. Orders are
// appended at the tail on insertion and consumed from the head when
// matching, which is what gives time priority within a price.
type PriceLevel struct {
	Price      int64
	head       *Order
	tail       *Order
	TotalQty   int64
	OrderCount int
}

func (p *PriceLevel) Head() *Order { return p.head }

func (p *PriceLevel) Enqueue(o *Order) {
	if p.head == nil {
		p.head = o
		p.tail = o
	} else {
		p.tail.next = o
		o.prev = p.tail
		p.tail = o
	}
	o.level = p
	p.TotalQty += o.Qty
	p.OrderCount++
}

// reduce accounts for a partial fill of one order at this level.
func (p *PriceLevel) reduce(amount int64) {
	p.TotalQty -= amount
	if p.TotalQty < 0 {
		p.TotalQty = 0
	}
}

func (p *PriceLevel) unlink(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		p.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		p.tail = o.prev
	}
	o.next = nil
	o.prev = nil
	o.level = nil
	p.TotalQty -= o.Qty
	if p.TotalQty < 0 {
		p.TotalQty = 0
	}
	p.OrderCount--
}
