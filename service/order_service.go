package service

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Ch3ngL0rd/orderbooks/domain/orderbook"
	"github.com/Ch3ngL0rd/orderbooks/domain/trade"
	"github.com/Ch3ngL0rd/orderbooks/events"
	"github.com/Ch3ngL0rd/orderbooks/infra/outbox"
	"github.com/Ch3ngL0rd/orderbooks/infra/sequence"
	"github.com/Ch3ngL0rd/orderbooks/infra/wal"
)

/*
OrderService is the ONLY write entry point into the engine.

All coordination between:
  - domain (orderbook, trade journal)
  - infra (wal, outbox, sequence)
  - the outbound event feed

happens here. Every mutating call runs under one mutex so the
match-then-mutate sequence is atomic with respect to the book; events are
dispatched after the lock is released.
*/
type OrderService struct {
	mu      sync.Mutex
	book    *orderbook.OrderBook
	journal *trade.Journal
	seq     *sequence.Sequencer
	wal     *wal.WAL
	outbox  *outbox.Outbox // nil when the Kafka feed is disabled
	pub     events.Publisher
	log     *zap.Logger
	feedSeq atomic.Uint64
}

// NewOrderService wires all dependencies. No globals.
func NewOrderService(
	book *orderbook.OrderBook,
	journal *trade.Journal,
	seq *sequence.Sequencer,
	w *wal.WAL,
	ob *outbox.Outbox,
	pub events.Publisher,
	log *zap.Logger,
) *OrderService {
	if pub == nil {
		pub = events.Nop{}
	}
	s := &OrderService{
		book:    book,
		journal: journal,
		seq:     seq,
		wal:     w,
		outbox:  ob,
		pub:     pub,
		log:     log,
	}
	// Resume the feed above any events still staged from a previous run,
	// otherwise new events would reuse their outbox keys.
	if ob != nil {
		if high, err := ob.MaxSeq(); err != nil {
			log.Warn("read outbox high water", zap.Error(err))
		} else {
			s.feedSeq.Store(high)
		}
	}
	return s
}

// PlaceResult is what a submitter gets back for one limit order.
type PlaceResult struct {
	OrderID    uint64
	Resting    bool
	RestingQty int64
	Trades     []trade.Trade
}

// PlaceLimit validates, journals and executes one incoming limit order.
// The command sequence number doubles as the order id, which is what
// makes WAL replay rebuild identical ids.
func (s *OrderService) PlaceLimit(side orderbook.Side, user string, price, qty int64) (PlaceResult, error) {
	if err := validateOrder(user, price, qty); err != nil {
		return PlaceResult{}, err
	}

	s.mu.Lock()
	seq := s.seq.Next()

	// The record's timestamp is the one the book sees, so replaying the
	// log rebuilds byte-identical state.
	rec := wal.NewRecord(wal.RecordPlace, seq, encodePlace(user, side, price, qty))
	if err := s.wal.Append(rec); err != nil {
		s.mu.Unlock()
		return PlaceResult{}, err
	}

	res, err := s.book.SubmitLimit(seq, rec.Time, side, user, price, qty)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, orderbook.ErrInvalidOrder) {
			return PlaceResult{}, err
		}
		// ErrInvalidFill / ErrDuplicateID: matching correctness cannot be
		// locally repaired. Crash and recover from the journal.
		s.log.Fatal("book invariant violated", zap.Uint64("seq", seq), zap.Error(err))
	}

	out := PlaceResult{OrderID: res.OrderID, Trades: make([]trade.Trade, 0, len(res.Executions))}
	evs := make([]events.Event, 0, 3*len(res.Executions)+1)
	for _, ex := range res.Executions {
		t := s.journal.Append(tradeFromExec(ex))
		out.Trades = append(out.Trades, t)
		evs = append(evs, s.fillEvents(ex)...)
		evs = append(evs, s.tradeEvent(t))
	}
	if res.Resting != nil {
		out.Resting = true
		out.RestingQty = res.Resting.Qty
		evs = append(evs, s.orderEvent(events.TypeNewOrder, *res.Resting))
	}
	s.mu.Unlock()

	s.dispatch(evs)
	return out, nil
}

// MarketTake matches against the best opposing order regardless of price,
// for that order's full quantity.
func (s *OrderService) MarketTake(side orderbook.Side, user string) (trade.Trade, error) {
	if user == "" {
		return trade.Trade{}, orderbook.ErrInvalidOrder
	}

	s.mu.Lock()
	seq := s.seq.Next()

	rec := wal.NewRecord(wal.RecordTake, seq, encodeTake(user, side))
	if err := s.wal.Append(rec); err != nil {
		s.mu.Unlock()
		return trade.Trade{}, err
	}

	ex, err := s.book.MarketTake(seq, rec.Time, side, user)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, orderbook.ErrNoLiquidity) {
			// Deterministic no-op; replay will take the same path.
			return trade.Trade{}, err
		}
		s.log.Fatal("book invariant violated", zap.Uint64("seq", seq), zap.Error(err))
	}

	t := s.journal.Append(tradeFromExec(ex))
	evs := append(s.fillEvents(ex), s.tradeEvent(t))
	s.mu.Unlock()

	s.dispatch(evs)
	return t, nil
}

// Cancel removes one resting order by id. Unknown ids fail with
// orderbook.ErrNotFound; nothing else is touched.
func (s *OrderService) Cancel(orderID uint64) (orderbook.Order, error) {
	s.mu.Lock()
	seq := s.seq.Next()

	if err := s.wal.Append(wal.NewRecord(wal.RecordCancel, seq, encodeCancel(orderID))); err != nil {
		s.mu.Unlock()
		return orderbook.Order{}, err
	}

	o, err := s.book.Cancel(orderID)
	if err != nil {
		s.mu.Unlock()
		return orderbook.Order{}, err
	}
	ev := s.orderEvent(events.TypeOrderCancelled, o)
	s.mu.Unlock()

	s.dispatch([]events.Event{ev})
	return o, nil
}

// CancelAtPrice removes all of a user's orders at an exact price, on both
// sides. Matching nothing is not an error.
func (s *OrderService) CancelAtPrice(user string, price int64) ([]orderbook.Order, error) {
	s.mu.Lock()
	seq := s.seq.Next()

	if err := s.wal.Append(wal.NewRecord(wal.RecordCancelPrice, seq, encodeCancelPrice(user, price))); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	cancelled := s.book.CancelAtPrice(user, price)
	evs := make([]events.Event, 0, len(cancelled))
	for _, o := range cancelled {
		evs = append(evs, s.orderEvent(events.TypeOrderCancelled, o))
	}
	s.mu.Unlock()

	s.dispatch(evs)
	return cancelled, nil
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

// BookSnapshot copies all resting orders, bids best-first then asks
// best-first. Used to replay current book state to new subscribers.
func (s *OrderService) BookSnapshot() []orderbook.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Snapshot()
}

func (s *OrderService) BestBid() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.BestBid()
}

func (s *OrderService) BestAsk() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.BestAsk()
}

func (s *OrderService) Trades() []trade.Trade {
	return s.journal.All()
}

func (s *OrderService) TradesByUser(user string) []trade.Trade {
	return s.journal.ByUser(user)
}

func (s *OrderService) TradeLegs(id uint64) (map[string]trade.Leg, bool) {
	return s.journal.LegsByID(id)
}

//
// ──────────────────────────────────────────────────────────
// Events
// ──────────────────────────────────────────────────────────
//

func (s *OrderService) orderEvent(typ events.Type, o orderbook.Order) events.Event {
	return events.Event{
		Seq:  s.feedSeq.Add(1),
		Type: typ,
		Order: &events.OrderEvent{
			ID: o.ID, Side: o.Side.String(), Price: o.Price,
			Qty: o.Qty, User: o.User, Time: o.Time,
		},
	}
}

// fillEvents emits one OrderFilled per participant, instigator first.
// Qty carries the remaining quantity; zero means fully filled.
func (s *OrderService) fillEvents(ex orderbook.Execution) []events.Event {
	taker := events.Event{
		Seq:  s.feedSeq.Add(1),
		Type: events.TypeOrderFilled,
		Order: &events.OrderEvent{
			ID: ex.TakerID, Side: ex.Taker.String(), Price: ex.Price,
			Qty: ex.TakerLeft, User: ex.TakerUser, Time: ex.Time,
		},
	}
	maker := events.Event{
		Seq:  s.feedSeq.Add(1),
		Type: events.TypeOrderFilled,
		Order: &events.OrderEvent{
			ID: ex.MakerID, Side: ex.Taker.Opposite().String(), Price: ex.Price,
			Qty: ex.MakerLeft, User: ex.MakerUser, Time: ex.Time,
		},
	}
	return []events.Event{taker, maker}
}

func (s *OrderService) tradeEvent(t trade.Trade) events.Event {
	return events.Event{
		Seq:  s.feedSeq.Add(1),
		Type: events.TypeTrade,
		Trade: &events.TradeEvent{
			ID: t.ID, Price: t.Price, Qty: t.Qty,
			Taker: t.Taker.String(), Buyer: t.BuyUser, Seller: t.SellUser,
			Time: t.Time,
		},
	}
}

// dispatch runs outside the book lock: stage durably, then push to the
// live feed.
func (s *OrderService) dispatch(evs []events.Event) {
	for _, ev := range evs {
		if s.outbox != nil {
			payload, err := ev.Encode()
			if err == nil {
				err = s.outbox.Put(ev.Seq, payload)
			}
			if err != nil {
				s.log.Error("stage event", zap.Uint64("feed_seq", ev.Seq), zap.Error(err))
			}
		}
		s.pub.Publish(ev)
	}
}

func tradeFromExec(ex orderbook.Execution) trade.Trade {
	return trade.Trade{
		BuyOrder:  ex.BuyRef(),
		SellOrder: ex.SellRef(),
		BuyUser:   ex.BuyUser(),
		SellUser:  ex.SellUser(),
		Price:     ex.Price,
		Qty:       ex.Qty,
		Time:      ex.Time,
		Taker:     ex.Taker,
	}
}

func validateOrder(user string, price, qty int64) error {
	if user == "" || price <= 0 || qty <= 0 {
		return orderbook.ErrInvalidOrder
	}
	// User ids are opaque but must survive the WAL payload framing.
	if strings.ContainsRune(user, '|') {
		return orderbook.ErrInvalidOrder
	}
	return nil
}
