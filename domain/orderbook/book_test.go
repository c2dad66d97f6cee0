package orderbook

import (
	"errors"
	"testing"
)

func TestSubmitRestsOnEmptyBook(t *testing.T) {
	b := NewOrderBook()

	res, err := b.SubmitLimit(1, 1, Bid, "U1", 100, 5)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(res.Executions) != 0 {
		t.Errorf("expected no executions, got %d", len(res.Executions))
	}
	if res.Resting == nil || res.Resting.Qty != 5 {
		t.Error("order should rest with full quantity")
	}
	if b.Len() != 1 || b.Depth(Bid) != 1 {
		t.Error("book should hold exactly one bid")
	}
}

func TestCrossingBidTradesAtRestingPrice(t *testing.T) {
	b := NewOrderBook()
	b.SubmitLimit(1, 1, Ask, "U2", 90, 3)

	res, err := b.SubmitLimit(2, 2, Bid, "U1", 100, 5)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(res.Executions) != 1 {
		t.Fatalf("expected 1 execution, got %d", len(res.Executions))
	}
	ex := res.Executions[0]
	if ex.Price != 90 {
		t.Errorf("trade must use the resting price 90, got %d", ex.Price)
	}
	if ex.Qty != 3 {
		t.Errorf("trade qty = %d, want 3", ex.Qty)
	}
	if ex.Taker != Bid || ex.TakerUser != "U1" || ex.MakerUser != "U2" {
		t.Error("taker/maker attribution wrong")
	}
	if res.Resting == nil || res.Resting.Qty != 2 {
		t.Error("remainder of 2 should rest as a bid")
	}
	if _, ok := b.BestAsk(); ok {
		t.Error("ask side should be empty after the fill")
	}
}

func TestDepthMatchingWalksLevels(t *testing.T) {
	b := NewOrderBook()
	b.SubmitLimit(1, 1, Ask, "M1", 90, 2)
	b.SubmitLimit(2, 2, Ask, "M2", 95, 2)
	b.SubmitLimit(3, 3, Ask, "M3", 99, 2)

	res, err := b.SubmitLimit(4, 4, Bid, "T", 95, 5)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(res.Executions) != 2 {
		t.Fatalf("expected 2 executions, got %d", len(res.Executions))
	}
	if res.Executions[0].Price != 90 || res.Executions[1].Price != 95 {
		t.Error("fills must walk levels best-price-first at maker prices")
	}
	if res.Resting == nil || res.Resting.Qty != 1 {
		t.Error("remainder of 1 should rest after sweeping 90 and 95")
	}
	if best, _ := b.BestAsk(); best != 99 {
		t.Errorf("best ask = %d, want the untouched 99", best)
	}
}

func TestFIFOWithinPriceLevel(t *testing.T) {
	b := NewOrderBook()
	b.SubmitLimit(1, 1, Ask, "first", 100, 1)
	b.SubmitLimit(2, 2, Ask, "second", 100, 1)

	res, _ := b.SubmitLimit(3, 3, Bid, "T", 100, 1)
	if len(res.Executions) != 1 || res.Executions[0].MakerUser != "first" {
		t.Error("earlier order at the same price must fill first")
	}

	res, _ = b.SubmitLimit(4, 4, Bid, "T", 100, 1)
	if len(res.Executions) != 1 || res.Executions[0].MakerUser != "second" {
		t.Error("second order should fill on the next submission")
	}
}

func TestPartialFillOfRestingOrder(t *testing.T) {
	b := NewOrderBook()
	b.SubmitLimit(1, 1, Ask, "M", 100, 10)

	res, _ := b.SubmitLimit(2, 2, Bid, "T", 100, 4)
	if res.Resting != nil {
		t.Error("taker should fully fill and not rest")
	}
	if res.Executions[0].MakerLeft != 6 {
		t.Errorf("maker left = %d, want 6", res.Executions[0].MakerLeft)
	}

	o, err := b.Get(1)
	if err != nil {
		t.Fatalf("maker should still rest: %v", err)
	}
	if o.Qty != 6 {
		t.Errorf("resting qty = %d, want 6", o.Qty)
	}
}

func TestMarketTakeConsumesFullBestOrder(t *testing.T) {
	b := NewOrderBook()
	b.SubmitLimit(1, 1, Bid, "U1", 50, 10)

	ex, err := b.MarketTake(2, 2, Ask, "U3")
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if ex.Price != 50 || ex.Qty != 10 {
		t.Errorf("take = %d@%d, want 10@50", ex.Qty, ex.Price)
	}
	if b.Len() != 0 {
		t.Error("resting bid should be gone")
	}
}

func TestMarketTakeEmptySide(t *testing.T) {
	b := NewOrderBook()
	b.SubmitLimit(1, 1, Ask, "U2", 90, 3) // liquidity on the wrong side

	_, err := b.MarketTake(2, 2, Ask, "U3")
	if !errors.Is(err, ErrNoLiquidity) {
		t.Fatalf("err = %v, want ErrNoLiquidity", err)
	}
	if b.Len() != 1 {
		t.Error("failed take must not change the book")
	}
}

func TestCancelThenRecancel(t *testing.T) {
	b := NewOrderBook()
	b.SubmitLimit(1, 1, Ask, "U1", 80, 4)

	o, err := b.Cancel(1)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if o.Price != 80 || o.Qty != 4 {
		t.Error("cancel should return the removed order")
	}
	if b.Len() != 0 || b.Depth(Ask) != 0 {
		t.Error("book should be empty after cancel")
	}

	if _, err := b.Cancel(1); !errors.Is(err, ErrNotFound) {
		t.Errorf("re-cancel err = %v, want ErrNotFound", err)
	}
}

func TestCancelAtPrice(t *testing.T) {
	b := NewOrderBook()
	b.SubmitLimit(1, 1, Bid, "U1", 100, 1)
	b.SubmitLimit(2, 2, Bid, "U1", 100, 2)
	b.SubmitLimit(3, 3, Bid, "U2", 100, 3)
	b.SubmitLimit(4, 4, Bid, "U1", 99, 4)

	cancelled := b.CancelAtPrice("U1", 100)
	if len(cancelled) != 2 {
		t.Fatalf("cancelled %d orders, want 2", len(cancelled))
	}
	if b.Len() != 2 {
		t.Errorf("book len = %d, want 2 survivors", b.Len())
	}
	if _, err := b.Get(3); err != nil {
		t.Error("other user's order at the price must survive")
	}
	if _, err := b.Get(4); err != nil {
		t.Error("same user's order at another price must survive")
	}

	if got := b.CancelAtPrice("U1", 12345); len(got) != 0 {
		t.Error("matching nothing should return an empty slice")
	}
}

func TestBestBidNeverCrossesBestAsk(t *testing.T) {
	b := NewOrderBook()
	b.SubmitLimit(1, 1, Bid, "U1", 100, 5)
	b.SubmitLimit(2, 2, Ask, "U2", 95, 2) // crosses, must trade not rest

	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()
	if okBid && okAsk && bid >= ask {
		t.Errorf("book crossed: bid %d >= ask %d", bid, ask)
	}
}

func TestQuantityConservation(t *testing.T) {
	b := NewOrderBook()
	const qty = 10
	b.SubmitLimit(1, 1, Ask, "M", 100, qty)

	res, _ := b.SubmitLimit(2, 2, Bid, "T", 100, 6)
	var filled int64
	for _, ex := range res.Executions {
		filled += ex.Qty
	}
	o, _ := b.Get(1)
	if filled+o.Qty != qty {
		t.Errorf("filled %d + remaining %d != original %d", filled, o.Qty, qty)
	}
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	b := NewOrderBook()
	if _, err := b.SubmitLimit(1, 1, Bid, "U1", 0, 5); !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("zero price err = %v, want ErrInvalidOrder", err)
	}
	if _, err := b.SubmitLimit(1, 1, Bid, "U1", 100, -1); !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("negative qty err = %v, want ErrInvalidOrder", err)
	}
	if b.Len() != 0 {
		t.Error("rejected orders must not touch the book")
	}
}

func TestDuplicateIDIsRejected(t *testing.T) {
	b := NewOrderBook()
	b.SubmitLimit(7, 1, Bid, "U1", 100, 5)

	_, err := b.SubmitLimit(7, 2, Bid, "U1", 101, 5)
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("err = %v, want ErrDuplicateID", err)
	}
}

func TestSnapshotOrdering(t *testing.T) {
	b := NewOrderBook()
	b.SubmitLimit(1, 1, Bid, "U1", 99, 1)
	b.SubmitLimit(2, 2, Bid, "U1", 100, 1)
	b.SubmitLimit(3, 3, Ask, "U2", 105, 1)
	b.SubmitLimit(4, 4, Ask, "U2", 101, 1)

	snap := b.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("snapshot len = %d, want 4", len(snap))
	}
	if snap[0].Price != 100 || snap[1].Price != 99 {
		t.Error("bids must come first, best price first")
	}
	if snap[2].Price != 101 || snap[3].Price != 105 {
		t.Error("asks must follow, best price first")
	}
}

func TestRestoreRebuildsPriority(t *testing.T) {
	b := NewOrderBook()
	orders := []Order{
		{ID: 1, Side: Ask, User: "A", Price: 100, Qty: 1, Time: 1},
		{ID: 2, Side: Ask, User: "B", Price: 100, Qty: 1, Time: 2},
	}
	for _, o := range orders {
		if err := b.Restore(o); err != nil {
			t.Fatalf("restore: %v", err)
		}
	}

	res, _ := b.SubmitLimit(3, 3, Bid, "T", 100, 1)
	if len(res.Executions) != 1 || res.Executions[0].MakerID != 1 {
		t.Error("restored orders must keep their original time priority")
	}
}
