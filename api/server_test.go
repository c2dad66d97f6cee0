package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/Ch3ngL0rd/orderbooks/domain/orderbook"
	"github.com/Ch3ngL0rd/orderbooks/domain/trade"
	"github.com/Ch3ngL0rd/orderbooks/infra/sequence"
	"github.com/Ch3ngL0rd/orderbooks/infra/wal"
	"github.com/Ch3ngL0rd/orderbooks/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	w, err := wal.Open(wal.Config{Dir: t.TempDir(), Sync: false})
	if err != nil {
		t.Fatalf("open wal: %v", err)
	}
	t.Cleanup(func() { w.Close() })

	log := zap.NewNop()
	svc := service.NewOrderService(
		orderbook.NewOrderBook(),
		trade.NewJournal(),
		sequence.New(0),
		w,
		nil,
		nil,
		log,
	)

	srv := NewServer(svc, NewHub(log), log)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	raw, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestPlaceAndReadBook(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/orders", PlaceOrderRequest{
		User: "U1", Side: "bid", Price: 100, Qty: 5,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var placed PlaceOrderResponse
	decode(t, resp, &placed)
	if !placed.Resting || placed.OrderID == 0 {
		t.Errorf("response = %+v, want a resting order with an id", placed)
	}

	resp, err := http.Get(ts.URL + "/api/v1/orderbook")
	if err != nil {
		t.Fatalf("get orderbook: %v", err)
	}
	var book BookSnapshot
	decode(t, resp, &book)
	if len(book.Bids) != 1 || book.Bids[0].Price != 100 {
		t.Errorf("book = %+v, want one bid at 100", book)
	}
}

func TestMatchThroughAPI(t *testing.T) {
	ts := newTestServer(t)

	postJSON(t, ts.URL+"/api/v1/orders", PlaceOrderRequest{User: "U2", Side: "ask", Price: 90, Qty: 3}).Body.Close()
	resp := postJSON(t, ts.URL+"/api/v1/orders", PlaceOrderRequest{User: "U1", Side: "bid", Price: 100, Qty: 5})

	var placed PlaceOrderResponse
	decode(t, resp, &placed)
	if len(placed.Trades) != 1 || placed.Trades[0].Price != 90 {
		t.Fatalf("trades = %+v, want one at the resting price 90", placed.Trades)
	}

	resp, _ = http.Get(ts.URL + "/api/v1/trades?user=U2")
	var trades []TradeInfo
	decode(t, resp, &trades)
	if len(trades) != 1 {
		t.Errorf("U2 trades = %d, want 1", len(trades))
	}

	legURL := ts.URL + "/api/v1/trades/1"
	resp, _ = http.Get(legURL)
	var legs map[string]LegInfo
	decode(t, resp, &legs)
	if legs["buy"].User != "U1" || legs["sell"].User != "U2" {
		t.Errorf("legs = %+v", legs)
	}
}

// The quantity's sign encodes the side when no explicit side is given:
// positive buys, negative sells.
func TestSignedQuantityEncodesSide(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/orders", PlaceOrderRequest{User: "U1", Price: 100, Qty: 5})
	var placed PlaceOrderResponse
	decode(t, resp, &placed)
	if !placed.Resting || placed.RestingQty != 5 {
		t.Fatalf("positive qty should rest a bid: %+v", placed)
	}

	resp = postJSON(t, ts.URL+"/api/v1/orders", PlaceOrderRequest{User: "U2", Price: 105, Qty: -3})
	decode(t, resp, &placed)
	if !placed.Resting || placed.RestingQty != 3 {
		t.Fatalf("negative qty should rest an ask: %+v", placed)
	}

	resp, err := http.Get(ts.URL + "/api/v1/orderbook")
	if err != nil {
		t.Fatalf("get orderbook: %v", err)
	}
	var book BookSnapshot
	decode(t, resp, &book)
	if len(book.Bids) != 1 || book.Bids[0].Price != 100 {
		t.Errorf("bids = %+v, want one at 100", book.Bids)
	}
	if len(book.Asks) != 1 || book.Asks[0].Price != 105 {
		t.Errorf("asks = %+v, want one at 105", book.Asks)
	}

	resp = postJSON(t, ts.URL+"/api/v1/orders", PlaceOrderRequest{User: "U3", Price: 100, Qty: 0})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("zero qty status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestExplicitSideAlias(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/orders", PlaceOrderRequest{User: "U1", Side: "ask", Price: 105, Qty: 3})
	var placed PlaceOrderResponse
	decode(t, resp, &placed)
	if !placed.Resting {
		t.Fatalf("explicit ask should rest: %+v", placed)
	}

	resp, err := http.Get(ts.URL + "/api/v1/orderbook")
	if err != nil {
		t.Fatalf("get orderbook: %v", err)
	}
	var book BookSnapshot
	decode(t, resp, &book)
	if len(book.Asks) != 1 {
		t.Errorf("asks = %+v, want the aliased order", book.Asks)
	}
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/orders", PlaceOrderRequest{User: "U1", Side: "sideways", Price: 1, Qty: 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad side status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/v1/orders", PlaceOrderRequest{User: "U1", Side: "bid", Price: 0, Qty: 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid order status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/v1/orders/cancel", CancelRequest{OrderID: 12345})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown cancel status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/v1/orders/take", TakeRequest{User: "U3", Side: "ask"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("empty take status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("health: %v %d", err, resp.StatusCode)
	}
	resp.Body.Close()
}
