package api

// Request and response shapes for the REST endpoints and the WebSocket
// feed. Prices and quantities are integer ticks and lots.

// PlaceOrderRequest carries one limit order. The quantity is signed:
// positive buys, negative sells. Side may be set explicitly ("bid" or
// "ask") as an alias, in which case Qty must be positive.
type PlaceOrderRequest struct {
	User  string `json:"user"`
	Side  string `json:"side,omitempty"`
	Price int64  `json:"price"`
	Qty   int64  `json:"qty"`
}

type PlaceOrderResponse struct {
	OrderID    uint64      `json:"orderId"`
	Resting    bool        `json:"resting"`
	RestingQty int64       `json:"restingQty,omitempty"`
	Trades     []TradeInfo `json:"trades"`
}

type TakeRequest struct {
	User string `json:"user"`
	Side string `json:"side"` // side of the taker, not the resting order
}

type CancelRequest struct {
	OrderID uint64 `json:"orderId"`
}

type CancelAtPriceRequest struct {
	User  string `json:"user"`
	Price int64  `json:"price"`
}

type OrderInfo struct {
	ID    uint64 `json:"id"`
	Side  string `json:"side"`
	User  string `json:"user"`
	Price int64  `json:"price"`
	Qty   int64  `json:"qty"`
	Time  int64  `json:"time"`
}

// BookSnapshot lists resting orders best-first on each side.
type BookSnapshot struct {
	Bids      []OrderInfo `json:"bids"`
	Asks      []OrderInfo `json:"asks"`
	Timestamp int64       `json:"timestamp"`
}

type TradeInfo struct {
	ID        uint64 `json:"id"`
	Price     int64  `json:"price"`
	Qty       int64  `json:"qty"`
	BuyOrder  uint64 `json:"buyOrder"`
	SellOrder uint64 `json:"sellOrder"`
	BuyUser   string `json:"buyUser"`
	SellUser  string `json:"sellUser"`
	Taker     string `json:"taker"`
	Time      int64  `json:"time"`
}

// LegInfo is one participant's view of a trade.
type LegInfo struct {
	TradeID    uint64 `json:"tradeId"`
	Side       string `json:"side"`
	User       string `json:"user"`
	Order      uint64 `json:"order"`
	Price      int64  `json:"price"`
	Qty        int64  `json:"qty"`
	Time       int64  `json:"time"`
	Instigator bool   `json:"instigator"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
