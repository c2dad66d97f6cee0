// Package events defines the engine's outbound event feed: an ordered
// stream describing every resting order, fill, cancellation and trade.
// Remote viewers apply events idempotently keyed by order/trade id.
package events

import "encoding/json"

type Type string

const (
	TypeNewOrder       Type = "new_order"
	TypeOrderFilled    Type = "order_filled"
	TypeOrderCancelled Type = "order_cancelled"
	TypeTrade          Type = "trade"
)

// OrderEvent carries order lifecycle payloads. For TypeOrderFilled, Qty is
// the order's remaining quantity; zero means the order fully filled and
// left the book.
type OrderEvent struct {
	ID    uint64 `json:"id"`
	Side  string `json:"side"`
	Price int64  `json:"price"`
	Qty   int64  `json:"qty"`
	User  string `json:"user"`
	Time  int64  `json:"time"`
}

// TradeEvent is the public record of one executed match.
type TradeEvent struct {
	ID     uint64 `json:"id"`
	Price  int64  `json:"price"`
	Qty    int64  `json:"qty"`
	Taker  string `json:"taker"`
	Buyer  string `json:"buyer"`
	Seller string `json:"seller"`
	Time   int64  `json:"time"`
}

// Event is the feed envelope. Seq orders the stream; exactly one of Order
// or Trade is set depending on Type.
type Event struct {
	Seq   uint64      `json:"seq"`
	Type  Type        `json:"type"`
	Order *OrderEvent `json:"order,omitempty"`
	Trade *TradeEvent `json:"trade,omitempty"`
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func Decode(b []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(b, &e)
	return e, err
}
