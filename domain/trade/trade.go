// Package trade holds the append-only journal of executed trades. Trades
// are immutable once appended; the journal is the source of truth for
// trade history and the basis for replay and audit.
package trade

import "github.com/Ch3ngL0rd/orderbooks/domain/orderbook"

// Trade is one executed match. The price is the resting order's price.
// Taker is the side of the instigating order.
type Trade struct {
	ID        uint64         `json:"id"`
	BuyOrder  uint64         `json:"buy_order"`
	SellOrder uint64         `json:"sell_order"`
	BuyUser   string         `json:"buy_user"`
	SellUser  string         `json:"sell_user"`
	Price     int64          `json:"price"`
	Qty       int64          `json:"qty"`
	Time      int64          `json:"time"`
	Taker     orderbook.Side `json:"-"`
}

// Leg is one participant's view of a trade. A trade always has a buy leg
// and a sell leg sharing the trade id.
type Leg struct {
	TradeID    uint64 `json:"trade_id"`
	Side       string `json:"side"`
	User       string `json:"user"`
	Order      uint64 `json:"order"`
	Price      int64  `json:"price"`
	Qty        int64  `json:"qty"`
	Time       int64  `json:"time"`
	Instigator bool   `json:"instigator"`
}

// Legs splits a trade into its buy and sell legs.
func (t Trade) Legs() (buy, sell Leg) {
	buy = Leg{
		TradeID: t.ID, Side: "buy", User: t.BuyUser, Order: t.BuyOrder,
		Price: t.Price, Qty: t.Qty, Time: t.Time,
		Instigator: t.Taker == orderbook.Bid,
	}
	sell = Leg{
		TradeID: t.ID, Side: "sell", User: t.SellUser, Order: t.SellOrder,
		Price: t.Price, Qty: t.Qty, Time: t.Time,
		Instigator: t.Taker == orderbook.Ask,
	}
	return buy, sell
}

// Involves reports whether user participated on either side.
func (t Trade) Involves(user string) bool {
	return t.BuyUser == user || t.SellUser == user
}
