// Package orderbook implements the in-memory matching core for a single
// tradable instrument under continuous double-auction rules. It maintains
// a ledger of resting orders, a price-time index built on two red-black
// trees (bids and asks), and the matching algorithm that executes incoming
// orders against resting liquidity at strict price-time priority.
//
// The package performs no locking of its own. All mutating calls must be
// serialized by the caller (see service.OrderService), which keeps the
// match-then-mutate sequence atomic with respect to the book.
package orderbook
