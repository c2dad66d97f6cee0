package orderbook

import "errors"

var (
	// ErrDuplicateID means an engine-generated id collided. This is an
	// engine bug, not a user error; callers should treat it as fatal.
	ErrDuplicateID = errors.New("duplicate order id")

	// ErrNotFound means the referenced order is not in the ledger.
	ErrNotFound = errors.New("order not found")

	// ErrNoLiquidity means a market take found the opposing side empty.
	ErrNoLiquidity = errors.New("no liquidity on opposing side")

	// ErrInvalidFill means a fill exceeded an order's remaining quantity.
	// It indicates a matching-loop bug and is fatal for the book instance.
	ErrInvalidFill = errors.New("fill exceeds remaining quantity")

	// ErrInvalidOrder rejects non-positive price or quantity before the
	// order touches the book.
	ErrInvalidOrder = errors.New("order price and quantity must be positive")
)
