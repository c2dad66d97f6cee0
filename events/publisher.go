package events

// Publisher is the engine's only view of the outside world. Publish must
// not block on outbound I/O for long; the engine calls it after releasing
// the book lock.
type Publisher interface {
	Publish(Event)
}

// Nop discards events. Used during WAL replay and in tests.
type Nop struct{}

func (Nop) Publish(Event) {}

// Fanout publishes to every wrapped publisher in order.
type Fanout []Publisher

func (f Fanout) Publish(e Event) {
	for _, p := range f {
		p.Publish(e)
	}
}
