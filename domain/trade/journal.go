package trade

import "sync"

// Journal is the append-only trade log. It assigns trade ids itself, in
// append order, so a deterministic replay of the command log rebuilds the
// same ids. Queries take a read lock and copy, so they may run concurrently
// with appends.
type Journal struct {
	mu     sync.RWMutex
	trades []Trade
	byID   map[uint64]int
	byUser map[string][]int
	nextID uint64
}

func NewJournal() *Journal {
	return &Journal{
		byID:   make(map[uint64]int),
		byUser: make(map[string][]int),
	}
}

// Append assigns the next trade id, stores the trade and returns it.
func (j *Journal) Append(t Trade) Trade {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.nextID++
	t.ID = j.nextID

	idx := len(j.trades)
	j.trades = append(j.trades, t)
	j.byID[t.ID] = idx
	j.byUser[t.BuyUser] = append(j.byUser[t.BuyUser], idx)
	if t.SellUser != t.BuyUser {
		j.byUser[t.SellUser] = append(j.byUser[t.SellUser], idx)
	}
	return t
}

func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.trades)
}

// LastID returns the most recently assigned trade id.
func (j *Journal) LastID() uint64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.nextID
}

// Reset seeds the id counter, used when restoring from a snapshot.
func (j *Journal) Reset(lastID uint64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.nextID = lastID
}

// Restore loads already-identified trades, used when rebuilding from a
// snapshot. The id counter resumes past the highest restored id.
func (j *Journal) Restore(trades []Trade) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, t := range trades {
		idx := len(j.trades)
		j.trades = append(j.trades, t)
		j.byID[t.ID] = idx
		j.byUser[t.BuyUser] = append(j.byUser[t.BuyUser], idx)
		if t.SellUser != t.BuyUser {
			j.byUser[t.SellUser] = append(j.byUser[t.SellUser], idx)
		}
		if t.ID > j.nextID {
			j.nextID = t.ID
		}
	}
}

// All returns every trade in insertion order.
func (j *Journal) All() []Trade {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]Trade, len(j.trades))
	copy(out, j.trades)
	return out
}

// ByUser returns the trades where user is buyer or seller, in insertion
// order.
func (j *Journal) ByUser(user string) []Trade {
	j.mu.RLock()
	defer j.mu.RUnlock()
	idxs := j.byUser[user]
	out := make([]Trade, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, j.trades[i])
	}
	return out
}

// ByID returns the trade with the given id.
func (j *Journal) ByID(id uint64) (Trade, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	i, ok := j.byID[id]
	if !ok {
		return Trade{}, false
	}
	return j.trades[i], true
}

// LegsByID returns both legs of one logical trade keyed by "buy"/"sell".
func (j *Journal) LegsByID(id uint64) (map[string]Leg, bool) {
	t, ok := j.ByID(id)
	if !ok {
		return nil, false
	}
	buy, sell := t.Legs()
	return map[string]Leg{"buy": buy, "sell": sell}, true
}
