package order

import (
	"sort"
	"sync"
)

// Store is the canonical in-memory order table. A single RWMutex guards the
// map; each request touches exactly one order id, so no cross-key
// transactions are needed. Contents are volatile across restarts.
type Store struct {
	mu          sync.RWMutex
	orders      map[string]Order
	placeholder bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithoutPlaceholders disables the synthesized-order fallback, turning
// unknown-id lookups into real misses. The default (placeholders on)
// matches the documented API behavior where lookups never fail.
func WithoutPlaceholders() StoreOption {
	return func(s *Store) { s.placeholder = false }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		orders:      make(map[string]Order),
		placeholder: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesizes reports whether missing lookups produce placeholder orders.
func (s *Store) Synthesizes() bool {
	return s.placeholder
}

// Insert stores the order under id, replacing any prior value. Both
// creation and cancellation go through here.
func (s *Store) Insert(id string, o Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[id] = o
}

// Get returns the stored order for id. When the id is unknown and
// placeholder synthesis is enabled, a stand-in order is returned instead;
// ok still reports false so callers can tell real data apart.
func (s *Store) Get(id string) (Order, bool) {
	s.mu.RLock()
	o, ok := s.orders[id]
	s.mu.RUnlock()
	if !ok && s.placeholder {
		return Placeholder(id), false
	}
	return o, ok
}

// List returns all orders matching the filter, sorted by creation time.
// From/To are compared lexicographically against the canonical RFC3339
// timestamp string, which sorts identically to chronological order. An
// empty table yields a single synthesized order when placeholders are on.
func (s *Store) List(f Filter) []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.orders) == 0 {
		if s.placeholder {
			return []Order{Placeholder("")}
		}
		return []Order{}
	}

	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		ts := o.CreatedAtRFC3339()
		if f.From != "" && ts < f.From {
			continue
		}
		if f.To != "" && ts > f.To {
			continue
		}
		out = append(out, o)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
