package order

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_InsertAndGet(t *testing.T) {
	s := NewStore()
	o := New("order-1", "cust-1", []OrderItem{{SKU: "SKU-1", Quantity: 1, UnitPrice: 5}})

	s.Insert(o.ID, o)

	got, ok := s.Get("order-1")
	require.True(t, ok)
	assert.Equal(t, o, got)
}

func TestStore_InsertOverwrites(t *testing.T) {
	s := NewStore()
	o := New("order-1", "cust-1", []OrderItem{{SKU: "SKU-1", Quantity: 1, UnitPrice: 5}})
	s.Insert(o.ID, o)

	cancelled := o.Cancelled("", time.Now())
	s.Insert(cancelled.ID, cancelled)

	got, ok := s.Get("order-1")
	require.True(t, ok)
	assert.Equal(t, StatusCancelled, got.Status)
}

func TestStore_GetUnknown_SynthesizesPlaceholder(t *testing.T) {
	s := NewStore()

	got, ok := s.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, "missing", got.ID)
	assert.Equal(t, StatusConfirmed, got.Status)
}

func TestStore_GetUnknown_WithoutPlaceholders(t *testing.T) {
	s := NewStore(WithoutPlaceholders())

	got, ok := s.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, got.ID)
	assert.False(t, s.Synthesizes())
}

func TestStore_ListEmpty_SynthesizesPlaceholder(t *testing.T) {
	s := NewStore()

	orders := s.List(Filter{})
	require.Len(t, orders, 1)
	assert.Equal(t, StatusConfirmed, orders[0].Status)
	assert.NotEmpty(t, orders[0].ID)
}

func TestStore_ListEmpty_WithoutPlaceholders(t *testing.T) {
	s := NewStore(WithoutPlaceholders())
	assert.Empty(t, s.List(Filter{}))
}

func TestStore_ListFilters(t *testing.T) {
	s := NewStore()

	a := New("order-a", "c1", []OrderItem{{SKU: "SKU-1", Quantity: 1, UnitPrice: 5}})
	a.Status = StatusConfirmed
	b := New("order-b", "c2", []OrderItem{{SKU: "SKU-2", Quantity: 1, UnitPrice: 5}})
	b = b.Cancelled("", time.Now())
	s.Insert(a.ID, a)
	s.Insert(b.ID, b)

	byCustomer := s.List(Filter{CustomerID: "c1"})
	require.Len(t, byCustomer, 1)
	assert.Equal(t, "order-a", byCustomer[0].ID)

	byStatus := s.List(Filter{Status: "CANCELLED"})
	require.Len(t, byStatus, 1)
	assert.Equal(t, "order-b", byStatus[0].ID)

	both := s.List(Filter{CustomerID: "c1", Status: "CANCELLED"})
	assert.Empty(t, both)
}

func TestStore_ListTimeRange(t *testing.T) {
	s := NewStore()

	early := New("order-early", "c1", []OrderItem{{SKU: "SKU-1", Quantity: 1, UnitPrice: 5}})
	early.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := New("order-late", "c1", []OrderItem{{SKU: "SKU-1", Quantity: 1, UnitPrice: 5}})
	late.CreatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	s.Insert(early.ID, early)
	s.Insert(late.ID, late)

	from := s.List(Filter{From: "2026-03-01T00:00:00Z"})
	require.Len(t, from, 1)
	assert.Equal(t, "order-late", from[0].ID)

	to := s.List(Filter{To: "2026-03-01T00:00:00Z"})
	require.Len(t, to, 1)
	assert.Equal(t, "order-early", to[0].ID)

	all := s.List(Filter{From: "2026-01-01T00:00:00Z", To: "2026-12-31T00:00:00Z"})
	require.Len(t, all, 2)
	// Sorted by creation time.
	assert.Equal(t, "order-early", all[0].ID)
	assert.Equal(t, "order-late", all[1].ID)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("order-%d", i)
			o := New(id, "c1", []OrderItem{{SKU: "SKU-1", Quantity: 1, UnitPrice: 1}})
			s.Insert(id, o)
			s.Get(id)
			s.List(Filter{CustomerID: "c1"})
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.List(Filter{}), 50)
}
