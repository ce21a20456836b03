// Package order holds the order aggregate, its validation rules, the
// in-memory store and the intake service that orchestrates creation,
// lookup, listing and cancellation.
package order

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusConfirmed      Status = "CONFIRMED"
	StatusShipped        Status = "SHIPPED"
	StatusCancelled      Status = "CANCELLED"
)

// ValidStatus reports whether s names one of the known order statuses.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPendingPayment, StatusConfirmed, StatusShipped, StatusCancelled:
		return true
	}
	return false
}

// OrderItem is a single line of an order. Immutable once attached.
type OrderItem struct {
	SKU       string  `json:"sku"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// Order is the aggregate for a customer purchase request. TotalAmount is
// fixed at construction time and never recomputed.
type Order struct {
	ID           string      `json:"id"`
	CustomerID   string      `json:"customerId"`
	Status       Status      `json:"status"`
	Items        []OrderItem `json:"items"`
	TotalAmount  float64     `json:"totalAmount"`
	CreatedAt    time.Time   `json:"createdAt"`
	CancelledAt  *time.Time  `json:"cancelledAt,omitempty"`
	CancelReason string      `json:"cancelReason,omitempty"`
}

// New builds a fresh order from a validated creation request. The total is
// the exact sum of the item subtotals; the status always starts at
// PENDING_PAYMENT. Pure apart from the clock.
func New(id, customerID string, items []OrderItem) Order {
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return Order{
		ID:          id,
		CustomerID:  customerID,
		Status:      StatusPendingPayment,
		Items:       items,
		TotalAmount: total,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

// Cancelled returns a copy of o in the CANCELLED state. There is no guard
// on the prior status: cancellation is idempotent-by-overwrite, so
// cancelling an already shipped or cancelled order succeeds.
func (o Order) Cancelled(reason string, at time.Time) Order {
	at = at.UTC().Truncate(time.Second)
	o.Status = StatusCancelled
	o.CancelledAt = &at
	o.CancelReason = reason
	return o
}

// CreatedAtRFC3339 is the canonical string form of the creation instant.
// Truncated to whole seconds in UTC it is fixed-width, so lexicographic
// comparison matches chronological order (see Store.List).
func (o Order) CreatedAtRFC3339() string {
	return o.CreatedAt.UTC().Format(time.RFC3339)
}

// Placeholder synthesizes a stand-in order for lookups that would otherwise
// come back empty; lookups never fail in this API. An empty id gets a
// freshly generated one.
func Placeholder(id string) Order {
	if id == "" {
		id = uuid.NewString()
	}
	item := OrderItem{SKU: "SAMPLE-SKU", Quantity: 1, UnitPrice: 9.99}
	return Order{
		ID:          id,
		CustomerID:  "sample-customer",
		Status:      StatusConfirmed,
		Items:       []OrderItem{item},
		TotalAmount: item.Subtotal(),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}
