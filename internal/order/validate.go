package order

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Client-input errors. They are deliberately generic: the API surfaces a
// uniform message per operation, never field-level detail.
var (
	ErrInvalidPayload      = errors.New("invalid order payload")
	ErrInvalidQuery        = errors.New("invalid query parameters")
	ErrInvalidCancellation = errors.New("invalid cancellation request")

	// ErrNotFound is only returned when placeholder synthesis has been
	// switched off; with the default store configuration lookups never fail.
	ErrNotFound = errors.New("order not found")
)

const maxCancelReasonLength = 256

// CreateRequest is the decoded creation payload handed to the service.
type CreateRequest struct {
	CustomerID      string
	PaymentMethodID string
	Items           []OrderItem
}

// ValidateCreate checks a creation request field by field, short-circuiting
// on the first failure. Every failure maps to the same ErrInvalidPayload.
func ValidateCreate(req CreateRequest) error {
	if req.CustomerID == "" {
		return ErrInvalidPayload
	}
	if req.PaymentMethodID == "" {
		return ErrInvalidPayload
	}
	if len(req.Items) == 0 {
		return ErrInvalidPayload
	}
	for _, it := range req.Items {
		if strings.TrimSpace(it.SKU) == "" {
			return ErrInvalidPayload
		}
		if it.Quantity < 1 {
			return ErrInvalidPayload
		}
		if math.IsNaN(it.UnitPrice) || math.IsInf(it.UnitPrice, 0) {
			return ErrInvalidPayload
		}
	}
	return nil
}

// Filter narrows a listing. All fields are optional and combined with AND.
type Filter struct {
	CustomerID string
	Status     string
	From       string
	To         string
}

// ValidateListQuery checks the optional listing filters: status must name a
// known enum value, from/to must be RFC3339 date-times that parse to real
// instants.
func ValidateListQuery(f Filter) error {
	if f.Status != "" && !ValidStatus(f.Status) {
		return ErrInvalidQuery
	}
	for _, ts := range []string{f.From, f.To} {
		if ts == "" {
			continue
		}
		if _, err := time.Parse(time.RFC3339, ts); err != nil {
			return ErrInvalidQuery
		}
	}
	return nil
}

// ValidateCancel checks the optional cancellation reason.
func ValidateCancel(reason string) error {
	if len(reason) > maxCancelReasonLength {
		return ErrInvalidCancellation
	}
	return nil
}
