package order

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validCreateRequest() CreateRequest {
	return CreateRequest{
		CustomerID:      "cust-1",
		PaymentMethodID: "pm-1",
		Items: []OrderItem{
			{SKU: "SKU-1", Quantity: 2, UnitPrice: 9.99},
		},
	}
}

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateRequest)
		wantErr error
	}{
		{"valid", func(r *CreateRequest) {}, nil},
		{"missing customer id", func(r *CreateRequest) { r.CustomerID = "" }, ErrInvalidPayload},
		{"missing payment method", func(r *CreateRequest) { r.PaymentMethodID = "" }, ErrInvalidPayload},
		{"no items", func(r *CreateRequest) { r.Items = nil }, ErrInvalidPayload},
		{"blank sku", func(r *CreateRequest) { r.Items[0].SKU = "   " }, ErrInvalidPayload},
		{"zero quantity", func(r *CreateRequest) { r.Items[0].Quantity = 0 }, ErrInvalidPayload},
		{"negative quantity", func(r *CreateRequest) { r.Items[0].Quantity = -2 }, ErrInvalidPayload},
		{"nan price", func(r *CreateRequest) { r.Items[0].UnitPrice = math.NaN() }, ErrInvalidPayload},
		{"infinite price", func(r *CreateRequest) { r.Items[0].UnitPrice = math.Inf(1) }, ErrInvalidPayload},
		{"negative infinite price", func(r *CreateRequest) { r.Items[0].UnitPrice = math.Inf(-1) }, ErrInvalidPayload},
		{"bad second item", func(r *CreateRequest) {
			r.Items = append(r.Items, OrderItem{SKU: "SKU-2", Quantity: 0, UnitPrice: 1})
		}, ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			err := ValidateCreate(req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateListQuery(t *testing.T) {
	tests := []struct {
		name    string
		filter  Filter
		wantErr error
	}{
		{"empty", Filter{}, nil},
		{"known status", Filter{Status: "CANCELLED"}, nil},
		{"bogus status", Filter{Status: "BOGUS"}, ErrInvalidQuery},
		{"valid range", Filter{From: "2026-01-01T00:00:00Z", To: "2026-12-31T23:59:59Z"}, nil},
		{"fractional seconds and offset", Filter{From: "2026-01-01T00:00:00.123+02:00"}, nil},
		{"date only", Filter{From: "2026-01-01"}, ErrInvalidQuery},
		{"no offset", Filter{To: "2026-01-01T00:00:00"}, ErrInvalidQuery},
		{"impossible instant", Filter{From: "2026-02-30T00:00:00Z"}, ErrInvalidQuery},
		{"garbage", Filter{To: "not-a-date"}, ErrInvalidQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateListQuery(tt.filter)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCancel(t *testing.T) {
	assert.NoError(t, ValidateCancel(""))
	assert.NoError(t, ValidateCancel("changed my mind"))
	assert.NoError(t, ValidateCancel(strings.Repeat("x", 256)))
	assert.ErrorIs(t, ValidateCancel(strings.Repeat("x", 257)), ErrInvalidCancellation)
}
