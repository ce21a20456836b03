package downstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizePayment(t *testing.T) {
	var got paymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payments/authorize", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(PaymentResult{AuthorizationID: "auth-42", Status: "AUTHORIZED"})
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, srv.URL, time.Second)

	res, ok := n.AuthorizePayment(context.Background(), "order-1", 19.98, "pm-1")
	require.True(t, ok)
	assert.Equal(t, "auth-42", res.AuthorizationID)

	assert.Equal(t, "order-1", got.OrderID)
	assert.InDelta(t, 19.98, got.Amount, 1e-9)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, "pm-1", got.PaymentMethodID)
}

func TestCreateShipment(t *testing.T) {
	var got shipmentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shipments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ShipmentResult{ShipmentID: "ship-42", Status: "CREATED"})
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, srv.URL, time.Second)

	res, ok := n.CreateShipment(context.Background(), "order-1")
	require.True(t, ok)
	assert.Equal(t, "ship-42", res.ShipmentID)

	assert.Equal(t, "order-1", got.OrderID)
	assert.Equal(t, placeholderPostalCode, got.DestinationPostalCode)
}

func TestNotifier_Unreachable(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	n := NewNotifier(srv.URL, srv.URL, 200*time.Millisecond)

	_, ok := n.AuthorizePayment(context.Background(), "order-1", 10, "pm-1")
	assert.False(t, ok)
	_, ok = n.CreateShipment(context.Background(), "order-1")
	assert.False(t, ok)
}

func TestNotifier_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, srv.URL, time.Second)

	_, ok := n.AuthorizePayment(context.Background(), "order-1", 10, "pm-1")
	assert.False(t, ok)
}

func TestNotifier_BadResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, srv.URL, time.Second)

	_, ok := n.CreateShipment(context.Background(), "order-1")
	assert.False(t, ok)
}

func TestNotifier_SlowCollaboratorBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, srv.URL, 50*time.Millisecond)

	start := time.Now()
	_, ok := n.AuthorizePayment(context.Background(), "order-1", 10, "pm-1")
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}
