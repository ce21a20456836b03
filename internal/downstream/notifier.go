// Package downstream holds the best-effort HTTP clients for the payment
// and shipping collaborators. Calls are attempted exactly once with a
// bounded timeout; any failure is logged and reported as an absent result,
// never as an error. Order creation must not fail because an advisory
// downstream service is unreachable.
package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// The shipping contract wants a destination postal code the order payload
// does not carry yet. A fixed stub value is sent until address capture
// lands upstream.
const placeholderPostalCode = "10001"

// PaymentResult is the decoded payment-authorization response.
type PaymentResult struct {
	AuthorizationID string `json:"authorizationId"`
	Status          string `json:"status"`
}

// ShipmentResult is the decoded shipment-creation response.
type ShipmentResult struct {
	ShipmentID string `json:"shipmentId"`
	Status     string `json:"status"`
}

type paymentRequest struct {
	OrderID         string  `json:"orderId"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	PaymentMethodID string  `json:"paymentMethodId"`
}

type shipmentRequest struct {
	OrderID               string `json:"orderId"`
	DestinationPostalCode string `json:"destinationPostalCode"`
}

// Notifier issues the two downstream calls. The embedded http.Client
// timeout bounds each call so a stalled collaborator cannot stall the
// request handler.
type Notifier struct {
	client          *http.Client
	paymentBaseURL  string
	shippingBaseURL string
}

func NewNotifier(paymentBaseURL, shippingBaseURL string, timeout time.Duration) *Notifier {
	return &Notifier{
		client:          &http.Client{Timeout: timeout},
		paymentBaseURL:  paymentBaseURL,
		shippingBaseURL: shippingBaseURL,
	}
}

// AuthorizePayment posts the authorization request. ok is false on any
// transport error, non-2xx status or undecodable body.
func (n *Notifier) AuthorizePayment(ctx context.Context, orderID string, amount float64, paymentMethodID string) (PaymentResult, bool) {
	var out PaymentResult
	ok := n.post(ctx, n.paymentBaseURL+"/payments/authorize", paymentRequest{
		OrderID:         orderID,
		Amount:          amount,
		Currency:        "USD",
		PaymentMethodID: paymentMethodID,
	}, &out)
	return out, ok
}

// CreateShipment posts the shipment request. Same failure semantics as
// AuthorizePayment.
func (n *Notifier) CreateShipment(ctx context.Context, orderID string) (ShipmentResult, bool) {
	var out ShipmentResult
	ok := n.post(ctx, n.shippingBaseURL+"/shipments", shipmentRequest{
		OrderID:               orderID,
		DestinationPostalCode: placeholderPostalCode,
	}, &out)
	return out, ok
}

func (n *Notifier) post(ctx context.Context, url string, payload, out any) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.WarnContext(ctx, "downstream request marshal failed", "url", url, "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		slog.WarnContext(ctx, "downstream request build failed", "url", url, "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "downstream call failed", "url", url, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.WarnContext(ctx, "downstream call rejected", "url", url, "status", resp.StatusCode)
		return false
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.WarnContext(ctx, "downstream response decode failed", "url", url, "error", fmt.Errorf("decode: %w", err))
		return false
	}
	return true
}
