package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pcastano/order-intake/internal/order"
)

// Error messages are fixed per operation; the validator deliberately does
// not say which field failed.
const (
	msgInvalidPayload      = "Invalid order payload"
	msgInvalidQuery        = "Invalid query parameters"
	msgInvalidCancellation = "Invalid cancellation request"
	msgNotFound            = "Order not found"
)

// OrderService is the port the handler drives. Satisfied by *order.Service.
type OrderService interface {
	Create(ctx context.Context, req order.CreateRequest) (order.Order, error)
	Get(ctx context.Context, id string) (order.Order, error)
	List(ctx context.Context, f order.Filter) ([]order.Order, error)
	Cancel(ctx context.Context, id, reason string) (order.Order, error)
}

// Handler handles incoming HTTP requests for the order-intake surface.
type Handler struct {
	orders OrderService
}

func NewHandler(orders OrderService) *Handler {
	return &Handler{orders: orders}
}

// CreateOrder accepts the creation payload and returns 201 with the full
// order, or 400 with a generic message. There is no 5xx path: downstream
// failures are tolerated inside the service.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	items := make([]order.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, order.OrderItem{
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	o, err := h.orders.Create(r.Context(), order.CreateRequest{
		CustomerID:      req.CustomerID,
		PaymentMethodID: req.PaymentMethodID,
		Items:           items,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	writeJSON(w, http.StatusCreated, o)
}

// GetOrder returns 200 for any id: unknown ids come back as a synthesized
// placeholder by default, never 404.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderID")

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		// Only reachable when placeholder synthesis is switched off.
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// ListOrders returns the filtered order list, or 400 on bad filters.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := order.Filter{
		CustomerID: q.Get("customerId"),
		Status:     q.Get("status"),
		From:       q.Get("from"),
		To:         q.Get("to"),
	}

	orders, err := h.orders.List(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidQuery)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// CancelOrder cancels unconditionally and returns the cancelled order. The
// body is optional; an empty body means no reason.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderID")

	var req CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, msgInvalidCancellation)
		return
	}

	o, err := h.orders.Cancel(r.Context(), id, req.Reason)
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, msgInvalidCancellation)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// Healthz is a liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
