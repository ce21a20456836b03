package order

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pcastano/order-intake/internal/analytics"
	"github.com/pcastano/order-intake/internal/downstream"
	"github.com/pcastano/order-intake/internal/orderlog"
	"github.com/pcastano/order-intake/internal/pkg/cache"
)

const cacheTTL = 5 * time.Minute

// DependencyNotifier issues the best-effort payment and shipping calls.
// ok=false means the call failed; the service discards failures
// intentionally rather than by omission.
type DependencyNotifier interface {
	AuthorizePayment(ctx context.Context, orderID string, amount float64, paymentMethodID string) (downstream.PaymentResult, bool)
	CreateShipment(ctx context.Context, orderID string) (downstream.ShipmentResult, bool)
}

var _ DependencyNotifier = (*downstream.Notifier)(nil)

// EventPublisher delivers analytics events. Implementations must be safe to
// call from a detached goroutine and must bound their own lifetime.
type EventPublisher interface {
	Publish(ctx context.Context, evt analytics.Event)
}

// Service orchestrates the order-intake pipeline: validation, total
// computation, best-effort downstream fan-out, store insert and the
// detached analytics publish. The only caller-visible failures are
// input-validation errors; downstream and side-channel failures are
// operational concerns, never surfaced.
type Service struct {
	store     *Store
	notifier  DependencyNotifier
	publisher EventPublisher
	cache     cache.Cache         // nil-safe: caching skipped if nil
	audit     orderlog.Repository // nil-safe: auditing skipped if nil
}

func NewService(store *Store, notifier DependencyNotifier, publisher EventPublisher, c cache.Cache, audit orderlog.Repository) *Service {
	return &Service{
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		cache:     c,
		audit:     audit,
	}
}

// Create validates the payload, builds the order, notifies the two
// collaborators best-effort and sequentially (payment first), inserts into
// the store and fires the detached analytics publish. Validation failures
// are terminal and leave no side effects.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Order, error) {
	if err := ValidateCreate(req); err != nil {
		return Order{}, err
	}

	o := New(uuid.NewString(), req.CustomerID, req.Items)

	if s.notifier != nil {
		if res, ok := s.notifier.AuthorizePayment(ctx, o.ID, o.TotalAmount, req.PaymentMethodID); ok {
			slog.InfoContext(ctx, "payment authorization accepted", "order_id", o.ID, "authorization_id", res.AuthorizationID)
		} else {
			slog.WarnContext(ctx, "payment authorization unavailable, continuing", "order_id", o.ID)
		}
		if res, ok := s.notifier.CreateShipment(ctx, o.ID); ok {
			slog.InfoContext(ctx, "shipment created", "order_id", o.ID, "shipment_id", res.ShipmentID)
		} else {
			slog.WarnContext(ctx, "shipment creation unavailable, continuing", "order_id", o.ID)
		}
	}

	s.store.Insert(o.ID, o)
	s.cacheSet(ctx, o)
	s.appendAudit(ctx, o.ID, orderlog.EventCreated, string(o.Status), "")

	s.publishDetached(ctx, analytics.NewEvent(
		o.ID,
		"Order received",
		fmt.Sprintf("Order %s for customer %s totalling %.2f USD", o.ID, o.CustomerID, o.TotalAmount),
		analytics.PriorityNormal,
	))

	slog.InfoContext(ctx, "order created", "order_id", o.ID, "customer_id", o.CustomerID, "total", o.TotalAmount)
	return o, nil
}

// Get returns the order for id. Unknown ids yield a synthesized CONFIRMED
// placeholder rather than an error unless the store was configured with
// WithoutPlaceholders.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	if o, ok := s.cacheGet(ctx, id); ok {
		return o, nil
	}

	o, ok := s.store.Get(id)
	if !ok {
		if !s.store.Synthesizes() {
			return Order{}, ErrNotFound
		}
		return o, nil
	}

	s.cacheSet(ctx, o)
	return o, nil
}

// List validates the filters and returns the matching orders.
func (s *Service) List(ctx context.Context, f Filter) ([]Order, error) {
	if err := ValidateListQuery(f); err != nil {
		return nil, err
	}
	return s.store.List(f), nil
}

// Cancel moves the order to CANCELLED unconditionally: no status-transition
// guard, idempotent by overwrite. Unknown ids go through the same
// placeholder policy as Get, so cancelling a never-created order succeeds.
func (s *Service) Cancel(ctx context.Context, id, reason string) (Order, error) {
	if err := ValidateCancel(reason); err != nil {
		return Order{}, err
	}

	o, ok := s.store.Get(id)
	if !ok && !s.store.Synthesizes() {
		return Order{}, ErrNotFound
	}

	cancelled := o.Cancelled(reason, time.Now())
	s.store.Insert(cancelled.ID, cancelled)
	s.cacheDelete(ctx, cancelled.ID)
	s.appendAudit(ctx, cancelled.ID, orderlog.EventCancelled, string(cancelled.Status), reason)

	s.publishDetached(ctx, analytics.NewEvent(
		cancelled.ID,
		"Order cancelled",
		fmt.Sprintf("Order %s was cancelled: %s", cancelled.ID, reasonOrDefault(reason)),
		analytics.PriorityHigh,
	))

	slog.InfoContext(ctx, "order cancelled", "order_id", cancelled.ID, "previously_known", ok)
	return cancelled, nil
}

// publishDetached fires the analytics publish on its own goroutine. The
// context is detached from the request so sending the HTTP response does
// not cancel the publish; the publisher bounds its own lifetime.
func (s *Service) publishDetached(ctx context.Context, evt analytics.Event) {
	if s.publisher == nil {
		return
	}
	go s.publisher.Publish(context.WithoutCancel(ctx), evt)
}

func (s *Service) appendAudit(ctx context.Context, orderID string, event orderlog.Event, status, reason string) {
	if s.audit == nil {
		return
	}
	entry := orderlog.NewEntry(ctx, orderID, event, status, reason)
	if err := s.audit.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "order audit append failed", "order_id", orderID, "error", err)
	}
}

func (s *Service) cacheGet(ctx context.Context, id string) (Order, bool) {
	if s.cache == nil {
		return Order{}, false
	}
	raw, err := s.cache.Get(ctx, s.cache.GenerateKey("order", id))
	if err != nil || raw == "" {
		return Order{}, false
	}
	var o Order
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return Order{}, false
	}
	return o, true
}

func (s *Service) cacheSet(ctx context.Context, o Order) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(o)
	if err != nil {
		return
	}
	key := s.cache.GenerateKey("order", o.ID)
	if err := s.cache.Set(ctx, key, string(raw), cacheTTL); err != nil {
		slog.WarnContext(ctx, "order cache set failed", "order_id", o.ID, "error", err)
	}
}

func (s *Service) cacheDelete(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cache.GenerateKey("order", id)); err != nil {
		slog.WarnContext(ctx, "order cache delete failed", "order_id", id, "error", err)
	}
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return "no reason given"
	}
	return reason
}
