// Package analytics publishes order-lifecycle notification events to a
// RabbitMQ topic exchange. Publishing is strictly best-effort: one attempt,
// a hard deadline, and no error ever reaches the order path.
package analytics

import "github.com/google/uuid"

// Priority classifies a notification event.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

// Event is the notification body delivered to the broker. Created
// transiently per lifecycle transition; never stored.
type Event struct {
	// NotificationID is unique per publish attempt.
	NotificationID string `json:"notificationId"`
	// RequestID correlates the event back to an order id.
	RequestID string   `json:"requestId"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Priority  Priority `json:"priority"`
}

// NewEvent builds an event with a freshly generated notification id.
func NewEvent(requestID, title, body string, priority Priority) Event {
	return Event{
		NotificationID: uuid.NewString(),
		RequestID:      requestID,
		Title:          title,
		Body:           body,
		Priority:       priority,
	}
}
