// Package notify delivers countdown events (threshold warnings, refresh
// failures, informational notices) to one or more sinks.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/smokyabdulrahman/vakit/internal/prayer"
)

// Kind classifies a notification.
type Kind string

const (
	KindWarning Kind = "warning"
	KindFailure Kind = "failure"
	KindInfo    Kind = "info"
)

// Notification is one user-visible event.
type Notification struct {
	ID        string       `json:"id"`
	Kind      Kind         `json:"kind"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	Slot      *prayer.Slot `json:"slot,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// New stamps a notification with a fresh id.
func New(kind Kind, title, body string, at time.Time) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: at,
	}
}

// FromWarning builds the threshold notification: the prayer name as the
// title and "<n> minutes left!" as the body.
func FromWarning(w prayer.Warning, at time.Time) Notification {
	n := New(KindWarning, w.Title(), w.Message(), at)
	slot := w.Slot
	n.Slot = &slot
	return n
}

// Text renders the notification as a single line.
func (n Notification) Text() string {
	if n.Title == "" {
		return n.Body
	}
	if n.Body == "" {
		return n.Title
	}
	return n.Title + ": " + n.Body
}

// Notifier delivers notifications. Implementations must be safe to call
// from one goroutine at a time; the countdown driver never calls them
// concurrently.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, n Notification) error

func (f Func) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// Multi fans a notification out to every sink. A failing sink does not stop
// the others; the errors are joined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every notification.
var Discard Notifier = Func(func(context.Context, Notification) error { return nil })
