package lifecycle

import (
	"github.com/LucaLeukert/toastd/internal/model"
	"github.com/LucaLeukert/toastd/internal/queue"
)

// Presenter renders toasts on behalf of the coordinator. Implementations
// report back asynchronously via the coordinator's Shown, Dismissed, and
// ActionPressed methods, which are idempotent against unknown ids.
//
// The coordinator never calls a Presenter while holding its own lock, so an
// implementation may confirm synchronously from within these calls.
type Presenter interface {
	// Present renders a new toast at the given edge and placement, and
	// eventually reports back Shown(id).
	Present(t *model.Toast, edge model.Edge, placement queue.Placement)

	// Update re-renders an already-visible toast in place.
	Update(id string, t *model.Toast)

	// RequestDismiss animates the toast away and eventually reports back
	// Dismissed(id, reason).
	RequestDismiss(id string, reason model.DismissReason)

	// SetCollapsedIndicator is informational: the presenter may render a
	// queue-depth affordance for the edge.
	SetCollapsedIndicator(edge model.Edge, pending int)
}

// EventType classifies public lifecycle events.
type EventType string

const (
	// EventShow fires when the presenter confirms a toast is on screen.
	EventShow EventType = "show"
	// EventDismiss fires when a toast leaves the system, with the reason.
	EventDismiss EventType = "dismiss"
)

// Event is a public lifecycle notification.
type Event struct {
	Type   EventType
	ID     string
	Reason model.DismissReason // set for EventDismiss
	Toast  model.Snapshot
}

// EventCallback receives public lifecycle events. Callbacks run outside the
// coordinator lock and may re-enter the coordinator.
type EventCallback func(Event)
