// Package desktop bridges toasts to a freedesktop notification daemon over
// D-Bus. The core keeps lifecycle authority: server-side expiry is disabled
// and dismissal is driven through CloseNotification, with the daemon's
// NotificationClosed and ActionInvoked signals reported back to the host.
package desktop

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/LucaLeukert/toastd/internal/model"
	"github.com/LucaLeukert/toastd/internal/queue"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = "/org/freedesktop/Notifications"

	signalClosed = busName + ".NotificationClosed"
	signalAction = busName + ".ActionInvoked"
)

// Freedesktop close reason codes.
const (
	closeReasonExpired   uint32 = 1
	closeReasonDismissed uint32 = 2
	closeReasonClosed    uint32 = 3
)

// Host is the slice of the coordinator the presenter reports back to.
type Host interface {
	Shown(id string)
	Dismissed(id string, reason model.DismissReason)
	ActionPressed(id string)
}

// Presenter forwards toasts to org.freedesktop.Notifications.
type Presenter struct {
	appName string
	logger  *slog.Logger

	mu        sync.Mutex
	conn      *dbus.Conn
	host      Host
	byToast   map[string]uint32
	byNotify  map[uint32]string
	requested map[string]model.DismissReason // reason passed to RequestDismiss, applied on confirmation

	signals chan *dbus.Signal
	done    chan struct{}
}

// New creates a desktop presenter announcing itself as appName.
func New(appName string, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Presenter{
		appName:   appName,
		logger:    logger,
		byToast:   make(map[string]uint32),
		byNotify:  make(map[uint32]string),
		requested: make(map[string]model.DismissReason),
	}
}

// SetHost attaches the coordinator the presenter confirms to.
func (p *Presenter) SetHost(h Host) {
	p.mu.Lock()
	p.host = h
	p.mu.Unlock()
}

// Start connects to the session bus and subscribes to close/action signals.
func (p *Presenter) Start() error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(objectPath),
		dbus.WithMatchInterface(busName),
	); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to subscribe to notification signals: %w", err)
	}

	p.mu.Lock()
	p.conn = conn
	p.signals = make(chan *dbus.Signal, 32)
	p.done = make(chan struct{})
	p.mu.Unlock()

	conn.Signal(p.signals)
	go p.listen()

	p.logger.Info("desktop presenter connected", "bus", busName)
	return nil
}

// Stop disconnects from the bus.
func (p *Presenter) Stop() error {
	p.mu.Lock()
	conn := p.conn
	p.conn = nil
	if p.done != nil {
		close(p.done)
		p.done = nil
	}
	p.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

// Present sends a Notify call and confirms the toast as shown once the
// daemon assigns it an id.
func (p *Presenter) Present(t *model.Toast, edge model.Edge, placement queue.Placement) {
	p.mu.Lock()
	conn := p.conn
	host := p.host
	p.mu.Unlock()
	if conn == nil {
		return
	}

	notifyID, err := p.notify(conn, t, 0)
	if err != nil {
		p.logger.Warn("failed to present toast", "id", t.ID, "error", err)
		return
	}

	p.mu.Lock()
	p.byToast[t.ID] = notifyID
	p.byNotify[notifyID] = t.ID
	p.mu.Unlock()

	p.logger.Debug("presented toast", "id", t.ID, "notify_id", notifyID, "edge", edge, "placement", placement)
	if host != nil {
		host.Shown(t.ID)
	}
}

// Update replaces the daemon-side notification in place.
func (p *Presenter) Update(id string, t *model.Toast) {
	p.mu.Lock()
	conn := p.conn
	notifyID, ok := p.byToast[id]
	p.mu.Unlock()
	if conn == nil || !ok {
		return
	}

	if _, err := p.notify(conn, t, notifyID); err != nil {
		p.logger.Warn("failed to update toast", "id", id, "error", err)
	}
}

// RequestDismiss asks the daemon to close the notification. The confirmation
// arrives via the NotificationClosed signal.
func (p *Presenter) RequestDismiss(id string, reason model.DismissReason) {
	p.mu.Lock()
	conn := p.conn
	notifyID, ok := p.byToast[id]
	if ok {
		p.requested[id] = reason
	}
	p.mu.Unlock()
	if conn == nil || !ok {
		return
	}

	call := conn.Object(busName, objectPath).Call(busName+".CloseNotification", 0, notifyID)
	if call.Err != nil {
		p.logger.Warn("failed to close notification", "id", id, "error", call.Err)
	}
}

// SetCollapsedIndicator is informational only; desktop daemons render their
// own stacking.
func (p *Presenter) SetCollapsedIndicator(edge model.Edge, pending int) {
	p.logger.Debug("pending queue depth", "edge", edge, "pending", pending)
}

// notify issues the Notify call and returns the daemon-assigned id.
// Server-side expiry is disabled (timeout 0): the core scheduler decides
// when a toast dies.
func (p *Presenter) notify(conn *dbus.Conn, t *model.Toast, replaces uint32) (uint32, error) {
	var actions []string
	if t.ActionLabel != "" {
		actions = []string{"default", t.ActionLabel}
	}

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgencyFor(t.Importance)),
	}
	if t.Motion == model.MotionReduced {
		hints["suppress-sound"] = dbus.MakeVariant(true)
	}

	var notifyID uint32
	call := conn.Object(busName, objectPath).Call(busName+".Notify", 0,
		p.appName, replaces, "", t.Title, t.Message, actions, hints, int32(0))
	if call.Err != nil {
		return 0, call.Err
	}
	if err := call.Store(&notifyID); err != nil {
		return 0, err
	}
	return notifyID, nil
}

// listen dispatches daemon signals back to the host.
func (p *Presenter) listen() {
	p.mu.Lock()
	signals := p.signals
	done := p.done
	p.mu.Unlock()

	for {
		select {
		case sig, ok := <-signals:
			if !ok {
				return
			}
			p.handleSignal(sig)
		case <-done:
			return
		}
	}
}

func (p *Presenter) handleSignal(sig *dbus.Signal) {
	switch sig.Name {
	case signalClosed:
		if len(sig.Body) < 2 {
			return
		}
		notifyID, ok1 := sig.Body[0].(uint32)
		code, ok2 := sig.Body[1].(uint32)
		if !ok1 || !ok2 {
			return
		}
		p.notificationClosed(notifyID, code)

	case signalAction:
		if len(sig.Body) < 2 {
			return
		}
		notifyID, ok := sig.Body[0].(uint32)
		if !ok {
			return
		}
		p.mu.Lock()
		id, known := p.byNotify[notifyID]
		host := p.host
		p.mu.Unlock()
		if known && host != nil {
			host.ActionPressed(id)
		}
	}
}

func (p *Presenter) notificationClosed(notifyID, code uint32) {
	p.mu.Lock()
	id, known := p.byNotify[notifyID]
	if !known {
		p.mu.Unlock()
		return
	}
	delete(p.byNotify, notifyID)
	delete(p.byToast, id)
	reason, hadRequest := p.requested[id]
	delete(p.requested, id)
	host := p.host
	p.mu.Unlock()

	if !hadRequest {
		// Closed daemon-side without a core request (user click, daemon
		// expiry). Map the freedesktop code onto a core reason.
		switch code {
		case closeReasonExpired:
			reason = model.ReasonTimeout
		default:
			reason = model.ReasonProgrammatic
		}
	}

	if host != nil {
		host.Dismissed(id, reason)
	}
}

// urgencyFor maps importance onto the freedesktop urgency byte.
func urgencyFor(imp model.Importance) byte {
	switch imp {
	case model.ImportanceLow:
		return 0
	case model.ImportanceHigh:
		return 2
	default:
		return 1
	}
}
