// Package lifecycle implements the toast lifecycle coordinator: the public
// show/transition/dismiss surface, queue arbitration, deduplication, and the
// auto-dismiss scheduler.
package lifecycle

import (
	"log/slog"
	"sync"
	"time"

	"github.com/LucaLeukert/toastd/internal/config"
	"github.com/LucaLeukert/toastd/internal/dedupe"
	"github.com/LucaLeukert/toastd/internal/model"
	"github.com/LucaLeukert/toastd/internal/queue"
	"github.com/LucaLeukert/toastd/internal/registry"
)

// Coordinator orchestrates the toast lifecycle. It owns all mutable state
// (registry, queues, dedupe cache, config store, timers) behind a single
// mutex: every public operation, timer firing, and presenter confirmation is
// serialized through it, so concurrent callers observe a total order.
//
// Presenter commands and public events are collected while the lock is held
// and delivered after it is released, so presenters and event callbacks may
// re-enter the coordinator synchronously.
type Coordinator struct {
	mu     sync.Mutex
	logger *slog.Logger

	cfg    *config.Store
	reg    *registry.Registry
	queues *queue.Manager
	cache  *dedupe.Cache
	sched  *scheduler

	presenter Presenter
	onEvent   EventCallback

	// draining disables promotion between DismissAll and the presenter's
	// confirmation that no visible toasts remain.
	draining bool
}

// New creates a Coordinator with the given defaults and presenter. A nil cfg
// uses config.Default(). A nil presenter puts the coordinator into
// unsupported mode: every operation degrades to a deterministic no-op that
// still returns a valid id.
func New(cfg *config.Config, presenter Presenter, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	store := config.NewStore(cfg)
	current := store.Current()

	reg := registry.New()
	return &Coordinator{
		logger: logger,
		cfg:    store,
		reg:    reg,
		queues: queue.NewManager(reg, queue.Limits{
			MaxVisible: current.MaxVisible,
			MaxQueue:   current.MaxQueue,
			DropPolicy: current.DropPolicy,
		}),
		cache:     dedupe.New(dedupe.DefaultCapacity),
		sched:     newScheduler(),
		presenter: presenter,
	}
}

// IsSupported reports whether a presenter is attached. When false, every
// operation is a no-op that still returns a valid id.
func (c *Coordinator) IsSupported() bool {
	return c.presenter != nil
}

// SetEventCallback sets the callback for public show/dismiss events.
func (c *Coordinator) SetEventCallback(cb EventCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvent = cb
}

// Config returns a copy of the live configuration defaults.
func (c *Coordinator) Config() config.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Current()
}

// Show creates a toast and returns its id. Field resolution precedence is
// explicit option > configured default > hard-coded default; the duration
// for a loading toast defaults to infinite. A dedupe hit short-circuits
// before any mutation and returns the pre-existing id.
func (c *Coordinator) Show(opts model.Options) string {
	if !c.IsSupported() {
		return ensureID(opts.ID)
	}

	c.mu.Lock()
	cfg := c.cfg.Current()
	t, handler := resolve(opts, cfg)

	if existing, hit := c.cache.LookupOrReserve(t.Key(), t.ID, cfg.DedupeWindow.Duration()); hit {
		c.mu.Unlock()
		c.logger.Debug("duplicate show suppressed", "key", t.Key(), "existing_id", existing)
		return existing
	}

	c.reg.Add(t, handler)
	res := c.queues.Enqueue(t)

	var fx []func()
	switch res.Status {
	case queue.StatusInserted:
		c.scheduleLocked(t)
		fx = append(fx, c.presentEffect(t, res.Placement))
		c.logger.Debug("toast visible", "id", t.ID, "edge", t.Edge, "variant", t.Variant)

	case queue.StatusQueued:
		if res.Evicted != nil {
			c.cache.Refresh(res.Evicted.ID)
			fx = append(fx, c.dismissEventEffect(res.Evicted, model.ReasonReplaced))
		}
		fx = append(fx, c.indicatorEffect(t.Edge))
		c.logger.Debug("toast queued", "id", t.ID, "edge", t.Edge, "depth", c.queues.PendingLen(t.Edge))

	case queue.StatusDropped:
		fx = append(fx, c.dismissEventEffect(t, model.ReasonReplaced))
		c.logger.Debug("toast dropped", "id", t.ID, "edge", t.Edge, "policy", c.queues.Limits().DropPolicy)
	}
	c.mu.Unlock()

	run(fx)
	return t.ID
}

// Transition merges the provided fields into an existing toast. Unknown ids
// are a silent no-op. The dismiss timer is canceled and rescheduled from the
// new duration; the presenter is notified only when the toast is currently
// visible (pending records are updated in place).
func (c *Coordinator) Transition(id string, u model.Update) string {
	if !c.IsSupported() {
		return id
	}

	c.mu.Lock()
	t := c.reg.Get(id)
	if t == nil {
		c.mu.Unlock()
		return id
	}

	merge(t, u)
	if u.Action.IsClear() {
		t.ActionLabel = ""
		c.reg.SetAction(id, nil)
	} else if a, ok := u.Action.Replacement(); ok {
		t.ActionLabel = a.Label
		c.reg.SetAction(id, a.Handler)
	}

	var fx []func()
	if c.queues.IsVisible(id) {
		c.scheduleLocked(t)
		clone := t.Clone()
		fx = append(fx, func() { c.presenter.Update(id, clone) })
	}
	c.mu.Unlock()

	run(fx)
	return id
}

// Update is an alias for Transition.
func (c *Coordinator) Update(id string, u model.Update) string {
	return c.Transition(id, u)
}

// Dismiss removes a toast. With an empty id the fixed tie-break applies:
// oldest visible on top, else newest visible on bottom, else the front of
// the combined pending sequence. Pending matches are removed without ever
// touching the presenter; visible matches are forwarded as a dismiss request
// and finalized when the presenter confirms.
func (c *Coordinator) Dismiss(id string) {
	if !c.IsSupported() {
		return
	}

	c.mu.Lock()
	fx := c.dismissLocked(id, model.ReasonProgrammatic)
	c.mu.Unlock()
	run(fx)
}

// dismissLocked resolves and starts a dismissal. Caller must hold the lock.
func (c *Coordinator) dismissLocked(id string, reason model.DismissReason) []func() {
	tgt := c.queues.DismissTarget(id)
	switch tgt.Kind {
	case queue.TargetVisible:
		vid := tgt.ID
		return []func(){func() { c.presenter.RequestDismiss(vid, reason) }}

	case queue.TargetPending:
		c.cache.Refresh(tgt.ID)
		return []func(){
			c.dismissEventEffect(tgt.Record, reason),
			c.indicatorEffect(tgt.Record.Edge),
		}
	}
	return nil
}

// DismissAll drains both pending queues synchronously and requests
// presenter-side dismissal of every visible toast. Promotion stays disabled
// until the presenter confirms the last visible dismissal.
func (c *Coordinator) DismissAll() {
	if !c.IsSupported() {
		return
	}

	c.mu.Lock()
	c.draining = true

	var fx []func()
	for _, t := range c.queues.DrainPending() {
		c.cache.Refresh(t.ID)
		fx = append(fx, c.dismissEventEffect(t, model.ReasonProgrammatic))
	}
	for _, e := range model.Edges() {
		fx = append(fx, c.indicatorEffect(e))
	}

	visible := c.queues.AllVisibleIDs()
	if len(visible) == 0 {
		c.draining = false
	}
	for _, id := range visible {
		vid := id
		fx = append(fx, func() { c.presenter.RequestDismiss(vid, model.ReasonProgrammatic) })
	}
	c.mu.Unlock()

	c.logger.Debug("dismiss all", "visible", len(visible))
	run(fx)
}

// Configure merges a partial configuration and applies the new capacity
// limits, emitting a "replaced" dismiss event for every pending record the
// trim evicts.
func (c *Coordinator) Configure(p config.Patch) {
	if !c.IsSupported() {
		return
	}

	c.mu.Lock()
	cfg := c.cfg.Apply(p)

	evicted := c.queues.Reconfigure(queue.Limits{
		MaxVisible: cfg.MaxVisible,
		MaxQueue:   cfg.MaxQueue,
		DropPolicy: cfg.DropPolicy,
	})

	var fx []func()
	for _, t := range evicted {
		c.cache.Refresh(t.ID)
		fx = append(fx, c.dismissEventEffect(t, model.ReasonReplaced))
	}
	if cfg.DedupeWindow.Duration() <= 0 {
		c.cache.Clear()
	}
	for _, e := range model.Edges() {
		fx = append(fx, c.indicatorEffect(e))
	}
	c.mu.Unlock()

	c.logger.Debug("reconfigured",
		"max_visible", cfg.MaxVisible,
		"max_queue", cfg.MaxQueue,
		"drop_policy", cfg.DropPolicy,
		"evicted", len(evicted),
	)
	run(fx)
}

// Shown is the presenter's confirmation that a toast is on screen. It
// schedules the dismiss timer if one is not already armed and emits the
// public show event. Idempotent against unknown ids.
func (c *Coordinator) Shown(id string) {
	if !c.IsSupported() {
		return
	}

	c.mu.Lock()
	if !c.queues.IsVisible(id) {
		c.mu.Unlock()
		return
	}
	t := c.reg.Get(id)
	if !t.Infinite() && !c.sched.scheduled(id) {
		c.scheduleLocked(t)
	}
	fx := []func(){c.eventEffect(Event{Type: EventShow, ID: id, Toast: t.Snapshot()})}
	c.mu.Unlock()

	run(fx)
}

// Dismissed is the presenter's confirmation that a toast left the screen.
// It finalizes the removal, promotes the pending front (unless draining),
// and clears the draining flag once no visible toasts remain. Idempotent
// against unknown ids.
func (c *Coordinator) Dismissed(id string, reason model.DismissReason) {
	if !c.IsSupported() {
		return
	}

	c.mu.Lock()
	if !c.queues.IsVisible(id) {
		c.mu.Unlock()
		return
	}

	c.sched.cancel(id)
	removed, promoted := c.queues.CompleteVisibleDismiss(id, !c.draining)
	c.cache.Refresh(id)

	var fx []func()
	if removed != nil {
		fx = append(fx, c.dismissEventEffect(removed, reason))
	}
	if promoted != nil {
		c.scheduleLocked(promoted.Record)
		fx = append(fx, c.presentEffect(promoted.Record, promoted.Placement))
		fx = append(fx, c.indicatorEffect(promoted.Edge))
	}
	if c.draining && c.queues.VisibleTotal() == 0 {
		c.draining = false
	}
	c.mu.Unlock()

	run(fx)
}

// ActionPressed is the presenter's report of an action press. It invokes the
// registered handler with a snapshot of the toast, then requests dismissal.
// Idempotent against unknown ids.
func (c *Coordinator) ActionPressed(id string) {
	if !c.IsSupported() {
		return
	}

	c.mu.Lock()
	t := c.reg.Get(id)
	if t == nil {
		c.mu.Unlock()
		return
	}
	handler := c.reg.Action(id)
	snap := t.Snapshot()
	c.mu.Unlock()

	if handler != nil {
		handler(snap)
	}
	c.presenter.RequestDismiss(id, model.ReasonProgrammatic)
}

// Close cancels every armed auto-dismiss timer. Meant for process shutdown;
// the coordinator must not be used afterwards.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sched.cancelAll()
}

// timerFired is the auto-dismiss path. It re-acquires the serialization
// point and no-ops when the timer was superseded or the toast is already
// gone.
func (c *Coordinator) timerFired(id string, h *timerHandle) {
	c.mu.Lock()
	if !c.sched.owns(id, h) {
		c.mu.Unlock()
		return
	}
	c.sched.remove(id)

	var fx []func()
	if c.queues.IsVisible(id) {
		fx = append(fx, func() { c.presenter.RequestDismiss(id, model.ReasonTimeout) })
	}
	c.mu.Unlock()

	run(fx)
}

// scheduleLocked arms (or, for infinite durations, cancels) the auto-dismiss
// timer for a toast. Always replaces any existing timer. Caller must hold
// the lock.
func (c *Coordinator) scheduleLocked(t *model.Toast) {
	if t.Infinite() {
		c.sched.cancel(t.ID)
		return
	}
	id := t.ID
	c.sched.schedule(id, t.Duration, func(h *timerHandle) { c.timerFired(id, h) })
}

// presentEffect builds the deferred Present call for a record.
func (c *Coordinator) presentEffect(t *model.Toast, placement queue.Placement) func() {
	clone := t.Clone()
	edge := t.Edge
	return func() { c.presenter.Present(clone, edge, placement) }
}

// indicatorEffect builds the deferred queue-depth notification for an edge.
// The depth is read while the lock is held.
func (c *Coordinator) indicatorEffect(edge model.Edge) func() {
	depth := c.queues.PendingLen(edge)
	return func() { c.presenter.SetCollapsedIndicator(edge, depth) }
}

// dismissEventEffect builds the deferred public dismiss event for a record.
func (c *Coordinator) dismissEventEffect(t *model.Toast, reason model.DismissReason) func() {
	return c.eventEffect(Event{Type: EventDismiss, ID: t.ID, Reason: reason, Toast: t.Snapshot()})
}

// eventEffect builds the deferred callback invocation for an event.
func (c *Coordinator) eventEffect(ev Event) func() {
	cb := c.onEvent
	if cb == nil {
		return func() {}
	}
	return func() { cb(ev) }
}

// run delivers deferred presenter commands and events, in order.
func run(fx []func()) {
	for _, f := range fx {
		f()
	}
}

// ensureID returns id or a freshly generated one.
func ensureID(id string) string {
	if id != "" {
		return id
	}
	return model.NewID()
}

// resolve builds a registry record from show options and the live defaults.
func resolve(opts model.Options, cfg config.Config) (*model.Toast, model.ActionHandler) {
	t := &model.Toast{
		ID:                 ensureID(opts.ID),
		Variant:            model.VariantInfo,
		Title:              opts.Title,
		Message:            opts.Message,
		Edge:               cfg.Edge,
		Size:               cfg.Size,
		Haptics:            cfg.Haptics,
		AccessibilityLabel: opts.AccessibilityLabel,
		Announce:           cfg.Announce,
		Importance:         cfg.Importance,
		Motion:             cfg.Motion,
		DedupeKey:          opts.DedupeKey,
		CreatedAt:          time.Now(),
	}

	switch opts.Variant {
	case model.VariantSuccess, model.VariantError, model.VariantInfo, model.VariantLoading:
		t.Variant = opts.Variant
	}
	switch {
	case opts.Duration != nil:
		t.Duration = *opts.Duration
	case t.Variant == model.VariantLoading:
		t.Duration = model.DurationInfinite
	default:
		t.Duration = cfg.Duration.Duration()
	}
	switch opts.Edge {
	case model.EdgeTop, model.EdgeBottom:
		t.Edge = opts.Edge
	}
	switch opts.Size {
	case model.SizeAuto, model.SizeCompact, model.SizeFull:
		t.Size = opts.Size
	}
	if opts.Haptics != nil {
		t.Haptics = *opts.Haptics
	}
	if opts.Announce != nil {
		t.Announce = *opts.Announce
	}
	switch opts.Importance {
	case model.ImportanceLow, model.ImportanceNormal, model.ImportanceHigh:
		t.Importance = opts.Importance
	}
	switch opts.Motion {
	case model.MotionAuto, model.MotionReduced:
		t.Motion = opts.Motion
	}

	var handler model.ActionHandler
	if opts.Action != nil {
		t.ActionLabel = opts.Action.Label
		handler = opts.Action.Handler
	}
	return t, handler
}

// merge applies the provided transition fields onto a record. Every field
// keeps its previous value unless provided; the action field is handled by
// the caller via ActionPatch.
func merge(t *model.Toast, u model.Update) {
	switch u.Variant {
	case model.VariantSuccess, model.VariantError, model.VariantInfo, model.VariantLoading:
		t.Variant = u.Variant
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Message != nil {
		t.Message = *u.Message
	}
	if u.Duration != nil {
		t.Duration = *u.Duration
	}
	switch u.Size {
	case model.SizeAuto, model.SizeCompact, model.SizeFull:
		t.Size = u.Size
	}
	if u.Haptics != nil {
		t.Haptics = *u.Haptics
	}
	if u.AccessibilityLabel != nil {
		t.AccessibilityLabel = *u.AccessibilityLabel
	}
	if u.Announce != nil {
		t.Announce = *u.Announce
	}
	switch u.Importance {
	case model.ImportanceLow, model.ImportanceNormal, model.ImportanceHigh:
		t.Importance = u.Importance
	}
	switch u.Motion {
	case model.MotionAuto, model.MotionReduced:
		t.Motion = u.Motion
	}
}
