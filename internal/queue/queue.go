// Package queue implements the per-edge visible/pending toast queues with
// capacity, eviction, and promotion.
package queue

import (
	"container/list"
	"fmt"

	"github.com/LucaLeukert/toastd/internal/model"
	"github.com/LucaLeukert/toastd/internal/registry"
)

// Placement tells the presenter which end of the stack a toast lands on.
type Placement string

const (
	// PlacementNear is the position closest to where new toasts are inserted
	// for an edge: the top lane grows downward from the screen edge, the
	// bottom lane upward.
	PlacementNear Placement = "near"
	// PlacementFar is the opposite end, used when a pending toast is
	// promoted so visual ordering stays continuous.
	PlacementFar Placement = "far"
)

// Limits are the capacity knobs shared by both edges.
type Limits struct {
	MaxVisible int
	MaxQueue   int // 0 disables queuing
	DropPolicy model.DropPolicy
}

// EnqueueStatus classifies the outcome of an Enqueue.
type EnqueueStatus int

const (
	// StatusInserted means the record went straight into the visible set.
	StatusInserted EnqueueStatus = iota
	// StatusQueued means the record was appended to the pending queue.
	StatusQueued
	// StatusDropped means the record was rejected and never stored.
	StatusDropped
)

// Result reports what Enqueue did with a record. Evicted is the pending
// record removed to make room (drop policy "oldest"), or the incoming record
// itself when it was rejected outright. Evicted records have already been
// removed from the registry.
type Result struct {
	Status    EnqueueStatus
	Placement Placement
	Evicted   *model.Toast
}

// TargetKind classifies what a dismiss request resolved to.
type TargetKind int

const (
	// TargetNone means no toast matched.
	TargetNone TargetKind = iota
	// TargetVisible means the toast is on screen; the presenter must confirm
	// its removal before state is finalized.
	TargetVisible
	// TargetPending means the toast was waiting in a pending queue. It has
	// already been removed from the queue and the registry.
	TargetPending
)

// Target is the resolution of a dismiss request.
type Target struct {
	Kind   TargetKind
	ID     string
	Record *model.Toast // set for TargetPending
}

// Insertion describes a promoted record the presenter must now show.
type Insertion struct {
	Record    *model.Toast
	Edge      model.Edge
	Placement Placement
}

// lane is the queue state for one edge.
type lane struct {
	visible []string   // ordered ids, length <= MaxVisible
	pending *list.List // of *model.Toast, front = oldest
}

// Manager owns the visible and pending sequences for both edges. Records
// live in the registry; the manager removes registry entries whenever a
// record leaves both sequences.
//
// Not safe for concurrent use: the lifecycle coordinator owns the manager
// and serializes every access.
type Manager struct {
	reg    *registry.Registry
	limits Limits
	lanes  map[model.Edge]*lane
}

// NewManager creates a Manager storing payloads in reg.
func NewManager(reg *registry.Registry, limits Limits) *Manager {
	lanes := make(map[model.Edge]*lane, 2)
	for _, e := range model.Edges() {
		lanes[e] = &lane{pending: list.New()}
	}
	return &Manager{reg: reg, limits: limits, lanes: lanes}
}

// Limits returns the current capacity limits.
func (m *Manager) Limits() Limits {
	return m.limits
}

// Enqueue places a record (already registered) into its edge's queues.
func (m *Manager) Enqueue(t *model.Toast) Result {
	ln := m.lanes[t.Edge]

	if len(ln.visible) < m.limits.MaxVisible {
		m.insertVisibleNear(ln, t)
		return Result{Status: StatusInserted, Placement: PlacementNear}
	}

	if m.limits.MaxQueue == 0 {
		// Queuing disabled: the incoming record is rejected outright.
		m.reg.Remove(t.ID)
		return Result{Status: StatusDropped, Evicted: t}
	}

	if ln.pending.Len() >= m.limits.MaxQueue {
		switch m.limits.DropPolicy {
		case model.DropNewest:
			m.reg.Remove(t.ID)
			return Result{Status: StatusDropped, Evicted: t}
		default: // DropOldest
			front := ln.pending.Remove(ln.pending.Front()).(*model.Toast)
			m.reg.Remove(front.ID)
			ln.pending.PushBack(t)
			return Result{Status: StatusQueued, Evicted: front}
		}
	}

	ln.pending.PushBack(t)
	return Result{Status: StatusQueued}
}

// insertVisibleNear puts an id at the near-edge position: the top lane
// prepends so the newest toast sits nearest the screen edge, the bottom lane
// appends.
func (m *Manager) insertVisibleNear(ln *lane, t *model.Toast) {
	if t.Edge == model.EdgeTop {
		ln.visible = append([]string{t.ID}, ln.visible...)
	} else {
		ln.visible = append(ln.visible, t.ID)
	}
}

// DismissTarget resolves a dismiss request. With an id it finds that toast;
// with an empty id it applies the fixed tie-break: oldest visible on top,
// else most-recently-inserted visible on bottom, else the front of the
// combined pending sequence (top before bottom). Pending matches are removed
// from the queue and the registry before being returned.
func (m *Manager) DismissTarget(id string) Target {
	if id != "" {
		for _, e := range model.Edges() {
			for _, vid := range m.lanes[e].visible {
				if vid == id {
					return Target{Kind: TargetVisible, ID: id}
				}
			}
		}
		for _, e := range model.Edges() {
			if t := m.removePending(m.lanes[e], id); t != nil {
				return Target{Kind: TargetPending, ID: id, Record: t}
			}
		}
		return Target{Kind: TargetNone}
	}

	// Top lane prepends, so its oldest visible id is the last element.
	if top := m.lanes[model.EdgeTop]; len(top.visible) > 0 {
		return Target{Kind: TargetVisible, ID: top.visible[len(top.visible)-1]}
	}
	// Bottom lane appends, so its newest visible id is also the last element.
	if bottom := m.lanes[model.EdgeBottom]; len(bottom.visible) > 0 {
		return Target{Kind: TargetVisible, ID: bottom.visible[len(bottom.visible)-1]}
	}
	for _, e := range model.Edges() {
		ln := m.lanes[e]
		if front := ln.pending.Front(); front != nil {
			t := ln.pending.Remove(front).(*model.Toast)
			m.reg.Remove(t.ID)
			return Target{Kind: TargetPending, ID: t.ID, Record: t}
		}
	}
	return Target{Kind: TargetNone}
}

// removePending removes id from a lane's pending queue, deleting its
// registry entry. Returns nil when not found.
func (m *Manager) removePending(ln *lane, id string) *model.Toast {
	for el := ln.pending.Front(); el != nil; el = el.Next() {
		t := el.Value.(*model.Toast)
		if t.ID == id {
			ln.pending.Remove(el)
			m.reg.Remove(id)
			return t
		}
	}
	return nil
}

// CompleteVisibleDismiss removes id from its edge's visible list and the
// registry. When allowPromotion is set and that edge has pending records,
// the pending front is promoted into the visible set at the far-edge
// position and returned for the presenter. Returns nils when id is not
// visible.
func (m *Manager) CompleteVisibleDismiss(id string, allowPromotion bool) (*model.Toast, *Insertion) {
	for _, e := range model.Edges() {
		ln := m.lanes[e]
		idx := -1
		for i, vid := range ln.visible {
			if vid == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}

		ln.visible = append(ln.visible[:idx], ln.visible[idx+1:]...)
		removed := m.reg.Remove(id)

		if !allowPromotion || ln.pending.Len() == 0 {
			return removed, nil
		}

		promoted := ln.pending.Remove(ln.pending.Front()).(*model.Toast)
		m.insertVisibleFar(ln, promoted)
		return removed, &Insertion{Record: promoted, Edge: e, Placement: PlacementFar}
	}
	return nil, nil
}

// insertVisibleFar puts an id at the far-edge position, opposite the
// near-edge insertion point.
func (m *Manager) insertVisibleFar(ln *lane, t *model.Toast) {
	if t.Edge == model.EdgeTop {
		ln.visible = append(ln.visible, t.ID)
	} else {
		ln.visible = append([]string{t.ID}, ln.visible...)
	}
}

// DrainPending removes and returns every pending record on both edges (top
// first, FIFO within each edge), deleting their registry entries. Visible
// membership is untouched.
func (m *Manager) DrainPending() []*model.Toast {
	var drained []*model.Toast
	for _, e := range model.Edges() {
		ln := m.lanes[e]
		for ln.pending.Len() > 0 {
			t := ln.pending.Remove(ln.pending.Front()).(*model.Toast)
			m.reg.Remove(t.ID)
			drained = append(drained, t)
		}
	}
	return drained
}

// Reconfigure updates the limits without touching current visible
// membership. Each edge's pending queue is trimmed down to the new MaxQueue
// by repeatedly applying the (possibly new) drop policy's eviction rule:
// "oldest" evicts the front, "newest" the back. Evicted records are removed
// from the registry and returned for dismiss-event emission.
func (m *Manager) Reconfigure(limits Limits) []*model.Toast {
	m.limits = limits

	var evicted []*model.Toast
	for _, e := range model.Edges() {
		ln := m.lanes[e]
		for ln.pending.Len() > limits.MaxQueue {
			var el *list.Element
			if limits.DropPolicy == model.DropNewest {
				el = ln.pending.Back()
			} else {
				el = ln.pending.Front()
			}
			t := ln.pending.Remove(el).(*model.Toast)
			m.reg.Remove(t.ID)
			evicted = append(evicted, t)
		}
	}
	return evicted
}

// IsVisible reports whether id is in either edge's visible set.
func (m *Manager) IsVisible(id string) bool {
	for _, e := range model.Edges() {
		for _, vid := range m.lanes[e].visible {
			if vid == id {
				return true
			}
		}
	}
	return false
}

// VisibleIDs returns the ordered visible ids for an edge.
func (m *Manager) VisibleIDs(edge model.Edge) []string {
	ln := m.lanes[edge]
	out := make([]string, len(ln.visible))
	copy(out, ln.visible)
	return out
}

// AllVisibleIDs returns the visible ids across both edges, top lane first.
func (m *Manager) AllVisibleIDs() []string {
	var out []string
	for _, e := range model.Edges() {
		out = append(out, m.VisibleIDs(e)...)
	}
	return out
}

// VisibleTotal returns the number of visible toasts across both edges.
func (m *Manager) VisibleTotal() int {
	n := 0
	for _, e := range model.Edges() {
		n += len(m.lanes[e].visible)
	}
	return n
}

// PendingLen returns the pending-queue depth for an edge.
func (m *Manager) PendingLen(edge model.Edge) int {
	return m.lanes[edge].pending.Len()
}

// PendingRecords returns the pending records for an edge in FIFO order.
func (m *Manager) PendingRecords(edge model.Edge) []*model.Toast {
	ln := m.lanes[edge]
	out := make([]*model.Toast, 0, ln.pending.Len())
	for el := ln.pending.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*model.Toast))
	}
	return out
}

// Validate checks the queue/registry invariants. A non-nil error indicates a
// core bug; tests call this after every mutation scenario.
func (m *Manager) Validate() error {
	seen := make(map[string]string)
	count := 0

	for _, e := range model.Edges() {
		ln := m.lanes[e]
		if len(ln.visible) > m.limits.MaxVisible {
			return fmt.Errorf("visible(%s) length %d exceeds max %d", e, len(ln.visible), m.limits.MaxVisible)
		}
		if ln.pending.Len() > m.limits.MaxQueue {
			return fmt.Errorf("pending(%s) length %d exceeds max %d", e, ln.pending.Len(), m.limits.MaxQueue)
		}

		for _, id := range ln.visible {
			if where, dup := seen[id]; dup {
				return fmt.Errorf("id %s present in both %s and visible(%s)", id, where, e)
			}
			seen[id] = "visible(" + string(e) + ")"
			if !m.reg.Has(id) {
				return fmt.Errorf("visible id %s missing from registry", id)
			}
			count++
		}
		for el := ln.pending.Front(); el != nil; el = el.Next() {
			t := el.Value.(*model.Toast)
			if where, dup := seen[t.ID]; dup {
				return fmt.Errorf("id %s present in both %s and pending(%s)", t.ID, where, e)
			}
			seen[t.ID] = "pending(" + string(e) + ")"
			if !m.reg.Has(t.ID) {
				return fmt.Errorf("pending id %s missing from registry", t.ID)
			}
			count++
		}
	}

	if count != m.reg.Len() {
		return fmt.Errorf("registry holds %d records but queues hold %d ids", m.reg.Len(), count)
	}
	return nil
}
