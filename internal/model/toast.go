// Package model defines the core data structures for toastd.
package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Variant identifies the visual/semantic kind of a toast.
type Variant string

const (
	VariantSuccess Variant = "success"
	VariantError   Variant = "error"
	VariantInfo    Variant = "info"
	VariantLoading Variant = "loading"
)

// ValidVariants returns all valid variant values.
func ValidVariants() []Variant {
	return []Variant{VariantSuccess, VariantError, VariantInfo, VariantLoading}
}

// Edge is one of the two independent toast lanes.
type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
)

// Edges returns both lanes in fixed order (top first). The ordering matters:
// the no-id dismiss tie-break and the combined pending sequence walk lanes in
// this order.
func Edges() []Edge {
	return []Edge{EdgeTop, EdgeBottom}
}

// Size controls how much room the presenter gives a toast.
type Size string

const (
	SizeAuto    Size = "auto"
	SizeCompact Size = "compact"
	SizeFull    Size = "full"
)

// Importance maps to the presenter's accessibility announcement priority.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceNormal Importance = "normal"
	ImportanceHigh   Importance = "high"
)

// Motion is the reduced-motion preference forwarded to the presenter.
type Motion string

const (
	MotionAuto    Motion = "auto"
	MotionReduced Motion = "reduced"
)

// DismissReason describes why a toast left the visible or pending set.
type DismissReason string

const (
	// ReasonTimeout means the auto-dismiss timer fired.
	ReasonTimeout DismissReason = "timeout"
	// ReasonProgrammatic means a caller (or an action press) dismissed it.
	ReasonProgrammatic DismissReason = "programmatic"
	// ReasonReplaced means the toast was evicted by capacity or reconfigure
	// before completing its lifetime.
	ReasonReplaced DismissReason = "replaced"
)

// DropPolicy selects which record is evicted when a pending queue is full.
type DropPolicy string

const (
	// DropOldest evicts the front of the pending queue to make room.
	DropOldest DropPolicy = "oldest"
	// DropNewest rejects the incoming record and leaves the queue untouched.
	DropNewest DropPolicy = "newest"
)

// DurationInfinite disables auto-dismiss. Follows the freedesktop timeout
// convention where zero means never expire.
const DurationInfinite time.Duration = 0

// Toast is a single toast record. Records are owned by the registry; every
// other component refers to them by ID. Presenters receive clones.
type Toast struct {
	ID                 string
	Variant            Variant
	Title              string
	Message            string
	ActionLabel        string
	Duration           time.Duration // DurationInfinite = never auto-dismiss
	Edge               Edge
	Size               Size
	Haptics            bool
	AccessibilityLabel string
	Announce           bool
	Importance         Importance
	Motion             Motion
	DedupeKey          string
	CreatedAt          time.Time
}

// Key returns the deduplication key: the explicit key if set, otherwise the
// message text.
func (t *Toast) Key() string {
	if t.DedupeKey != "" {
		return t.DedupeKey
	}
	return t.Message
}

// Infinite reports whether the toast never auto-dismisses.
func (t *Toast) Infinite() bool {
	return t.Duration <= DurationInfinite
}

// Clone creates a copy of the toast for handing to presenters.
func (t *Toast) Clone() *Toast {
	c := *t
	return &c
}

// Snapshot returns the immutable view passed to action handlers.
func (t *Toast) Snapshot() Snapshot {
	return Snapshot{
		ID:      t.ID,
		Variant: t.Variant,
		Title:   t.Title,
		Message: t.Message,
		Edge:    t.Edge,
	}
}

// Snapshot is the read-only view of a toast given to action handlers.
type Snapshot struct {
	ID      string
	Variant Variant
	Title   string
	Message string
	Edge    Edge
}

// ActionHandler is invoked when the presenter reports an action press.
type ActionHandler func(Snapshot)

// Action pairs a visible label with its press handler.
type Action struct {
	Label   string
	Handler ActionHandler
}

// NewID generates a unique toast id.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
