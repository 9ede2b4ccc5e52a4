package config

import (
	"time"

	"github.com/LucaLeukert/toastd/internal/model"
)

// Patch is a partial configuration change. Only non-nil (or non-zero enum)
// fields are applied; everything else keeps its prior value.
type Patch struct {
	Duration     *time.Duration
	Edge         model.Edge
	Size         model.Size
	Haptics      *bool
	Announce     *bool
	Importance   model.Importance
	Motion       model.Motion
	DedupeWindow *time.Duration
	MaxVisible   *int
	MaxQueue     *int
	DropPolicy   model.DropPolicy
}

// Store holds the live runtime defaults and merges patches additively.
//
// Not safe for concurrent use: the lifecycle coordinator owns the store and
// serializes every access.
type Store struct {
	cfg Config
}

// NewStore creates a Store seeded from cfg, or from Default() when nil.
func NewStore(cfg *Config) *Store {
	if cfg == nil {
		cfg = Default()
	}
	return &Store{cfg: *cfg}
}

// Current returns a copy of the live configuration.
func (s *Store) Current() Config {
	return s.cfg
}

// Apply merges a patch into the live configuration. Numeric fields are
// clamped to their field minimum (max_visible >= 1, max_queue >= 0,
// dedupe_window >= 0) rather than being accepted as-is; enum fields are
// ignored when they name an unknown value, retaining the prior setting.
func (s *Store) Apply(p Patch) Config {
	if p.Duration != nil {
		d := *p.Duration
		if d < 0 {
			d = model.DurationInfinite
		}
		s.cfg.Duration = Duration(d)
	}
	switch p.Edge {
	case model.EdgeTop, model.EdgeBottom:
		s.cfg.Edge = p.Edge
	}
	switch p.Size {
	case model.SizeAuto, model.SizeCompact, model.SizeFull:
		s.cfg.Size = p.Size
	}
	if p.Haptics != nil {
		s.cfg.Haptics = *p.Haptics
	}
	if p.Announce != nil {
		s.cfg.Announce = *p.Announce
	}
	switch p.Importance {
	case model.ImportanceLow, model.ImportanceNormal, model.ImportanceHigh:
		s.cfg.Importance = p.Importance
	}
	switch p.Motion {
	case model.MotionAuto, model.MotionReduced:
		s.cfg.Motion = p.Motion
	}
	if p.DedupeWindow != nil {
		w := *p.DedupeWindow
		if w < 0 {
			w = 0
		}
		s.cfg.DedupeWindow = Duration(w)
	}
	if p.MaxVisible != nil {
		v := *p.MaxVisible
		if v < 1 {
			v = 1
		}
		s.cfg.MaxVisible = v
	}
	if p.MaxQueue != nil {
		q := *p.MaxQueue
		if q < 0 {
			q = 0
		}
		s.cfg.MaxQueue = q
	}
	switch p.DropPolicy {
	case model.DropOldest, model.DropNewest:
		s.cfg.DropPolicy = p.DropPolicy
	}
	return s.cfg
}

// PatchFrom builds a full patch from a complete Config. Used by the config
// file watcher to push a reloaded file through the same merge path.
func PatchFrom(cfg *Config) Patch {
	d := cfg.Duration.Duration()
	w := cfg.DedupeWindow.Duration()
	mv := cfg.MaxVisible
	mq := cfg.MaxQueue
	h := cfg.Haptics
	a := cfg.Announce
	return Patch{
		Duration:     &d,
		Edge:         cfg.Edge,
		Size:         cfg.Size,
		Haptics:      &h,
		Announce:     &a,
		Importance:   cfg.Importance,
		Motion:       cfg.Motion,
		DedupeWindow: &w,
		MaxVisible:   &mv,
		MaxQueue:     &mq,
		DropPolicy:   cfg.DropPolicy,
	}
}
