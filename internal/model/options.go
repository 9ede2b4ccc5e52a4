package model

import "time"

// Options describes a show request. Pointer fields distinguish "provided"
// from "use the configured default"; zero-valued enum fields mean not
// provided.
type Options struct {
	ID                 string // generated when empty
	Variant            Variant
	Title              string
	Message            string
	Action             *Action
	Duration           *time.Duration
	Edge               Edge
	Size               Size
	Haptics            *bool
	AccessibilityLabel string
	Announce           *bool
	Importance         Importance
	Motion             Motion
	DedupeKey          string
}

// Update describes a transition request. Every field defaults to the record's
// previous value unless provided. The action field carries three states
// (keep, clear, replace) via ActionPatch.
type Update struct {
	Variant            Variant // zero = keep
	Title              *string
	Message            *string
	Action             ActionPatch // zero value = keep
	Duration           *time.Duration
	Size               Size
	Haptics            *bool
	AccessibilityLabel *string
	Announce           *bool
	Importance         Importance
	Motion             Motion
}

// actionPatchKind enumerates the three action update states.
type actionPatchKind int

const (
	actionKeep actionPatchKind = iota
	actionClear
	actionReplace
)

// ActionPatch is the tri-state update for a toast's action: keep the current
// one, clear it, or replace it. The zero value keeps.
type ActionPatch struct {
	kind   actionPatchKind
	action Action
}

// KeepAction leaves the current action untouched.
func KeepAction() ActionPatch {
	return ActionPatch{kind: actionKeep}
}

// ClearAction removes the current action. Clearing is sticky: a later Update
// that keeps does not restore it.
func ClearAction() ActionPatch {
	return ActionPatch{kind: actionClear}
}

// ReplaceAction installs a new action.
func ReplaceAction(label string, handler ActionHandler) ActionPatch {
	return ActionPatch{kind: actionReplace, action: Action{Label: label, Handler: handler}}
}

// IsKeep reports whether the patch leaves the action untouched.
func (p ActionPatch) IsKeep() bool { return p.kind == actionKeep }

// IsClear reports whether the patch clears the action.
func (p ActionPatch) IsClear() bool { return p.kind == actionClear }

// Replacement returns the new action and true when the patch replaces.
func (p ActionPatch) Replacement() (Action, bool) {
	return p.action, p.kind == actionReplace
}
