package main

import (
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/LucaLeukert/toastd/internal/lifecycle"
	"github.com/LucaLeukert/toastd/internal/model"
)

// Script is a YAML demo scenario: a sequence of steps with optional delays.
type Script struct {
	Steps []ScriptStep `yaml:"steps"`
}

// ScriptStep is one scripted operation. Exactly one of Show, Dismiss, or
// DismissAll should be set.
type ScriptStep struct {
	Show       *ScriptShow `yaml:"show,omitempty"`
	Dismiss    *string     `yaml:"dismiss,omitempty"` // empty string = no-id tie-break
	DismissAll bool        `yaml:"dismiss_all,omitempty"`
	Delay      string      `yaml:"delay,omitempty"` // e.g. "500ms"
}

// ScriptShow is the scripted form of show options.
type ScriptShow struct {
	Variant  string `yaml:"variant"`
	Title    string `yaml:"title,omitempty"`
	Message  string `yaml:"message"`
	Edge     string `yaml:"edge,omitempty"`
	Duration string `yaml:"duration,omitempty"` // "0" = never auto-dismiss
	Action   string `yaml:"action,omitempty"`   // action label
	Key      string `yaml:"key,omitempty"`      // dedupe key
}

// runScript executes a YAML scenario against the coordinator.
func runScript(coord *lifecycle.Coordinator, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return fmt.Errorf("failed to parse script: %w", err)
	}

	for i, step := range script.Steps {
		switch {
		case step.Show != nil:
			opts, err := step.Show.options()
			if err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			coord.Show(opts)

		case step.Dismiss != nil:
			coord.Dismiss(*step.Dismiss)

		case step.DismissAll:
			coord.DismissAll()
		}

		if step.Delay != "" {
			d, err := time.ParseDuration(step.Delay)
			if err != nil {
				return fmt.Errorf("step %d: invalid delay %q: %w", i+1, step.Delay, err)
			}
			time.Sleep(d)
		}
	}

	// Let in-flight timers settle before exiting.
	time.Sleep(100 * time.Millisecond)
	return nil
}

func (s *ScriptShow) options() (model.Options, error) {
	if s.Variant != "" && !slices.Contains(model.ValidVariants(), model.Variant(s.Variant)) {
		return model.Options{}, fmt.Errorf("unknown variant %q", s.Variant)
	}

	opts := model.Options{
		Variant:   model.Variant(s.Variant),
		Title:     s.Title,
		Message:   s.Message,
		Edge:      model.Edge(s.Edge),
		DedupeKey: s.Key,
	}

	if s.Duration != "" {
		d, err := time.ParseDuration(s.Duration)
		if err != nil {
			return opts, fmt.Errorf("invalid duration %q: %w", s.Duration, err)
		}
		opts.Duration = &d
	}
	if s.Action != "" {
		label := s.Action
		opts.Action = &model.Action{
			Label: label,
			Handler: func(snap model.Snapshot) {
				fmt.Printf("action %q pressed on %s\n", label, snap.ID)
			},
		}
	}
	return opts, nil
}
