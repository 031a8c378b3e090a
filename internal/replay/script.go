// Package replay drives a mission session from a recorded operator script.
package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/samirrijal/missionsketch/internal/core/domain"
)

// Op names an operator action in a script.
type Op string

const (
	OpDraw    Op = "draw"
	OpClick   Op = "click"
	OpFinish  Op = "finish"
	OpCancel  Op = "cancel"
	OpDiscard Op = "discard"
	OpImport  Op = "import"
	OpExport  Op = "export"
)

// Event is one recorded operator action. Only the fields of its op are read.
type Event struct {
	Op        Op      `json:"op"`
	Kind      string  `json:"kind,omitempty"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Anchor    *int    `json:"anchor,omitempty"`
	Direction string  `json:"direction,omitempty"`
	Format    string  `json:"format,omitempty"`
}

// Script is a named sequence of operator events.
type Script struct {
	Mission string  `json:"mission"`
	Events  []Event `json:"events"`
}

// Load decodes and validates a script.
func Load(r io.Reader) (*Script, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every event names a known op with its required fields.
// All problems are reported together.
func (s *Script) Validate() error {
	var errs []string
	for i, ev := range s.Events {
		switch ev.Op {
		case OpDraw:
			if _, err := domain.ParseGeometryKind(ev.Kind); err != nil {
				errs = append(errs, fmt.Sprintf("event %d: %v", i, err))
			}
		case OpImport:
			if ev.Anchor == nil {
				errs = append(errs, fmt.Sprintf("event %d: import needs an anchor", i))
			}
		case OpClick, OpFinish, OpCancel, OpDiscard, OpExport:
		default:
			errs = append(errs, fmt.Sprintf("event %d: unknown op %q", i, ev.Op))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid script: %s", strings.Join(errs, "; "))
	}
	return nil
}
