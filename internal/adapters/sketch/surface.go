// Package sketch holds the in-memory drawing surface driven by the REST API.
package sketch

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/samirrijal/missionsketch/internal/core/domain"
	"github.com/samirrijal/missionsketch/internal/core/ports"
)

type draw struct {
	kind     domain.GeometryKind
	vertices []domain.Coordinate
}

// Surface accumulates operator clicks per draw handle until the session
// completes or cancels the draw.
type Surface struct {
	mu        sync.Mutex
	draws     map[domain.DrawHandle]*draw
	maxActive int
}

// NewSurface returns a surface allowing at most maxActive concurrent draws
// across all missions. Zero means unlimited.
func NewSurface(maxActive int) *Surface {
	return &Surface{draws: make(map[domain.DrawHandle]*draw), maxActive: maxActive}
}

var _ ports.SketchSurface = (*Surface)(nil)

func (s *Surface) BeginDraw(_ context.Context, kind domain.GeometryKind) (domain.DrawHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxActive > 0 && len(s.draws) >= s.maxActive {
		return "", ports.ErrSurfaceUnavailable
	}
	h := domain.DrawHandle(uuid.NewString())
	s.draws[h] = &draw{kind: kind}
	return h, nil
}

func (s *Surface) AddVertex(_ context.Context, handle domain.DrawHandle, c domain.Coordinate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.draws[handle]
	if !ok {
		return fmt.Errorf("add vertex to %s: %w", handle, domain.ErrStaleHandle)
	}
	d.vertices = append(d.vertices, c)
	return nil
}

func (s *Surface) Sketch(_ context.Context, handle domain.DrawHandle) ([]domain.Coordinate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.draws[handle]
	if !ok {
		return nil, fmt.Errorf("sketch %s: %w", handle, domain.ErrStaleHandle)
	}
	return slices.Clone(d.vertices), nil
}

// Cancel forgets handle. Unknown handles are ignored.
func (s *Surface) Cancel(_ context.Context, handle domain.DrawHandle) error {
	s.mu.Lock()
	delete(s.draws, handle)
	s.mu.Unlock()
	return nil
}

// Active returns the number of live draws.
func (s *Surface) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.draws)
}
