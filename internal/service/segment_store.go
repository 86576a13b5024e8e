package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/alexanderramin/juno/internal/domain"
)

// SegmentStore manages the owner's ordered segment names. Renames and
// deletes relabel member tasks through the shared workspace.
type SegmentStore struct {
	w *Workspace
}

// Segments returns the names in display order.
func (s *SegmentStore) Segments() []string {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	return slices.Clone(s.w.segments)
}

func (s *SegmentStore) AddSegment(ctx context.Context, name string) error {
	w := s.w
	return w.run(ctx, "segment.add", map[string]any{"segment": name}, func() ([]writeOp, error) {
		n, err := domain.NormalizeSegmentName(name)
		if err != nil {
			return nil, err
		}
		if slices.Contains(w.segments, n) {
			return nil, fmt.Errorf("%w: segment %q already exists", domain.ErrValidation, n)
		}
		w.segments = append(w.segments, n)
		return []writeOp{w.replaceSegmentsOp()}, nil
	})
}

// EditSegment renames oldName and moves its tasks along. Renaming to the
// same name is a no-op.
func (s *SegmentStore) EditSegment(ctx context.Context, oldName, newName string) error {
	w := s.w
	fields := map[string]any{"segment": oldName, "new_name": newName}
	return w.run(ctx, "segment.rename", fields, func() ([]writeOp, error) {
		i := slices.Index(w.segments, oldName)
		if i < 0 {
			return nil, fmt.Errorf("segment %q: %w", oldName, domain.ErrNotFound)
		}
		n, err := domain.NormalizeSegmentName(newName)
		if err != nil {
			return nil, err
		}
		if n == oldName {
			return nil, nil
		}
		if slices.Contains(w.segments, n) {
			return nil, fmt.Errorf("%w: segment %q already exists", domain.ErrValidation, n)
		}
		w.segments[i] = n
		return append([]writeOp{w.replaceSegmentsOp()}, w.relabel(oldName, n)...), nil
	})
}

// DeleteSegment removes name; its tasks fall back to All.
func (s *SegmentStore) DeleteSegment(ctx context.Context, name string) error {
	w := s.w
	return w.run(ctx, "segment.delete", map[string]any{"segment": name}, func() ([]writeOp, error) {
		i := slices.Index(w.segments, name)
		if i < 0 {
			return nil, fmt.Errorf("segment %q: %w", name, domain.ErrNotFound)
		}
		w.segments = slices.Delete(w.segments, i, i+1)
		return append([]writeOp{w.replaceSegmentsOp()}, w.relabel(name, domain.SegmentAll)...), nil
	})
}

// MoveSegment swaps the segment at index with its neighbour in direction
// (-1 or +1). Swaps that would leave the list are ignored.
func (s *SegmentStore) MoveSegment(ctx context.Context, index, direction int) error {
	w := s.w
	fields := map[string]any{"index": index, "direction": direction}
	return w.run(ctx, "segment.move", fields, func() ([]writeOp, error) {
		if direction != -1 && direction != 1 {
			return nil, fmt.Errorf("%w: direction must be -1 or +1, got %d", domain.ErrValidation, direction)
		}
		j := index + direction
		if index < 0 || index >= len(w.segments) || j < 0 || j >= len(w.segments) {
			return nil, nil
		}
		w.segments[index], w.segments[j] = w.segments[j], w.segments[index]
		return []writeOp{w.replaceSegmentsOp()}, nil
	})
}

// relabel moves every task in segment from to segment to and returns the
// writes for them. Callers hold w.mu.
func (w *Workspace) relabel(from, to string) []writeOp {
	var ops []writeOp
	for _, t := range w.tasks {
		if t.Segment == from {
			t.Segment = to
			ops = append(ops, w.upsertOp(t.ID))
		}
	}
	return ops
}
