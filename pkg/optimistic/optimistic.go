package optimistic

import (
	"context"
	"fmt"
	"log/slog"
)

// Action is a local change applied before the server confirms it.
type Action struct {
	Name string
	// Apply changes local state immediately.
	Apply func()
	// Commit performs the remote write.
	Commit func(ctx context.Context) error
	// Compensate undoes Apply. It runs only when Commit fails.
	Compensate func()
}

// Run applies the action locally, commits it and compensates on failure.
// The commit error is returned unchanged apart from wrapping.
func Run(ctx context.Context, a Action) error {
	if a.Commit == nil {
		return fmt.Errorf("optimistic %s: missing commit", a.Name)
	}

	if a.Apply != nil {
		a.Apply()
	}

	err := a.Commit(ctx)
	if err == nil {
		return nil
	}

	if a.Compensate != nil {
		a.Compensate()
		slog.Warn("optimistic change rolled back", "action", a.Name, "error", err)
	}

	return fmt.Errorf("optimistic %s: %w", a.Name, err)
}

// Removal records a member taken out of a list and where it was.
type Removal[T any] struct {
	Item  T
	Index int
	Found bool
}

// Remove returns items without the first member matching, and the removal
// needed to put it back.
func Remove[T any](items []T, match func(T) bool) ([]T, Removal[T]) {
	for i, item := range items {
		if match(item) {
			out := make([]T, 0, len(items)-1)
			out = append(out, items[:i]...)
			out = append(out, items[i+1:]...)

			return out, Removal[T]{Item: item, Index: i, Found: true}
		}
	}

	return items, Removal[T]{}
}

// Restore reinserts a removed member at its old position, or at the end when
// the list has shrunk since. A member that is already back is not duplicated.
func Restore[T any](items []T, r Removal[T], same func(a, b T) bool) []T {
	if !r.Found {
		return items
	}

	for _, item := range items {
		if same(item, r.Item) {
			return items
		}
	}

	index := r.Index
	if index > len(items) {
		index = len(items)
	}

	out := make([]T, 0, len(items)+1)
	out = append(out, items[:index]...)
	out = append(out, r.Item)
	out = append(out, items[index:]...)

	return out
}
