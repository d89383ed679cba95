package collection

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/desertthunder/homedeck/internal/shared"
)

// Box is the rendered vertical extent of one row.
type Box struct {
	ID     string
	Top    float64
	Height float64
}

// UnitBoxes lays ids out as rows of height 1 starting at 0.
func UnitBoxes(order []string) []Box {
	boxes := make([]Box, len(order))
	for i, id := range order {
		boxes[i] = Box{ID: id, Top: float64(i), Height: 1}
	}
	return boxes
}

// InsertionPoint returns the id of the row the dragged row should be placed before,
// or "" to append at the end.
//
// Among rows other than dragged, it picks the one whose midpoint offset
// y - (top + height/2) is negative and closest to zero. Ties go to the first row.
func InsertionPoint(boxes []Box, dragged string, y float64) string {
	best := math.Inf(-1)
	before := ""
	for _, b := range boxes {
		if b.ID == dragged {
			continue
		}
		off := y - b.Top - b.Height/2
		if off < 0 && off > best {
			best = off
			before = b.ID
		}
	}
	return before
}

// moveBefore repositions id in order so it sits directly before target ("" = end).
func moveBefore(order []string, id, target string) []string {
	out := make([]string, 0, len(order))
	for _, o := range order {
		if o != id {
			out = append(out, o)
		}
	}
	if target == "" {
		return append(out, id)
	}
	i := slices.Index(out, target)
	if i < 0 {
		return append(out, id)
	}
	return slices.Insert(out, i, id)
}

// DragState is the transient state of one drag gesture.
type DragState struct {
	// ID is the row in motion.
	ID string
	// Layout is the live visual order, updated on every drag-over.
	Layout []string
	// Before is the last computed insertion point, "" for the end.
	Before string
}

// Reorder is the result of a drop that changed the order.
type Reorder struct {
	Order    []string
	Previous []string
}

// DragStart marks id as in motion.
func (c *Collection[T]) DragStart(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if indexOf(c.items, id) < 0 {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, c.name, id)
	}
	c.drag = &DragState{ID: id, Layout: ids(c.items)}
	return nil
}

// Drag returns the gesture in progress.
func (c *Collection[T]) Drag() (DragState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil {
		return DragState{}, false
	}
	d := *c.drag
	d.Layout = slices.Clone(d.Layout)
	return d, true
}

// DragOver moves the dragged row in the live layout according to the pointer
// position y over the rendered boxes, and returns the new layout.
func (c *Collection[T]) DragOver(y float64, boxes []Box) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drag == nil {
		return nil, shared.ErrNoDrag
	}
	c.drag.Before = InsertionPoint(boxes, c.drag.ID, y)
	c.drag.Layout = moveBefore(c.drag.Layout, c.drag.ID, c.drag.Before)
	return slices.Clone(c.drag.Layout), nil
}

// Drop commits the live layout to the collection. It reports false, and changes
// nothing, when there is no drag or the layout equals the current order.
func (c *Collection[T]) Drop() (Reorder, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drag == nil {
		return Reorder{}, false
	}

	previous := ids(c.items)
	next := arrange(c.items, c.drag.Layout)
	order := ids(next)
	if slices.Equal(order, previous) {
		return Reorder{}, false
	}

	c.items = next
	c.logger.Debug("dropped", "id", c.drag.ID, "order", order)
	c.observer.Render(slices.Clone(next))
	return Reorder{Order: order, Previous: previous}, true
}

// DragEnd clears the drag state whether or not a drop happened.
func (c *Collection[T]) DragEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drag = nil
}

// Persist saves a dropped order. On failure the previous order is restored,
// unless the collection has changed since the drop, and the user is notified.
func (c *Collection[T]) Persist(ctx context.Context, r Reorder) error {
	err := c.remote.Reorder(ctx, r.Order)
	if err == nil {
		c.logger.Info("order saved", "count", len(r.Order))
		return nil
	}

	c.logger.Error("failed to save order", "error", err)

	c.mu.Lock()
	defer c.mu.Unlock()

	msg := fmt.Sprintf("failed to save %s order", c.name)
	if slices.Equal(ids(c.items), r.Order) {
		c.items = arrange(c.items, r.Previous)
		c.observer.Render(slices.Clone(c.items))
		msg += "; previous order restored"
	}
	c.observer.Notify(Notification{Level: LevelError, Message: msg, Err: err})
	return err
}

// Move places id before target ("" = end) as a complete drag gesture and persists it.
func (c *Collection[T]) Move(ctx context.Context, id, target string) error {
	if err := c.DragStart(id); err != nil {
		return err
	}
	defer c.DragEnd()

	order := c.IDs()
	y := float64(len(order))
	if target != "" {
		i := slices.Index(order, target)
		if i < 0 {
			return fmt.Errorf("%w: %s %s", shared.ErrNotFound, c.name, target)
		}
		y = float64(i)
	}

	if _, err := c.DragOver(y, UnitBoxes(order)); err != nil {
		return err
	}

	r, changed := c.Drop()
	if !changed {
		c.mu.Lock()
		c.notify(LevelInfo, "order unchanged")
		c.mu.Unlock()
		return nil
	}
	return c.Persist(ctx, r)
}

// SetOrder applies a complete order, as given on the command line, and persists it.
// Every current id must appear exactly once.
func (c *Collection[T]) SetOrder(ctx context.Context, order []string) error {
	current := c.IDs()
	if len(order) != len(current) {
		return fmt.Errorf("%w: expected %d ids, got %d", shared.ErrInvalidArgument, len(current), len(order))
	}
	sorted, want := slices.Clone(order), slices.Clone(current)
	slices.Sort(sorted)
	slices.Sort(want)
	if !slices.Equal(sorted, want) {
		return fmt.Errorf("%w: order must list every id exactly once", shared.ErrInvalidArgument)
	}

	c.mu.Lock()
	if slices.Equal(order, current) {
		c.mu.Unlock()
		return nil
	}
	c.items = arrange(c.items, order)
	c.observer.Render(slices.Clone(c.items))
	c.mu.Unlock()

	return c.Persist(ctx, Reorder{Order: slices.Clone(order), Previous: current})
}
