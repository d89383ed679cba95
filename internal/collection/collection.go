package collection

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/shared"
)

// Remote is the server side of a collection.
type Remote[T models.Item] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id string, item T) error
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, order []string) error
}

// PendingEdit is the single in-flight creation or modification. An empty ID means a new item.
type PendingEdit struct {
	ID string
}

// Creating reports whether the edit adds a new item.
func (p PendingEdit) Creating() bool { return p.ID == "" }

// Collection is the ordered local replica of one server collection.
type Collection[T models.Item] struct {
	mu       sync.Mutex
	name     string
	remote   Remote[T]
	observer Observer[T]
	logger   *log.Logger

	items   []T
	pending *PendingEdit
	drag    *DragState
}

// New creates an empty collection. name ("links", "devices") labels logs and notifications.
func New[T models.Item](name string, remote Remote[T], observer Observer[T], logger *log.Logger) *Collection[T] {
	if observer == nil {
		observer = NopObserver[T]{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Collection[T]{
		name:     name,
		remote:   remote,
		observer: observer,
		logger:   shared.WithLogger(logger, "collection", name),
	}
}

// Name returns the collection label.
func (c *Collection[T]) Name() string { return c.name }

// Items returns a copy of the current order.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// IDs returns the identifiers in current order.
func (c *Collection[T]) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ids(c.items)
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Get looks an item up by id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := indexOf(c.items, id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Load fetches the full collection and replaces the replica.
// On failure the previous items are kept and the user is notified.
func (c *Collection[T]) Load(ctx context.Context) error {
	items, err := c.remote.List(ctx)
	if err != nil {
		c.fail(fmt.Sprintf("failed to load %s", c.name), err)
		return err
	}
	c.Replace(items)
	return nil
}

// Replace swaps in items wholesale and renders. Duplicate ids keep their first occurrence.
func (c *Collection[T]) Replace(items []T) {
	seen := make(map[string]bool, len(items))
	next := make([]T, 0, len(items))
	for _, it := range items {
		if seen[it.ItemID()] {
			c.logger.Warn("dropping duplicate id", "id", it.ItemID())
			continue
		}
		seen[it.ItemID()] = true
		next = append(next, it)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = next
	c.logger.Debug("replaced", "count", len(next))
	c.observer.Render(slices.Clone(next))
}

// Create adds item on the server, then reloads.
func (c *Collection[T]) Create(ctx context.Context, item T) error {
	if err := c.call(ctx, "add", func(ctx context.Context) error {
		_, err := c.remote.Create(ctx, item)
		return err
	}); err != nil {
		return err
	}
	return c.Load(ctx)
}

// Update replaces the item with id on the server, then reloads.
func (c *Collection[T]) Update(ctx context.Context, id string, item T) error {
	if err := c.call(ctx, "update", func(ctx context.Context) error {
		return c.remote.Update(ctx, id, item)
	}); err != nil {
		return err
	}
	return c.Load(ctx)
}

// Delete removes the item with id on the server, then reloads.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.call(ctx, "delete", func(ctx context.Context) error {
		return c.remote.Delete(ctx, id)
	}); err != nil {
		return err
	}
	return c.Load(ctx)
}

// BeginEdit opens the single pending edit and returns the item to prefill (zero value for new).
func (c *Collection[T]) BeginEdit(id string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if c.pending != nil {
		return zero, shared.ErrEditInProgress
	}
	if id == "" {
		c.pending = &PendingEdit{}
		return zero, nil
	}

	i := indexOf(c.items, id)
	if i < 0 {
		return zero, fmt.Errorf("%w: %s %s", shared.ErrNotFound, c.name, id)
	}
	c.pending = &PendingEdit{ID: id}
	return c.items[i], nil
}

// CancelEdit discards the pending edit, if any.
func (c *Collection[T]) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

// Pending returns the open edit.
func (c *Collection[T]) Pending() (PendingEdit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return PendingEdit{}, false
	}
	return *c.pending, true
}

// SubmitEdit saves item as a create or an update depending on the pending edit.
// The pending edit is cleared only when the server accepts it.
func (c *Collection[T]) SubmitEdit(ctx context.Context, item T) error {
	edit, ok := c.Pending()
	if !ok {
		return shared.ErrNoPendingEdit
	}

	action := "update"
	call := func(ctx context.Context) error { return c.remote.Update(ctx, edit.ID, item) }
	if edit.Creating() {
		action = "add"
		call = func(ctx context.Context) error {
			_, err := c.remote.Create(ctx, item)
			return err
		}
	}

	if err := c.call(ctx, action, call); err != nil {
		return err
	}

	c.mu.Lock()
	if c.pending != nil && *c.pending == edit {
		c.pending = nil
	}
	c.mu.Unlock()

	return c.Load(ctx)
}

// ApplyDelta mutates the item with id in place and patches that row.
// Unknown ids are discarded and reported as false.
func (c *Collection[T]) ApplyDelta(id string, fn func(*T)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.items, id)
	if i < 0 {
		c.logger.Debug("delta for unknown id discarded", "id", id)
		return false
	}
	fn(&c.items[i])
	c.observer.Patch(i, c.items[i])
	return true
}

// call runs a server mutation; failures are logged and notified.
func (c *Collection[T]) call(ctx context.Context, action string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		c.fail(fmt.Sprintf("failed to %s %s", action, c.name), err)
		return err
	}
	c.logger.Info("saved", "action", action)
	return nil
}

func (c *Collection[T]) fail(msg string, err error) {
	c.logger.Error(msg, "error", err)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer.Notify(Notification{Level: LevelError, Message: msg, Err: err})
}

func (c *Collection[T]) notify(level Level, msg string) {
	c.observer.Notify(Notification{Level: level, Message: msg})
}

func ids[T models.Item](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ItemID()
	}
	return out
}

func indexOf[T models.Item](items []T, id string) int {
	return slices.IndexFunc(items, func(it T) bool { return it.ItemID() == id })
}

// arrange returns items in the literal order of order. Unknown ids are skipped;
// items missing from order keep their relative position at the end.
func arrange[T models.Item](items []T, order []string) []T {
	byID := make(map[string]T, len(items))
	for _, it := range items {
		byID[it.ItemID()] = it
	}

	out := make([]T, 0, len(items))
	placed := make(map[string]bool, len(order))
	for _, id := range order {
		it, ok := byID[id]
		if !ok || placed[id] {
			continue
		}
		placed[id] = true
		out = append(out, it)
	}
	for _, it := range items {
		if !placed[it.ItemID()] {
			out = append(out, it)
		}
	}
	return out
}
