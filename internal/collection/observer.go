package collection

import "github.com/desertthunder/homedeck/internal/models"

// Level is the severity of a [Notification].
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a user-facing, non-fatal message.
type Notification struct {
	Level   Level
	Message string
	Err     error
}

func (n Notification) String() string {
	if n.Err != nil {
		return n.Message + ": " + n.Err.Error()
	}
	return n.Message
}

// Observer renders collection changes.
//
// Methods run with the collection lock held and must not call back into the Collection.
type Observer[T models.Item] interface {
	// Render redraws the whole list.
	Render(items []T)
	// Patch redraws the single row at index.
	Patch(index int, item T)
	// Notify surfaces a message to the user.
	Notify(n Notification)
}

// NopObserver ignores every call.
type NopObserver[T models.Item] struct{}

func (NopObserver[T]) Render([]T)          {}
func (NopObserver[T]) Patch(int, T)        {}
func (NopObserver[T]) Notify(Notification) {}

// FuncObserver adapts plain functions; nil fields are skipped.
type FuncObserver[T models.Item] struct {
	OnRender func(items []T)
	OnPatch  func(index int, item T)
	OnNotify func(n Notification)
}

func (f FuncObserver[T]) Render(items []T) {
	if f.OnRender != nil {
		f.OnRender(items)
	}
}

func (f FuncObserver[T]) Patch(index int, item T) {
	if f.OnPatch != nil {
		f.OnPatch(index, item)
	}
}

func (f FuncObserver[T]) Notify(n Notification) {
	if f.OnNotify != nil {
		f.OnNotify(n)
	}
}
