package collection

import (
	"context"
	"fmt"
)

// Command is one user intent routed through [Collection.Dispatch].
type Command interface {
	command()
}

type (
	LoadCommand          struct{}
	SubmitCommand[T any] struct{ Item T }
	DeleteCommand        struct{ ID string }
	BeginEditCommand     struct{ ID string }
	CancelEditCommand    struct{}
	DragStartCommand     struct{ ID string }
	DragOverCommand      struct {
		Y     float64
		Boxes []Box
	}
	// DropCommand drops, ends the drag and persists in one step.
	DropCommand    struct{}
	DragEndCommand struct{}
	MoveCommand    struct{ ID, Before string }
)

func (LoadCommand) command()       {}
func (SubmitCommand[T]) command()  {}
func (DeleteCommand) command()     {}
func (BeginEditCommand) command()  {}
func (CancelEditCommand) command() {}
func (DragStartCommand) command()  {}
func (DragOverCommand) command()   {}
func (DropCommand) command()       {}
func (DragEndCommand) command()    {}
func (MoveCommand) command()       {}

// Dispatch routes cmd to the matching operation.
func (c *Collection[T]) Dispatch(ctx context.Context, cmd Command) error {
	switch cmd := cmd.(type) {
	case LoadCommand:
		return c.Load(ctx)
	case SubmitCommand[T]:
		return c.SubmitEdit(ctx, cmd.Item)
	case DeleteCommand:
		return c.Delete(ctx, cmd.ID)
	case BeginEditCommand:
		_, err := c.BeginEdit(cmd.ID)
		return err
	case CancelEditCommand:
		c.CancelEdit()
		return nil
	case DragStartCommand:
		return c.DragStart(cmd.ID)
	case DragOverCommand:
		_, err := c.DragOver(cmd.Y, cmd.Boxes)
		return err
	case DropCommand:
		r, changed := c.Drop()
		c.DragEnd()
		if !changed {
			return nil
		}
		return c.Persist(ctx, r)
	case DragEndCommand:
		c.DragEnd()
		return nil
	case MoveCommand:
		return c.Move(ctx, cmd.ID, cmd.Before)
	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
}
