package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/homedeck/internal/collection"
	"github.com/desertthunder/homedeck/internal/models"
)

// rowsTop is the screen line of the first row: a title line and its margin.
const rowsTop = 2

// board is a [collection.Observer] that buffers changes for the bubbletea loop.
//
// Collections call it from whichever goroutine ran the operation; the UI drains
// it from Update after a [MsgCollectionChanged] wakes it.
type board[T models.Item] struct {
	mu       sync.Mutex
	items    []T
	rendered bool
	patched  map[int]bool
	notes    []collection.Notification
	dirty    chan struct{}
}

// frame is everything a board collected since the last take.
type frame[T models.Item] struct {
	items    []T
	rendered bool
	patched  []int
	notes    []collection.Notification
}

func newBoard[T models.Item]() *board[T] {
	return &board[T]{patched: map[int]bool{}, dirty: make(chan struct{}, 1)}
}

func (b *board[T]) Render(items []T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = items
	b.rendered = true
	clear(b.patched)
	b.signal()
}

func (b *board[T]) Patch(index int, item T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.items) {
		return
	}
	b.items[index] = item
	if !b.rendered {
		b.patched[index] = true
	}
	b.signal()
}

func (b *board[T]) Notify(n collection.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notes = append(b.notes, n)
	b.signal()
}

func (b *board[T]) signal() {
	select {
	case b.dirty <- struct{}{}:
	default:
	}
}

// take drains the buffered changes.
func (b *board[T]) take() frame[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	f := frame[T]{items: slices.Clone(b.items), rendered: b.rendered, notes: b.notes}
	for i := range b.patched {
		f.patched = append(f.patched, i)
	}
	slices.Sort(f.patched)

	b.rendered = false
	b.notes = nil
	clear(b.patched)
	return f
}

// wait blocks until the board has changes.
func (b *board[T]) wait() tea.Cmd {
	return func() tea.Msg {
		<-b.dirty
		return collectionChangedMsg()
	}
}

// rowsView is the list half of the links and devices screens. It mirrors one
// collection through a board, keeps a per-row render cache and turns pointer and
// key gestures into collection commands.
type rowsView[T models.Item] struct {
	ctx   context.Context
	coll  *collection.Collection[T]
	board *board[T]
	// renderRow draws one row without cursor or drag decoration.
	renderRow func(T) string

	items  []T
	rows   []string
	cursor int
	note   *collection.Notification

	renders int
	patches int
}

func newRowsView[T models.Item](ctx context.Context, coll *collection.Collection[T], b *board[T], renderRow func(T) string) *rowsView[T] {
	return &rowsView[T]{ctx: ctx, coll: coll, board: b, renderRow: renderRow}
}

// sync applies buffered collection changes to the row cache. A full render
// redraws every row; patches redraw only their rows.
func (v *rowsView[T]) sync() {
	f := v.board.take()

	switch {
	case f.rendered:
		v.items = f.items
		v.redraw()
		v.renders++
	case len(f.patched) > 0:
		for _, i := range f.patched {
			if i < len(v.items) && i < len(f.items) {
				v.items[i] = f.items[i]
				v.rows[i] = v.renderRow(v.items[i])
				v.patches++
			}
		}
	}

	if n := len(f.notes); n > 0 {
		v.note = &f.notes[n-1]
	}
	v.cursor = max(0, min(v.cursor, len(v.items)-1))
}

// redraw rebuilds every cached row, e.g. after a theme change.
func (v *rowsView[T]) redraw() {
	v.rows = make([]string, len(v.items))
	for i, it := range v.items {
		v.rows[i] = v.renderRow(it)
	}
}

func (v *rowsView[T]) selected() (T, bool) {
	if v.cursor < 0 || v.cursor >= len(v.items) {
		var zero T
		return zero, false
	}
	return v.items[v.cursor], true
}

func (v *rowsView[T]) setNote(level collection.Level, msg string, err error) {
	v.note = &collection.Notification{Level: level, Message: msg, Err: err}
}

func (v *rowsView[T]) move(delta int) {
	v.cursor = max(0, min(v.cursor+delta, len(v.items)-1))
}

// dispatch runs a command that touches the network as a [tea.Cmd].
func (v *rowsView[T]) dispatch(action string, cmd collection.Command) tea.Cmd {
	return func() tea.Msg {
		return savedMsg(action, v.coll.Dispatch(v.ctx, cmd))
	}
}

// boxes lays out order as rendered: one line per row below the title.
func boxes(order []string) []collection.Box {
	out := collection.UnitBoxes(order)
	for i := range out {
		out[i].Top += rowsTop
	}
	return out
}

// handleMouse maps a left-button press, drag and release to a drag gesture.
func (v *rowsView[T]) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		i := msg.Y - rowsTop
		if i < 0 || i >= len(v.items) {
			return nil
		}
		v.cursor = i
		if err := v.coll.Dispatch(v.ctx, collection.DragStartCommand{ID: v.items[i].ItemID()}); err != nil {
			v.setNote(collection.LevelError, "cannot drag", err)
		}
	case tea.MouseActionMotion:
		d, ok := v.coll.Drag()
		if !ok {
			return nil
		}
		v.dragOver(float64(msg.Y), boxes(d.Layout))
	case tea.MouseActionRelease:
		return v.drop()
	}
	return nil
}

// handleDragKey moves a grabbed row one place per key press.
func (v *rowsView[T]) handleDragKey(delta int) {
	d, ok := v.coll.Drag()
	if !ok {
		return
	}
	i := slices.Index(d.Layout, d.ID)
	target := i + delta
	if delta > 0 {
		target = i + delta + 1
	}
	if target < 0 {
		return
	}
	// target is the row to land before; past the end means append.
	v.dragOver(float64(min(target, len(d.Layout))), collection.UnitBoxes(d.Layout))
}

func (v *rowsView[T]) dragOver(y float64, b []collection.Box) {
	if err := v.coll.Dispatch(v.ctx, collection.DragOverCommand{Y: y, Boxes: b}); err != nil {
		v.setNote(collection.LevelError, "drag failed", err)
		return
	}
	if d, ok := v.coll.Drag(); ok {
		v.cursor = slices.Index(d.Layout, d.ID)
	}
}

// grab starts a keyboard drag of the selected row.
func (v *rowsView[T]) grab() {
	it, ok := v.selected()
	if !ok {
		return
	}
	if err := v.coll.Dispatch(v.ctx, collection.DragStartCommand{ID: it.ItemID()}); err != nil {
		v.setNote(collection.LevelError, "cannot drag", err)
	}
}

// drop commits the drag and returns the persist command when the order changed.
func (v *rowsView[T]) drop() tea.Cmd {
	d, ok := v.coll.Drag()
	if !ok {
		return nil
	}

	r, changed := v.coll.Drop()
	v.coll.DragEnd()
	v.sync()
	v.follow(d.ID)
	if !changed {
		return nil
	}
	return func() tea.Msg {
		return savedMsg("reorder", v.coll.Persist(v.ctx, r))
	}
}

// cancelDrag abandons the gesture without changing the order.
func (v *rowsView[T]) cancelDrag() {
	d, ok := v.coll.Drag()
	if !ok {
		return
	}
	_ = v.coll.Dispatch(v.ctx, collection.DragEndCommand{})
	v.follow(d.ID)
}

// follow puts the cursor on id.
func (v *rowsView[T]) follow(id string) {
	if i := slices.IndexFunc(v.items, func(it T) bool { return it.ItemID() == id }); i >= 0 {
		v.cursor = i
	}
}

func (v *rowsView[T]) dragging() bool {
	_, ok := v.coll.Drag()
	return ok
}

// view draws the rows, in live drag order while a drag is in progress.
func (v *rowsView[T]) view(p *Palette, empty string) string {
	if len(v.items) == 0 {
		return p.help.Render(empty) + "\n"
	}

	index := make(map[string]int, len(v.items))
	for i, it := range v.items {
		index[it.ItemID()] = i
	}

	order := make([]string, len(v.items))
	for i, it := range v.items {
		order[i] = it.ItemID()
	}
	d, dragging := v.coll.Drag()
	if dragging {
		order = d.Layout
	}

	var b strings.Builder
	for pos, id := range order {
		i, ok := index[id]
		if !ok {
			continue
		}
		row := v.rows[i]
		switch {
		case dragging && id == d.ID:
			b.WriteString(p.dragging.Render("≡ " + row))
		case pos == v.cursor:
			b.WriteString(p.cursor.Render("> ") + row)
		default:
			b.WriteString("  " + row)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// noteView renders the latest notification line.
func (v *rowsView[T]) noteView(p *Palette) string {
	if v.note == nil {
		return ""
	}
	return p.note(*v.note)
}

// savedNote reports a finished network command. Failures were already
// notified by the collection.
func (v *rowsView[T]) savedNote(r savedResult) {
	if r.err == nil && r.action != "load" {
		v.setNote(collection.LevelInfo, fmt.Sprintf("%s %s: ok", v.coll.Name(), r.action), nil)
	}
}
