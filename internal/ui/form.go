package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// field is one labelled text input.
type field struct {
	label string
	input textinput.Model
}

// form is a modal of text inputs used for add and edit.
type form struct {
	title  string
	fields []field
	focus  int
	err    string
	busy   bool
}

// fieldSpec describes one form input.
type fieldSpec struct {
	label    string
	value    string
	secret   bool
	optional bool
}

func newForm(title string, specs ...fieldSpec) *form {
	f := &form{title: title}
	for _, s := range specs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		in.Width = 48
		in.SetValue(s.value)
		if s.optional {
			in.Placeholder = "optional"
		}
		if s.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.fields = append(f.fields, field{label: s.label, input: in})
	}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

// formEvent is what a key press did to the form.
type formEvent int

const (
	formEditing formEvent = iota
	formSubmitted
	formCancelled
)

// Update handles a key press.
func (f *form) Update(msg tea.KeyMsg) (formEvent, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return formCancelled, nil
	case "enter":
		if f.busy {
			return formEditing, nil
		}
		return formSubmitted, nil
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return formEditing, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return formEditing, nil
	}

	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return formEditing, cmd
}

func (f *form) setFocus(i int) {
	n := len(f.fields)
	if n == 0 {
		return
	}
	f.fields[f.focus].input.Blur()
	f.focus = (i%n + n) % n
	f.fields[f.focus].input.Focus()
}

// value returns the trimmed value of field i.
func (f *form) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

func (f *form) View(p *Palette) string {
	var b strings.Builder
	b.WriteString(p.title.Render(f.title))
	b.WriteString("\n")

	width := 0
	for _, fd := range f.fields {
		width = max(width, len(fd.label))
	}
	for i, fd := range f.fields {
		label := fmt.Sprintf("%-*s", width, fd.label)
		if i == f.focus {
			label = p.cursor.Render(label)
		} else {
			label = p.text.Render(label)
		}
		fmt.Fprintf(&b, "%s  %s\n", label, fd.input.View())
	}

	switch {
	case f.busy:
		b.WriteString("\n" + p.help.Render("saving..."))
	case f.err != "":
		b.WriteString("\n" + p.err.Render(f.err))
	}
	return b.String()
}
