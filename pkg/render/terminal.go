// Package render draws calculator snapshots on a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/gosuri/uilive"

	"github.com/tallycalc/tally/pkg/engine"
)

const DefaultWidth = 18

var (
	frameColor    = color.New(color.Faint)
	displayColor  = color.New(color.Bold)
	errorColor    = color.New(color.Bold, color.FgRed)
	operatorColor = color.New(color.FgYellow)
	selectedColor = color.New(color.Bold, color.ReverseVideo, color.FgYellow)
)

// Terminal is an engine.Sink that redraws the calculator in place.
type Terminal struct {
	mu     sync.Mutex
	w      *uilive.Writer
	width  int
	footer string
}

var _ engine.Sink = &Terminal{}

func NewTerminal(out io.Writer) *Terminal {
	w := uilive.New()
	w.Out = out
	w.RefreshInterval = time.Millisecond * 50
	return &Terminal{w: w, width: DefaultWidth}
}

// SetFooter sets a help line printed under the keypad.
func (t *Terminal) SetFooter(s string) {
	t.mu.Lock()
	t.footer = s
	t.mu.Unlock()
}

func (t *Terminal) Start() { t.w.Start() }

// Stop flushes the last frame and stops redrawing.
func (t *Terminal) Stop() { t.w.Stop() }

func (t *Terminal) Update(s engine.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	frame := Frame(s, t.width)
	if t.footer != "" {
		frame += t.footer + "\n"
	}
	fmt.Fprint(t.w, frame)
	_ = t.w.Flush()
}

// Frame renders s as a boxed display followed by the operator row with the
// selected operator highlighted.
func Frame(s engine.Snapshot, width int) string {
	if width < 3 {
		width = 3
	}
	inner := width - 2

	text := s.Display
	if n := utf8.RuneCountInString(text); n > inner {
		// Keep the least significant end visible.
		text = string([]rune(text)[n-inner:])
	}
	pad := strings.Repeat(" ", inner-utf8.RuneCountInString(text))

	shown := displayColor.Sprint(text)
	if s.Error {
		shown = errorColor.Sprint(text)
	}

	var b strings.Builder
	b.WriteString(frameColor.Sprint("┌" + strings.Repeat("─", inner) + "┐"))
	b.WriteString("\n")
	b.WriteString(frameColor.Sprint("│") + pad + shown + frameColor.Sprint("│"))
	b.WriteString("\n")
	b.WriteString(frameColor.Sprint("└" + strings.Repeat("─", inner) + "┘"))
	b.WriteString("\n")
	b.WriteString(OperatorRow(s.Selected))
	b.WriteString("\n")
	return b.String()
}

// OperatorRow lists the operators, highlighting selected. The selected
// cell is bracketed so it still shows without color.
func OperatorRow(selected engine.Operator) string {
	cells := make([]string, 0, len(engine.Operators))
	for _, op := range engine.Operators {
		if op == selected {
			cells = append(cells, selectedColor.Sprint("["+op.String()+"]"))
		} else {
			cells = append(cells, operatorColor.Sprint(" "+op.String()+" "))
		}
	}
	return strings.Join(cells, " ")
}
