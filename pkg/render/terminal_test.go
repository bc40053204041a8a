package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/tallycalc/tally/pkg/engine"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestFrame(t *testing.T) {
	got := Frame(engine.Snapshot{Display: "81", Operator: engine.Multiply}, 8)
	want := "┌──────┐\n" +
		"│    81│\n" +
		"└──────┘\n" +
		" +   -   x   ÷ \n"
	if got != want {
		t.Errorf("Frame() =\n%s\nwant\n%s", got, want)
	}
}

func TestFrameHighlightsSelected(t *testing.T) {
	tests := []struct {
		name string
		snap engine.Snapshot
		want string
	}{
		{
			name: "operator just pressed",
			snap: engine.Snapshot{Display: "12", Operator: engine.Add, Selected: engine.Add},
			want: "[+]  -   x   ÷ ",
		},
		{
			name: "right operand typed",
			snap: engine.Snapshot{Display: "3", Operator: engine.Add},
			want: " +   -   x   ÷ ",
		},
		{
			name: "divide",
			snap: engine.Snapshot{Display: "8", Operator: engine.Divide, Selected: engine.Divide},
			want: " +   -   x  [÷]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := strings.Split(Frame(tt.snap, 8), "\n")
			if lines[3] != tt.want {
				t.Errorf("operator row = %q, want %q", lines[3], tt.want)
			}
		})
	}
}

func TestFrameTruncatesLeft(t *testing.T) {
	got := Frame(engine.Snapshot{Display: "9.99999998E+17"}, 8)
	lines := strings.Split(got, "\n")
	if lines[1] != "│98E+17│" {
		t.Errorf("display line = %q, want %q", lines[1], "│98E+17│")
	}
}

func TestTerminalUpdateWrites(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)
	term.SetFooter("q to quit")
	term.Update(engine.Snapshot{Display: "Error", Error: true})

	out := buf.String()
	if !strings.Contains(out, "Error") {
		t.Errorf("output %q does not contain the display", out)
	}
	if !strings.Contains(out, "q to quit") {
		t.Errorf("output %q does not contain the footer", out)
	}
}
