package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/tallycalc/tally/pkg/engine"
	"github.com/tallycalc/tally/pkg/events"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--daemon-socket", filepath.Join(t.TempDir(), "none.sock")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestEvalCommand(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{name: "chained", args: []string{"eval", "2+3x4="}, want: "20\n"},
		{name: "spaced args", args: []string{"eval", "12", "+", "3", "="}, want: "15\n"},
		{name: "precision", args: []string{"eval", "--precision", "3", "2/3="}, want: "0.667\n"},
		{name: "max digits", args: []string{"eval", "--max-digits", "2", "12345"}, want: "12\n"},
		{name: "stdin", stdin: "9x9=\n", args: []string{"eval"}, want: "81\n"},
		{name: "divide by zero", args: []string{"eval", "1/0="}, want: engine.ErrorText + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runCommand(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("eval returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvalTrace(t *testing.T) {
	got, err := runCommand(t, "", "eval", "--trace", "5+5=")
	if err != nil {
		t.Fatal(err)
	}
	want := "5    5\n+    5\n5    5\n=    10\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestEvalRejects(t *testing.T) {
	if _, err := runCommand(t, "", "eval", "1+q"); err == nil {
		t.Errorf("eval accepted an unknown key")
	}
	if _, err := runCommand(t, "", "eval", "--max-digits", "0", "1"); err == nil {
		t.Errorf("eval accepted max digits 0")
	}
	if _, err := runCommand(t, "", "eval", "--precision", "16", "1"); err == nil {
		t.Errorf("eval accepted precision 16")
	}
}

func TestPressWithoutDaemon(t *testing.T) {
	if _, err := runCommand(t, "", "press", "1"); err == nil {
		t.Errorf("press succeeded without a daemon")
	}
}

func TestReplLoop(t *testing.T) {
	e := engine.New()
	press := func(ev engine.Event) error {
		e.Apply(ev)
		return nil
	}

	// 'z' is not a key and everything after 'q' is ignored.
	if err := replLoop(strings.NewReader("12z+3\rq45"), press); err != nil {
		t.Fatal(err)
	}
	if got := e.Display(); got != "15" {
		t.Errorf("display = %q, want 15", got)
	}

	e.Clear()
	if err := replLoop(strings.NewReader("7x6"), press); err != nil {
		t.Fatalf("replLoop at EOF returned %v", err)
	}
	if got := e.Display(); got != "6" {
		t.Errorf("display = %q, want 6", got)
	}
}

func TestReplLoopPressError(t *testing.T) {
	boom := errors.New("boom")
	err := replLoop(strings.NewReader("1"), func(engine.Event) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("replLoop error = %v, want %v", err, boom)
	}
}

func TestWatch(t *testing.T) {
	ch := make(chan events.Event, 3)
	ch <- events.Event{Name: events.DisplayUpdate, Data: []byte(`{"display":"12","operator":"+","selected":"+"}`)}
	ch <- events.Event{Name: events.SessionClear, Data: []byte(`{"reason":"schedule"}`)}
	ch <- events.Event{Name: events.DisplayUpdate, Data: []byte(`{"display":"Error","error":true}`)}
	close(ch)

	var got []engine.Snapshot
	sink := engine.SinkFunc(func(s engine.Snapshot) { got = append(got, s) })
	if err := watch(context.Background(), ch, sink); err != nil {
		t.Fatal(err)
	}

	want := []engine.Snapshot{
		{Display: "12", Operator: engine.Add, Selected: engine.Add},
		{Display: "Error", Error: true},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d snapshots, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("snapshot %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCRLFWriter(t *testing.T) {
	var b bytes.Buffer
	w := &crlfWriter{w: &b}
	n, err := w.Write([]byte("a\nb\n"))
	if err != nil || n != 4 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if b.String() != "a\r\nb\r\n" {
		t.Errorf("wrote %q", b.String())
	}
}
