package keypad

import (
	"errors"
	"testing"

	"github.com/tallycalc/tally/pkg/engine"
)

func TestParse(t *testing.T) {
	tests := []struct {
		key  string
		want engine.Event
	}{
		{"7", engine.Digit(7)},
		{".", engine.Point()},
		{"+", engine.Op(engine.Add)},
		{"-", engine.Op(engine.Subtract)},
		{"x", engine.Op(engine.Multiply)},
		{"*", engine.Op(engine.Multiply)},
		{"÷", engine.Op(engine.Divide)},
		{"/", engine.Op(engine.Divide)},
		{"=", engine.Equals()},
		{"AC", engine.Clear()},
		{"ac", engine.Clear()},
		{"+/-", engine.SignToggle()},
		{"±", engine.SignToggle()},
		{"%", engine.Percent()},
		{"DEL", engine.Backspace()},
		{" 3 ", engine.Digit(3)},
	}
	for _, tt := range tests {
		got, err := Parse(tt.key)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.key, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestParseUnknown(t *testing.T) {
	for _, key := range []string{"", "q", "12", "sqrt"} {
		if _, err := Parse(key); !errors.Is(err, ErrUnknownKey) {
			t.Errorf("Parse(%q) error = %v, want ErrUnknownKey", key, err)
		}
	}
}

func TestParseSequence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12+3=", "12+3="},
		{"AC 5 ÷ 0 =", "AC5÷0="},
		{"9*9==", "9x9=="},
		{"5+/-", "5+/-"},
		{"1.5 DEL", "1.5DEL"},
		{"200+50%", "200+50%"},
		{"enter", "="},
		{"c", "AC"},
	}
	for _, tt := range tests {
		events, err := ParseSequence(tt.in)
		if err != nil {
			t.Errorf("ParseSequence(%q) error: %v", tt.in, err)
			continue
		}
		got := ""
		for _, ev := range events {
			got += ev.String()
		}
		if got != tt.want {
			t.Errorf("ParseSequence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseSequenceUnknown(t *testing.T) {
	_, err := ParseSequence("1+q")
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("ParseSequence error = %v, want ErrUnknownKey", err)
	}
}

func TestFromRuneTerminalKeys(t *testing.T) {
	tests := []struct {
		r    rune
		want engine.Event
	}{
		{'\r', engine.Equals()},
		{0x7f, engine.Backspace()},
		{0x08, engine.Backspace()},
		{0x1b, engine.Clear()},
	}
	for _, tt := range tests {
		got, ok := FromRune(tt.r)
		if !ok || got != tt.want {
			t.Errorf("FromRune(%#x) = %v, %t; want %v", tt.r, got, ok, tt.want)
		}
	}
	if _, ok := FromRune('q'); ok {
		t.Errorf("FromRune('q') ok = true, want false")
	}
}

func TestSequenceDrivesEngine(t *testing.T) {
	events, err := ParseSequence("9 x 9 = =")
	if err != nil {
		t.Fatal(err)
	}
	e := engine.New()
	for _, ev := range events {
		e.Apply(ev)
	}
	if got := e.Display(); got != "729" {
		t.Errorf("Display() = %q, want %q", got, "729")
	}
}
