// Package keypad maps key labels and terminal keystrokes to engine events.
package keypad

import (
	"errors"
	"strings"
	"unicode"

	pkgerrors "github.com/pkg/errors"

	"github.com/tallycalc/tally/pkg/engine"
)

// ErrUnknownKey is returned for labels that are not on the keypad.
var ErrUnknownKey = errors.New("unknown key")

// multi-character labels, matched before single runes.
var words = map[string]engine.Event{
	"AC":    engine.Clear(),
	"C":     engine.Clear(),
	"DEL":   engine.Backspace(),
	"+/-":   engine.SignToggle(),
	"NEG":   engine.SignToggle(),
	"ENTER": engine.Equals(),
}

// longest first, so "+/-" wins over "+".
var wordOrder = []string{"ENTER", "+/-", "DEL", "NEG", "AC", "C"}

const (
	keyBackspace = 0x7f
	keyCtrlH     = 0x08
	keyEscape    = 0x1b
)

// FromRune classifies one keystroke. Besides the printed labels it accepts
// enter for equals, escape for clear and the terminal backspace codes.
func FromRune(r rune) (engine.Event, bool) {
	switch {
	case r >= '0' && r <= '9':
		return engine.Digit(int(r - '0')), true
	case r == '.' || r == ',':
		return engine.Point(), true
	case r == '=' || r == '\r' || r == '\n':
		return engine.Equals(), true
	case r == '%':
		return engine.Percent(), true
	case r == '±' || r == 'n' || r == 'N':
		return engine.SignToggle(), true
	case r == 'c' || r == 'C' || r == keyEscape:
		return engine.Clear(), true
	case r == keyBackspace || r == keyCtrlH:
		return engine.Backspace(), true
	}
	if op, ok := engine.ParseOperator(string(r)); ok && op != engine.None {
		return engine.Op(op), true
	}
	return engine.Event{}, false
}

// Parse classifies a single key label such as "7", "x", "AC" or "+/-".
func Parse(key string) (engine.Event, error) {
	k := strings.TrimSpace(key)
	if ev, ok := words[strings.ToUpper(k)]; ok {
		return ev, nil
	}
	r := []rune(k)
	if len(r) == 1 {
		if ev, ok := FromRune(r[0]); ok {
			return ev, nil
		}
	}
	return engine.Event{}, pkgerrors.Wrapf(ErrUnknownKey, "%q", key)
}

// ParseSequence splits a string of keys into events, e.g. "12+3=" or
// "AC 5 ÷ 0 =". Whitespace separates nothing and is skipped.
func ParseSequence(s string) ([]engine.Event, error) {
	var events []engine.Event
	rest := s
	for rest != "" {
		r := []rune(rest)
		if unicode.IsSpace(r[0]) {
			rest = string(r[1:])
			continue
		}

		matched := false
		for _, w := range wordOrder {
			if len(rest) >= len(w) && strings.EqualFold(rest[:len(w)], w) && wordBoundary(rest[len(w):], w) {
				events = append(events, words[w])
				rest = rest[len(w):]
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		ev, ok := FromRune(r[0])
		if !ok {
			return nil, pkgerrors.Wrapf(ErrUnknownKey, "%q at offset %d", string(r[0]), len(s)-len(rest))
		}
		events = append(events, ev)
		rest = string(r[1:])
	}
	return events, nil
}

// wordBoundary keeps alphabetic labels from swallowing the start of a
// longer word, so "CE" is not read as "C" followed by "E".
func wordBoundary(after, word string) bool {
	if !unicode.IsLetter(rune(word[len(word)-1])) || after == "" {
		return true
	}
	next := []rune(after)[0]
	return !unicode.IsLetter(next)
}
