// Package engine implements the calculator keypad state machine. It evaluates
// a running left-to-right expression one press at a time and reports the
// text to display after every press.
//
// An Engine is not safe for concurrent use. Callers that share one between
// goroutines must serialize access.
package engine

import (
	"math"
	"strconv"
	"strings"
)

const (
	// ErrorText is displayed while the engine is frozen after a fault.
	ErrorText = "Error"

	DefaultMaxDigits = 9
	DefaultPrecision = 15
)

type phase int

const (
	// phaseReady: the next digit starts a fresh number.
	phaseReady phase = iota
	// phaseEntering: digits are appended to the display.
	phaseEntering
	// phaseResult: the display holds a just-evaluated result.
	phaseResult
	// phaseError: frozen until cleared.
	phaseError
)

// Snapshot is what a renderer needs to draw the calculator.
type Snapshot struct {
	Display  string   `json:"display"`
	Operator Operator `json:"operator"`
	// Selected is the operator key to highlight. It is the pending operator
	// until the right operand is typed or equals is pressed.
	Selected Operator `json:"selected"`
	Error    bool     `json:"error"`
}

// Sink receives a snapshot after every processed event.
type Sink interface {
	Update(Snapshot)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Snapshot)

func (f SinkFunc) Update(s Snapshot) { f(s) }

type Engine struct {
	accumulator   float64
	pending       Operator
	selected      Operator
	display       string
	phase         phase
	repeatOperand float64
	// pendingNegative means a sign was chosen before any magnitude; the
	// display reads "-0".
	pendingNegative bool

	maxDigits int
	precision int
	sinks     []Sink
}

type Option func(*Engine)

// WithMaxDigits limits how many digits can be typed into one number.
func WithMaxDigits(n int) Option {
	return func(e *Engine) { e.SetMaxDigits(n) }
}

// WithPrecision sets the number of fractional digits results are rounded to.
func WithPrecision(n int) Option {
	return func(e *Engine) { e.SetPrecision(n) }
}

func WithSink(s Sink) Option {
	return func(e *Engine) { e.Subscribe(s) }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		maxDigits: DefaultMaxDigits,
		precision: DefaultPrecision,
	}
	e.reset()
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) SetMaxDigits(n int) {
	if n > 0 {
		e.maxDigits = n
	}
}

func (e *Engine) SetPrecision(n int) {
	if n >= 0 {
		e.precision = n
	}
}

func (e *Engine) Subscribe(s Sink) {
	if s != nil {
		e.sinks = append(e.sinks, s)
	}
}

// Display returns the text to show.
func (e *Engine) Display() string {
	switch {
	case e.phase == phaseError:
		return ErrorText
	case e.pendingNegative:
		return "-0"
	}
	return e.display
}

// PendingOperator returns the operator awaiting a right operand, if any.
func (e *Engine) PendingOperator() Operator { return e.pending }

func (e *Engine) Errored() bool { return e.phase == phaseError }

// AwaitingNewEntry reports whether the next digit replaces the display.
func (e *Engine) AwaitingNewEntry() bool {
	return e.phase == phaseReady || e.phase == phaseResult
}

// ResultShown reports whether the display holds a result not yet consumed.
// It is also true right after an evaluation, when a further equals press
// repeats the last operation.
func (e *Engine) ResultShown() bool { return e.phase == phaseResult }

func (e *Engine) Accumulator() float64 { return e.accumulator }

func (e *Engine) State() Snapshot {
	return Snapshot{
		Display:  e.Display(),
		Operator: e.pending,
		Selected: e.selected,
		Error:    e.phase == phaseError,
	}
}

// Apply dispatches one event. Malformed events are ignored.
func (e *Engine) Apply(ev Event) {
	switch ev.Kind {
	case KindDigit:
		e.EnterDigit(ev.Digit)
	case KindPoint:
		e.EnterPoint()
	case KindOperator:
		e.SelectOperator(ev.Operator)
	case KindEquals:
		e.Evaluate()
	case KindClear:
		e.Clear()
	case KindSignToggle:
		e.ToggleSign()
	case KindPercent:
		e.Percent()
	case KindBackspace:
		e.Backspace()
	}
}

func (e *Engine) EnterDigit(d int) {
	if d < 0 || d > 9 {
		return
	}
	e.enter(byte('0' + d))
}

func (e *Engine) EnterPoint() {
	e.enter('.')
}

func (e *Engine) enter(sym byte) {
	defer e.notify()

	if e.phase == phaseError || e.phase == phaseResult {
		e.reset()
	}
	e.selected = None

	if e.pendingNegative {
		if sym == '.' {
			e.setDisplay("-0.")
		} else {
			e.setDisplay("-" + string(sym))
		}
		e.phase = phaseEntering
		return
	}

	entering := e.phase == phaseEntering
	if entering && sym == '.' && strings.Contains(e.display, ".") {
		return
	}
	if entering && sym == '0' && e.display == "0" {
		return
	}

	if entering && countDigits(e.display) >= e.maxDigits {
		return
	}

	if !entering || e.display == "0" {
		if sym == '.' {
			e.setDisplay("0.")
		} else {
			e.setDisplay(string(sym))
		}
	} else {
		e.setDisplay(e.display + string(sym))
	}
	e.phase = phaseEntering
}

// SelectOperator chooses the next operation. A number being typed is first
// folded into the accumulator, evaluating any operation already pending.
func (e *Engine) SelectOperator(op Operator) {
	defer e.notify()

	if e.phase == phaseError || op == None {
		return
	}
	if _, ok := operatorGlyphs[op]; !ok {
		return
	}

	switch e.phase {
	case phaseEntering:
		v := e.value()
		if e.pending != None {
			if !e.apply(v) {
				return
			}
		} else {
			e.accumulator = v
		}
	case phaseResult:
		e.accumulator = e.value()
	}

	e.pending = op
	e.selected = op
	e.phase = phaseReady
}

// Evaluate is the equals key. Pressed again right after a result, it
// reapplies the last operator with the last right operand.
func (e *Engine) Evaluate() {
	defer e.notify()

	if e.phase == phaseError {
		return
	}
	e.selected = None
	if e.pending == None {
		return
	}

	right := e.repeatOperand
	if e.phase != phaseResult {
		right = e.value()
	}
	if !e.apply(right) {
		return
	}
	e.repeatOperand = right
	e.phase = phaseResult
}

func (e *Engine) Clear() {
	defer e.notify()
	e.reset()
}

func (e *Engine) ToggleSign() {
	defer e.notify()

	switch {
	case e.phase == phaseError:
	case e.pendingNegative:
		e.pendingNegative = false
	case e.display == "0":
		e.pendingNegative = true
	case e.phase == phaseReady:
		// Sign typed before any digit of a fresh number.
		e.setDisplay("-0")
		e.phase = phaseEntering
	default:
		v := e.value()
		if v == 0 {
			e.setDisplay("-0")
			return
		}
		e.setDisplay(FormatNumber(-v))
	}
}

// Percent converts the display to a percentage. While the right operand of
// an addition or subtraction is being typed, it is taken as a percentage of
// the accumulator.
func (e *Engine) Percent() {
	defer e.notify()

	if e.phase == phaseError {
		return
	}

	entering := e.phase == phaseEntering
	v := e.value()
	if entering && e.pending.additive() {
		v = e.accumulator * v / 100
	} else {
		v /= 100
	}

	v, ok := e.settle(v)
	if !ok {
		return
	}
	e.setDisplay(FormatNumber(v))
	if e.pending == None || !entering {
		e.accumulator = v
	}
	e.await()
}

func (e *Engine) Backspace() {
	defer e.notify()

	if e.phase == phaseError {
		return
	}

	text := e.Display()
	if len(text) <= 1 {
		e.setDisplay("0")
		e.await()
		return
	}

	text = trimNumeral(text[:len(text)-1])
	if text == "" || text == "-" {
		e.setDisplay("0")
		e.await()
		return
	}
	e.setDisplay(text)
}

// apply folds right into the accumulator with the pending operator and
// shows the result. It reports false when the engine faulted instead.
func (e *Engine) apply(right float64) bool {
	var result float64
	switch e.pending {
	case Add:
		result = e.accumulator + right
	case Subtract:
		result = e.accumulator - right
	case Multiply:
		result = e.accumulator * right
	case Divide:
		if right == 0 {
			e.fail()
			return false
		}
		result = e.accumulator / right
	default:
		return false
	}

	result, ok := e.settle(result)
	if !ok {
		return false
	}
	e.setDisplay(FormatNumber(result))
	e.accumulator = result
	return true
}

// settle rounds v for display. Overflow faults the engine.
func (e *Engine) settle(v float64) (float64, bool) {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		e.fail()
		return 0, false
	}
	return roundTo(v, e.precision), true
}

func (e *Engine) fail() {
	e.phase = phaseError
	e.selected = None
	e.pendingNegative = false
	e.display = ErrorText
}

// await makes the next digit start a fresh number.
func (e *Engine) await() {
	if e.phase == phaseEntering {
		e.phase = phaseReady
	}
}

func (e *Engine) setDisplay(text string) {
	if text == "-0" {
		e.pendingNegative = true
		e.display = "0"
		return
	}
	e.pendingNegative = false
	e.display = text
}

// value parses the display. The display always holds a numeral outside the
// error phase.
func (e *Engine) value() float64 {
	if e.pendingNegative {
		return 0
	}
	v, err := strconv.ParseFloat(e.display, 64)
	if err != nil {
		return 0
	}
	return v
}

func (e *Engine) reset() {
	e.accumulator = 0
	e.pending = None
	e.selected = None
	e.display = "0"
	e.phase = phaseReady
	e.repeatOperand = 0
	e.pendingNegative = false
}

func (e *Engine) notify() {
	if len(e.sinks) == 0 {
		return
	}
	s := e.State()
	for _, sink := range e.sinks {
		sink.Update(s)
	}
}
