package engine

// Kind classifies an input event.
type Kind int

const (
	KindDigit Kind = iota + 1
	KindPoint
	KindOperator
	KindEquals
	KindClear
	KindSignToggle
	KindPercent
	KindBackspace
)

// Event is one pre-classified keypad press.
type Event struct {
	Kind     Kind
	Digit    int      // valid for KindDigit
	Operator Operator // valid for KindOperator
}

func Digit(n int) Event { return Event{Kind: KindDigit, Digit: n} }

func Point() Event { return Event{Kind: KindPoint} }

func Op(op Operator) Event { return Event{Kind: KindOperator, Operator: op} }

func Equals() Event { return Event{Kind: KindEquals} }

func Clear() Event { return Event{Kind: KindClear} }

func SignToggle() Event { return Event{Kind: KindSignToggle} }

func Percent() Event { return Event{Kind: KindPercent} }

func Backspace() Event { return Event{Kind: KindBackspace} }

// String returns the keypad label of the event.
func (e Event) String() string {
	switch e.Kind {
	case KindDigit:
		return string(rune('0' + e.Digit))
	case KindPoint:
		return "."
	case KindOperator:
		return e.Operator.String()
	case KindEquals:
		return "="
	case KindClear:
		return "AC"
	case KindSignToggle:
		return "+/-"
	case KindPercent:
		return "%"
	case KindBackspace:
		return "DEL"
	}
	return "?"
}
