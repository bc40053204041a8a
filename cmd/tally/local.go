package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tallycalc/tally/pkg/config"
	"github.com/tallycalc/tally/pkg/engine"
	"github.com/tallycalc/tally/pkg/keypad"
	"github.com/tallycalc/tally/pkg/render"
)

const (
	keyCtrlC = 0x03
	keyCtrlD = 0x04
)

type localOptions struct {
	maxDigits int
	precision int
}

func (o *localOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&o.maxDigits, "max-digits", engine.DefaultMaxDigits, "digits allowed in one number")
	f.IntVar(&o.precision, "precision", engine.DefaultPrecision, "decimal places results are rounded to")
}

func (o *localOptions) engine(opts ...engine.Option) (*engine.Engine, error) {
	if o.maxDigits < config.MinMaxDigits || o.maxDigits > config.MaxMaxDigits {
		return nil, fmt.Errorf("max digits must be between %d and %d, got %d", config.MinMaxDigits, config.MaxMaxDigits, o.maxDigits)
	}
	if o.precision < config.MinPrecision || o.precision > config.MaxPrecision {
		return nil, fmt.Errorf("precision must be between %d and %d, got %d", config.MinPrecision, config.MaxPrecision, o.precision)
	}
	opts = append([]engine.Option{
		engine.WithMaxDigits(o.maxDigits),
		engine.WithPrecision(o.precision),
	}, opts...)
	return engine.New(opts...), nil
}

func NewEvalCommand() *cobra.Command {
	o := &localOptions{}
	var trace bool

	cmd := &cobra.Command{
		Use:     "eval [keys...]",
		Short:   "Evaluate key presses locally",
		GroupID: gBasic,
		Long: `Evaluate key presses without a daemon and print the display.

Reads keys from stdin when no arguments are given.`,
		Example: `  tally eval 2+3x4=
  echo '1/3=' | tally eval --precision 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read keys: %w", err)
				}
				keys = strings.TrimSpace(string(b))
			}

			evs, err := keypad.ParseSequence(keys)
			if err != nil {
				return err
			}

			e, err := o.engine()
			if err != nil {
				return err
			}

			for _, ev := range evs {
				e.Apply(ev)
				if trace {
					cmd.Printf("%-4s %s\n", ev, e.Display())
				}
			}
			if !trace {
				cmd.Println(e.Display())
			}

			return nil
		},
	}

	o.addFlags(cmd)
	cmd.Flags().BoolVar(&trace, "trace", false, "print the display after every key")

	return cmd
}

func NewReplCommand() *cobra.Command {
	o := &localOptions{}
	var remote bool

	cmd := &cobra.Command{
		Use:     "repl",
		Short:   "Interactive keypad",
		GroupID: gBasic,
		Long: `Interactive keypad in the terminal.

Keys take effect as they are typed: digits, '.', '+', '-', 'x', '*', '/',
'=' or enter, '%', 'n' for +/-, backspace, and 'c' or escape to clear.
Press 'q' or ctrl-c to quit.

With --remote, keys go to the daemon session instead of a local one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fd := int(os.Stdin.Fd())
			if !term.IsTerminal(fd) {
				return errors.New("repl needs an interactive terminal, use 'tally eval' for piped input")
			}

			screen := render.NewTerminal(&crlfWriter{w: cmd.OutOrStdout()})
			screen.SetFooter("q quit · c clear · n +/- · ⌫ delete")

			press, err := replPress(o, remote, screen)
			if err != nil {
				return err
			}

			oldState, err := term.MakeRaw(fd)
			if err != nil {
				return fmt.Errorf("failed to switch terminal to raw mode: %w", err)
			}
			defer func() {
				if err := term.Restore(fd, oldState); err != nil {
					logrus.Errorf("failed to restore terminal: %v", err)
				}
			}()

			screen.Start()
			defer screen.Stop()

			return replLoop(bufio.NewReader(os.Stdin), press)
		},
	}

	o.addFlags(cmd)
	cmd.Flags().BoolVar(&remote, "remote", false, "press keys on the daemon session")

	return cmd
}

// replPress returns the function that handles one keypad event and draws the
// initial frame.
func replPress(o *localOptions, remote bool, screen *render.Terminal) (func(engine.Event) error, error) {
	if remote {
		snap, err := apiClient.GetState()
		if err != nil {
			return nil, err
		}
		screen.Update(*snap)
		return func(ev engine.Event) error {
			snap, err := apiClient.Press(ev.String())
			if err != nil {
				return err
			}
			screen.Update(*snap)
			return nil
		}, nil
	}

	e, err := o.engine(engine.WithSink(screen))
	if err != nil {
		return nil, err
	}
	screen.Update(e.State())
	return func(ev engine.Event) error {
		e.Apply(ev)
		return nil
	}, nil
}

func replLoop(r io.RuneReader, press func(engine.Event) error) error {
	for {
		ch, _, err := r.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch ch {
		case 'q', 'Q', keyCtrlC, keyCtrlD:
			return nil
		}

		ev, ok := keypad.FromRune(ch)
		if !ok {
			logrus.Tracef("ignoring key %q", ch)
			continue
		}
		if err := press(ev); err != nil {
			return err
		}
	}
}

// crlfWriter turns "\n" into "\r\n" for terminals in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
