package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tallycalc/tally/pkg/engine"
	"github.com/tallycalc/tally/pkg/events"
	"github.com/tallycalc/tally/pkg/render"
)

func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		Short:   "Follow the daemon session display",
		GroupID: gBasic,
		Long: `Follow the daemon session display as keys are pressed by any client.

Stops when interrupted or when the daemon shuts down.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Fail early with a useful error if the daemon is not up.
			if _, err := apiClient.GetState(); err != nil {
				return fmt.Errorf("failed to get session state: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			screen := render.NewTerminal(cmd.OutOrStdout())
			screen.Start()
			defer screen.Stop()

			return watch(ctx, apiClient.SubscribeEvents(ctx), screen)
		},
	}
}

func watch(ctx context.Context, ch <-chan events.Event, sink engine.Sink) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				logrus.Info("daemon closed the event stream")
				return nil
			}
			switch ev.Name {
			case events.DisplayUpdate:
				upd, err := events.DecodeAs[events.DisplayUpdateEvent](ev)
				if err != nil {
					logrus.Warnf("bad %s event: %v", ev.Name, err)
					continue
				}
				op, _ := engine.ParseOperator(upd.Operator)
				sel, _ := engine.ParseOperator(upd.Selected)
				sink.Update(engine.Snapshot{Display: upd.Display, Operator: op, Selected: sel, Error: upd.Error})
			case events.SessionClear:
				clr, err := events.DecodeAs[events.SessionClearEvent](ev)
				if err == nil {
					logrus.Debugf("session cleared (%s)", clr.Reason)
				}
			default:
				logrus.Debugf("ignoring event %q", ev.Name)
			}
		}
	}
}
