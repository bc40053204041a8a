package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tallycalc/tally/pkg/config"
	"github.com/tallycalc/tally/pkg/engine"
	"github.com/tallycalc/tally/pkg/version"
)

// getVersion returns the client and daemon versions.
func getVersion() (string, string, error) {
	daemonVersion, err := apiClient.GetVersion()
	if err != nil {
		return version.Version, "", err
	}
	return version.Version, daemonVersion, nil
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewPressCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "press [keys...]",
		Short:   "Press keys on the daemon session",
		GroupID: gBasic,
		Long: `Press keys on the daemon session and print the display.

Keys are digits, '.', '+', '-', 'x', '/', '=', '%', and the words AC, DEL
and +/-. Arguments are joined with spaces, so 'tally press 12 + 3 =' and
'tally press 12+3=' do the same thing.`,
		Example: `  tally press 9x9=
  tally press 50 + 10 %
  tally press AC`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := strings.Join(args, " ")
			snap, err := apiClient.Press(keys)
			if err != nil {
				return fmt.Errorf("failed to press keys: %w", err)
			}

			logrus.WithField("keys", keys).Debug("pressed")
			cmd.Println(snap.Display)

			return nil
		},
	}
}

func NewClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "clear",
		Short:   "Clear the daemon session",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := apiClient.Clear()
			if err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}

			cmd.Println(snap.Display)

			return nil
		},
	}
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of the daemon session",
		Long:    `Get the session display, pending operator, and daemon configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := apiClient.GetState()
			if err != nil {
				return fmt.Errorf("failed to get session state: %w", err)
			}

			raw, err := apiClient.GetConfig()
			if err != nil {
				return fmt.Errorf("failed to get config: %w", err)
			}
			conf := config.NewFileFromConfig(raw, "")

			cmd.Println(bold("Session:"))
			cmd.Printf("  Display: %s\n", bold("%s", snap.Display))
			if snap.Operator != engine.None {
				cmd.Printf("  Pending operator: %s\n", bold("%s", snap.Operator))
			} else {
				cmd.Printf("  Pending operator: none\n")
			}
			cmd.Printf("  Error: %s\n", bool2Text(snap.Error))

			cmd.Println()

			cmd.Println(bold("Configuration:"))
			cmd.Printf("  Max digits: %s\n", bold("%d", conf.MaxDigits()))
			cmd.Printf("  Precision: %s\n", bold("%d decimal places", conf.Precision()))
			if expr := conf.AutoClear(); expr != "" {
				cmd.Printf("  Auto clear: %s\n", bold("%s", expr))
			} else {
				cmd.Printf("  Auto clear: %s\n", bool2Text(false))
			}
			cmd.Printf("  Allow non-root users to access the daemon: %s\n", bool2Text(conf.AllowNonRootAccess()))

			return nil
		},
	}
}
