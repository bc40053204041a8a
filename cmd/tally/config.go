package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tallycalc/tally/pkg/config"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Change daemon settings",
		GroupID: gAdvanced,
	}

	cmd.AddCommand(
		newMaxDigitsCommand(),
		newPrecisionCommand(),
		newAutoClearCommand(),
	)

	return cmd
}

func newMaxDigitsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "max-digits [n]",
		Short: "Set how many digits can be typed into one number",
		Long: fmt.Sprintf(`Set how many digits can be typed into one number.

This is a count from %d to %d. The sign and decimal point do not count.
Results are not limited by it.`, config.MinMaxDigits, config.MaxMaxDigits),
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := parseIntArg(args, "max digits")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetMaxDigits(n)
			if err != nil {
				return fmt.Errorf("failed to set max digits: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set max digits to %d", n)

			return nil
		},
	}
}

func newPrecisionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "precision [places]",
		Short: "Set how many decimal places results are rounded to",
		Long: fmt.Sprintf(`Set how many decimal places results are rounded to.

This is a count from %d to %d.`, config.MinPrecision, config.MaxPrecision),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := parseIntArg(args, "precision")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetPrecision(p)
			if err != nil {
				return fmt.Errorf("failed to set precision: %v", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set precision to %d", p)

			return nil
		},
	}
}

func newAutoClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auto-clear [cron-expression]",
		Short: "Clear the session on a schedule",
		Long: `Clear the session on a schedule.

The session is only cleared if nobody has pressed a key for a minute.
Use 'tally config auto-clear skip' to skip the next clear, and
'tally config auto-clear disable' to turn it off.`,
		Example: `  tally config auto-clear '0 3 * * *' (At 03:00 every day)
  tally config auto-clear '@every 30m'`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return setAutoClear(args[0])
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "disable",
			Short: "Disable auto clear",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				return setAutoClear("")
			},
		},
		&cobra.Command{
			Use:   "skip",
			Short: "Skip the next auto clear",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				ret, err := apiClient.SkipAutoClear()
				if err != nil {
					return fmt.Errorf("failed to skip auto clear: %v", err)
				}

				if ret != "" {
					logrus.Infof("daemon responded: %s", ret)
				}

				return nil
			},
		},
	)

	return cmd
}

func setAutoClear(expr string) error {
	ret, err := apiClient.SetAutoClear(expr)
	if err != nil {
		return fmt.Errorf("failed to set auto clear: %v", err)
	}

	if ret != "" {
		logrus.Infof("daemon responded: %s", ret)
	}

	return nil
}
