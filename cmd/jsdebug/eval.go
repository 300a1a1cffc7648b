package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	chromedevtools "github.com/cczw2010/chromedevtools"
)

var evalFrame int

var errUncaught = errors.New("uncaught exception")

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an expression and print the resulting remote object",
	Long: `Evaluate an expression in the global scope, or with --frame in a call
frame of the current suspension. A thrown exception prints the thrown object
and exits with an error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		listener := newSuspendWatcher()

		return withClient(cmd, func(ctx context.Context, c chromedevtools.Client) error {
			var (
				v   *chromedevtools.Value
				err error
			)

			if cmd.Flags().Changed("frame") {
				if err := listener.wait(ctx, c); err != nil {
					return err
				}

				v, err = c.EvaluateInFrame(ctx, evalFrame, args[0])
			} else {
				v, err = c.Evaluate(ctx, args[0])
			}

			if err != nil {
				return err
			}

			if err := printJSON(cmd.OutOrStdout(), v.Object); err != nil {
				return err
			}

			if v.Thrown {
				return errUncaught
			}

			return nil
		}, chromedevtools.WithListener(listener))
	},
}

func init() {
	evalCmd.Flags().IntVar(&evalFrame, "frame", 0, "call frame index; waits for the VM to be suspended")
	rootCmd.AddCommand(evalCmd)
}
