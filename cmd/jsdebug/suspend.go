package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	chromedevtools "github.com/cczw2010/chromedevtools"
)

// suspendWatcher wakes waiters when the VM suspends. Suspended runs on the
// dispatch goroutine, so it only signals.
type suspendWatcher struct {
	chromedevtools.NopListener

	suspended chan struct{}
}

func newSuspendWatcher() *suspendWatcher {
	return &suspendWatcher{suspended: make(chan struct{}, 1)}
}

func (w *suspendWatcher) Suspended(*chromedevtools.DebugContext) {
	select {
	case w.suspended <- struct{}{}:
	default:
	}
}

// wait blocks until the client has a valid suspension or ctx ends.
func (w *suspendWatcher) wait(ctx context.Context, c chromedevtools.Client) error {
	for {
		if dc := c.Suspension(); dc != nil && dc.Valid() {
			return nil
		}

		select {
		case <-w.suspended:
		case <-c.Done():
			return fmt.Errorf("waiting for suspension: %w", chromedevtools.ErrDisconnected)
		case <-ctx.Done():
			return fmt.Errorf("waiting for suspension: %w", ctx.Err())
		}
	}
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Suspend the VM and print where it stopped",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		listener := newSuspendWatcher()

		return withClient(cmd, func(ctx context.Context, c chromedevtools.Client) error {
			if dc := c.Suspension(); dc == nil || !dc.Valid() {
				if err := c.Suspend(ctx); err != nil {
					return err
				}
			}

			if err := listener.wait(ctx, c); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), c.Suspension().Snapshot())
		}, chromedevtools.WithListener(listener))
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume [continue|in|over|out]",
	Short: "Wait for the VM to be suspended, then continue it",
	Long: `Wait for the VM to be suspended, then continue it with the given step
action (default continue). A stepping action waits for the resulting
suspension and prints it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		action := chromedevtools.StepContinue

		if len(args) == 1 {
			var err error

			action, err = chromedevtools.ParseStepAction(args[0])
			if err != nil {
				return err
			}
		}

		listener := newSuspendWatcher()

		return withClient(cmd, func(ctx context.Context, c chromedevtools.Client) error {
			if err := listener.wait(ctx, c); err != nil {
				return err
			}

			if err := c.Resume(ctx, action); err != nil {
				return err
			}

			if action == chromedevtools.StepContinue {
				fmt.Fprintln(cmd.OutOrStdout(), "resumed")

				return nil
			}

			if err := listener.wait(ctx, c); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), c.Suspension().Snapshot())
		}, chromedevtools.WithListener(listener))
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
}
