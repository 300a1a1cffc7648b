package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	chromedevtools "github.com/cczw2010/chromedevtools"
)

var (
	breakColumn    int
	breakCondition string
	breakEval      []string
)

// hitReport is printed when a breakpoint is reached.
type hitReport struct {
	Breakpoint  *chromedevtools.Breakpoint    `json:"breakpoint"`
	Suspension  chromedevtools.Snapshot       `json:"suspension"`
	Evaluations []chromedevtools.RemoteObject `json:"evaluations,omitempty"`
}

var breakCmd = &cobra.Command{
	Use:   "break <url> <line>",
	Short: "Run until a breakpoint is hit and print the suspension",
	Long: `Set a breakpoint at a 1-based line of the script with the given URL, let
the VM run, and wait until the breakpoint is hit. Each --eval expression is
evaluated in the top call frame at the hit. The VM is resumed on exit.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := strconv.Atoi(args[1])
		if err != nil || line < 1 {
			return fmt.Errorf("line must be a positive integer, got %q", args[1])
		}

		if breakColumn < 0 {
			return fmt.Errorf("column must be positive, got %d", breakColumn)
		}

		spec := chromedevtools.BreakpointSpec{
			URL:       args[0],
			Line:      line - 1,
			Condition: breakCondition,
			Enabled:   true,
		}

		if breakColumn > 0 {
			spec.Column = breakColumn - 1
		}

		listener := newSuspendWatcher()

		return withClient(cmd, func(ctx context.Context, c chromedevtools.Client) error {
			bp, err := c.SetBreakpoint(ctx, spec)
			if err != nil {
				return err
			}

			if err := runUntilHit(ctx, c, listener, bp.ID); err != nil {
				return err
			}

			report := hitReport{Breakpoint: bp, Suspension: c.Suspension().Snapshot()}

			for _, expr := range breakEval {
				v, err := c.EvaluateInFrame(ctx, 0, expr)
				if err != nil {
					return fmt.Errorf("evaluate %q: %w", expr, err)
				}

				report.Evaluations = append(report.Evaluations, v.Object)
			}

			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}

			return c.Resume(ctx, chromedevtools.StepContinue)
		}, chromedevtools.WithListener(listener))
	},
}

// runUntilHit resumes every suspension that is not at breakpoint id until
// one is.
func runUntilHit(ctx context.Context, c chromedevtools.Client, w *suspendWatcher, id string) error {
	for {
		if dc := c.Suspension(); dc != nil && dc.Valid() {
			for _, hit := range dc.BreakpointsHit() {
				if hit == id {
					return nil
				}
			}

			if err := c.Resume(ctx, chromedevtools.StepContinue); err != nil {
				return err
			}
		}

		if err := w.wait(ctx, c); err != nil {
			return err
		}
	}
}

func init() {
	breakCmd.Flags().IntVar(&breakColumn, "column", 0, "1-based column; 0 means the first statement on the line")
	breakCmd.Flags().StringVar(&breakCondition, "condition", "", "only stop when this expression is truthy")
	breakCmd.Flags().StringArrayVar(&breakEval, "eval", nil, "expression to evaluate in the top frame at the hit (repeatable)")
	rootCmd.AddCommand(breakCmd)
}
