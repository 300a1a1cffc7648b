package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	chromedevtools "github.com/cczw2010/chromedevtools"
)

const jsdebugVersion = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show jsdebug and VM versions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "jsdebug version %s\n", jsdebugVersion)

		return withClient(cmd, func(ctx context.Context, c chromedevtools.Client) error {
			v, err := c.Version(ctx)
			if err != nil {
				return fmt.Errorf("failed to get VM version: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "VM: %s\n", v)

			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
