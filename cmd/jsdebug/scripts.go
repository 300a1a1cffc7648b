package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	chromedevtools "github.com/cczw2010/chromedevtools"
)

var scriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "List the scripts the VM has compiled",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(cmd, func(ctx context.Context, c chromedevtools.Client) error {
			scripts, err := c.Scripts(ctx)
			if err != nil {
				return err
			}

			if scripts == nil {
				scripts = []chromedevtools.Script{}
			}

			return printJSON(cmd.OutOrStdout(), scripts)
		})
	},
}

var sourceCmd = &cobra.Command{
	Use:   "source <script-id>",
	Short: "Print the source of a script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c chromedevtools.Client) error {
			src, err := c.ScriptSource(ctx, args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), src)

			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(scriptsCmd)
	rootCmd.AddCommand(sourceCmd)
}
