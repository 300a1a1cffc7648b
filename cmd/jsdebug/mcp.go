package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	chromedevtools "github.com/cczw2010/chromedevtools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the debugging session as MCP tools over stdio",
	Long: `Connect to the VM and serve evaluate, script, breakpoint and stepping
tools to an MCP client over stdin and stdout. The server stops when the
client disconnects, the VM goes away or the process is interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c := chromedevtools.NewClient()
		defer c.Close()

		opts := append([]chromedevtools.Option{fromConfig(base)}, extraOptions...)

		startCtx, cancel := ctx, context.CancelFunc(func() {})
		if timeout > 0 {
			startCtx, cancel = context.WithTimeout(ctx, timeout)
		}

		err := c.Start(startCtx, opts...)

		cancel()

		if err != nil {
			return fmt.Errorf("failed to start client: %w", err)
		}

		srv, err := chromedevtools.NewMCPServer(c, "jsdebug", jsdebugVersion)
		if err != nil {
			return err
		}

		ctx, cancelServe := context.WithCancel(ctx)
		defer cancelServe()

		go func() {
			select {
			case <-c.Done():
				cancelServe()
			case <-ctx.Done():
			}
		}()

		if err := srv.Serve(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			return err
		}

		return c.Err()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
