package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	chromedevtools "github.com/cczw2010/chromedevtools"
	"github.com/cczw2010/chromedevtools/internal/config"
)

var (
	// Global flags
	cfgFile     string
	urlFlag     string
	httpFlag    string
	scriptFlag  string
	nodeFlag    string
	logLevel    string
	breakOnFlag string
	timeout     time.Duration

	// Shared state set during PersistentPreRun
	cfg  *config.File
	base *config.Options

	// extraOptions are applied after the configuration. Tests use it to
	// inject a transport.
	extraOptions []chromedevtools.Option
)

// rootCmd is the base command for jsdebug.
var rootCmd = &cobra.Command{
	Use:   "jsdebug",
	Short: "Debug JavaScript VMs over the WebKit Inspector protocol",
	Long: `jsdebug attaches to a JavaScript VM that exposes an inspector endpoint,
or launches a script under node with the inspector enabled, and runs one
debugging operation against it. Results are printed as the raw protocol
objects in JSON.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}

		var err error

		cfg, err = config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Override config with flags
		if urlFlag != "" {
			cfg.URL = urlFlag
		}

		if httpFlag != "" {
			cfg.HTTP = httpFlag
		}

		if scriptFlag != "" {
			cfg.Script = scriptFlag
		}

		if nodeFlag != "" {
			cfg.NodePath = nodeFlag
		}

		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		if breakOnFlag != "" {
			cfg.BreakOnException = breakOnFlag
		}

		log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()}))

		base, err = cfg.Options(log)
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.jsdebug/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&urlFlag, "url", "", "websocket debugger URL")
	rootCmd.PersistentFlags().StringVar(&httpFlag, "http", "", "inspector HTTP endpoint (default \"http://127.0.0.1:9229\")")
	rootCmd.PersistentFlags().StringVar(&scriptFlag, "script", "", "launch this script under node instead of attaching")
	rootCmd.PersistentFlags().StringVar(&nodeFlag, "node", "", "path to the node binary")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&breakOnFlag, "break-on-exception", "", "none, uncaught or all")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline for the operation")
}

// withClient connects with the loaded configuration, runs fn and closes the
// client. The operation is bounded by --timeout.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c chromedevtools.Client) error, opts ...chromedevtools.Option) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	all := append([]chromedevtools.Option{fromConfig(base)}, opts...)
	all = append(all, extraOptions...)

	return chromedevtools.WithClient(ctx, func(c chromedevtools.Client) error {
		return fn(ctx, c)
	}, all...)
}

// fromConfig seeds the client options with the file configuration. Later
// options still override it.
func fromConfig(o *config.Options) chromedevtools.Option {
	return func(dst *chromedevtools.Options) {
		if o != nil {
			*dst = *o
		}
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
