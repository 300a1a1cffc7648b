// Package cli locates the node binary and builds the command line used to
// launch a script under the inspector.
//
// # Node Discovery
//
// The Discoverer interface locates and validates the node binary:
//
//	discoverer := cli.NewDiscoverer(&cli.Config{
//	    NodePath: "",           // Optional explicit path
//	    Logger:   slog.Default(),
//	})
//	nodePath, err := discoverer.Discover(ctx)
//
// Discovery searches in the following order:
//  1. Explicit path in Config.NodePath (if provided)
//  2. The active version manager: $NVM_BIN, then $VOLTA_HOME/bin
//  3. System PATH
//  4. Install locations: /usr/local/bin, /opt/homebrew/bin, /usr/bin,
//     ~/.volta/bin, the newest ~/.nvm/versions/node/v*/bin, ~/.local/bin
//
// # Version Validation
//
// `node --version` prints a semver string with a "v" prefix; it is compared
// against MinimumVersion and an older node is logged at Warn but still used.
// The check is skipped via Config.SkipVersionCheck or the
// JSDEBUG_SKIP_VERSION_CHECK environment variable.
//
// # Command Building
//
//	args := cli.BuildArgs(options)
//	env := cli.BuildEnvironment(options)
package cli
