package cli

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/cczw2010/chromedevtools/internal/errors"
)

const (
	// MinimumVersion is the oldest node release whose inspector is supported.
	MinimumVersion = "v18.0.0"

	// VersionCheckTimeout bounds `node --version`.
	VersionCheckTimeout = 2 * time.Second

	// EnvSkipVersionCheck disables the version check when set to any value.
	EnvSkipVersionCheck = "JSDEBUG_SKIP_VERSION_CHECK"
)

// Config holds configuration for node discovery.
type Config struct {
	// NodePath is an explicit node path that skips the search.
	NodePath string

	// SkipVersionCheck skips the version check.
	SkipVersionCheck bool

	// Logger receives discovery diagnostics. Nil discards them.
	Logger *slog.Logger

	// lookupEnv and homeDir are replaced in tests.
	lookupEnv func(string) (string, bool)
	homeDir   func() (string, error)
}

// Discoverer locates the node binary.
type Discoverer interface {
	// Discover returns the path of the node binary to launch.
	Discover(ctx context.Context) (string, error)
}

type discoverer struct {
	cfg *Config
	log *slog.Logger
}

var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a node discoverer.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &discoverer{
		cfg: cfg,
		log: log.With("component", "node_discovery"),
	}
}

// Discover resolves node in this order: the explicit path, the version
// manager shims of the current shell (nvm's $NVM_BIN, $VOLTA_HOME), $PATH,
// then well-known install locations including the newest nvm install.
// An old node is reported with a Warn but still returned.
func (d *discoverer) Discover(ctx context.Context) (string, error) {
	nodePath, err := d.find()
	if err != nil {
		d.log.Error("Failed to find node", "error", err)

		return "", err
	}

	d.log.Debug("Found node binary", "node_path", nodePath)

	if !d.cfg.SkipVersionCheck && !d.envSet(EnvSkipVersionCheck) {
		d.checkVersion(ctx, nodePath)
	}

	return nodePath, nil
}

func (d *discoverer) find() (string, error) {
	if d.cfg.NodePath != "" {
		if isExecutable(d.cfg.NodePath) {
			return d.cfg.NodePath, nil
		}

		return "", &errors.NodeNotFoundError{SearchedPaths: []string{d.cfg.NodePath}}
	}

	var searched []string

	try := func(path string) bool {
		searched = append(searched, path)

		return isExecutable(path)
	}

	if bin, ok := d.lookupEnv("NVM_BIN"); ok && bin != "" {
		if p := filepath.Join(bin, "node"); try(p) {
			return p, nil
		}
	}

	if volta, ok := d.lookupEnv("VOLTA_HOME"); ok && volta != "" {
		if p := filepath.Join(volta, "bin", "node"); try(p) {
			return p, nil
		}
	}

	if p, err := exec.LookPath("node"); err == nil {
		return p, nil
	}

	searched = append(searched, "$PATH")

	for _, p := range d.installPaths() {
		if try(p) {
			return p, nil
		}
	}

	return "", &errors.NodeNotFoundError{SearchedPaths: searched}
}

// installPaths lists the usual system, Homebrew, Volta and nvm locations.
func (d *discoverer) installPaths() []string {
	paths := []string{
		"/usr/local/bin/node",
		"/opt/homebrew/bin/node",
		"/usr/bin/node",
	}

	home, err := d.home()
	if err != nil {
		return paths
	}

	paths = append(paths, filepath.Join(home, ".volta", "bin", "node"))

	if p, ok := newestNVMNode(filepath.Join(home, ".nvm", "versions", "node")); ok {
		paths = append(paths, p)
	}

	return append(paths, filepath.Join(home, ".local", "bin", "node"))
}

// newestNVMNode picks the highest vX.Y.Z directory under an nvm versions root.
func newestNVMNode(root string) (string, bool) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", false
	}

	versions := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() && semver.IsValid(e.Name()) {
			versions = append(versions, e.Name())
		}
	}

	if len(versions) == 0 {
		return "", false
	}

	semver.Sort(versions)

	return filepath.Join(root, versions[len(versions)-1], "bin", "node"), true
}

// checkVersion warns when node is older than MinimumVersion. A node that
// cannot report its version is used anyway.
func (d *discoverer) checkVersion(ctx context.Context, nodePath string) {
	ctx, cancel := context.WithTimeout(ctx, VersionCheckTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, nodePath, "--version").Output()
	if err != nil {
		d.log.Debug("node --version failed", "error", err)

		return
	}

	version, ok := ParseVersion(string(out))
	if !ok {
		d.log.Debug("Unrecognised node version", "output", strings.TrimSpace(string(out)))

		return
	}

	if !Supported(version) {
		d.log.Warn("node is older than the supported minimum; the inspector may lack commands",
			"version", version, "minimum", MinimumVersion)
	}
}

// ParseVersion reads `node --version` output such as "v20.11.1" and returns
// it in canonical semver form. Nightly and rc suffixes are kept.
func ParseVersion(output string) (string, bool) {
	v := strings.TrimSpace(output)
	if v != "" && v[0] != 'v' {
		v = "v" + v
	}

	if !semver.IsValid(v) {
		return "", false
	}

	return semver.Canonical(v), true
}

// Supported reports whether a version from ParseVersion meets MinimumVersion.
func Supported(version string) bool {
	return semver.Compare(version, MinimumVersion) >= 0
}

func (d *discoverer) lookupEnv(key string) (string, bool) {
	if d.cfg.lookupEnv != nil {
		return d.cfg.lookupEnv(key)
	}

	return os.LookupEnv(key)
}

func (d *discoverer) envSet(key string) bool {
	v, ok := d.lookupEnv(key)

	return ok && v != ""
}

func (d *discoverer) home() (string, error) {
	if d.cfg.homeDir != nil {
		return d.cfg.homeDir()
	}

	return os.UserHomeDir()
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir() && info.Mode()&0o111 != 0
}
