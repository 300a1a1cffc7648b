package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvURL      = "JSDEBUG_URL"
	EnvHTTP     = "JSDEBUG_HTTP"
	EnvLogLevel = "JSDEBUG_LOG_LEVEL"
)

// File is the jsdebug configuration file. Durations are strings accepted by
// time.ParseDuration.
type File struct {
	URL              string   `yaml:"url" toml:"url"`
	HTTP             string   `yaml:"http" toml:"http"`
	Script           string   `yaml:"script" toml:"script"`
	ScriptArgs       []string `yaml:"script_args" toml:"script_args"`
	NodePath         string   `yaml:"node_path" toml:"node_path"`
	NodeArgs         []string `yaml:"node_args" toml:"node_args"`
	LogLevel         string   `yaml:"log_level" toml:"log_level"`
	BreakOnException string   `yaml:"break_on_exception" toml:"break_on_exception"`
	HandshakeTimeout string   `yaml:"handshake_timeout" toml:"handshake_timeout"`
	WriteTimeout     string   `yaml:"write_timeout" toml:"write_timeout"`
	ScriptsTimeout   string   `yaml:"scripts_timeout" toml:"scripts_timeout"`
}

// DefaultFile returns the configuration used when no file exists.
func DefaultFile() *File {
	return &File{
		HTTP:     "http://127.0.0.1:9229",
		LogLevel: "warn",
	}
}

// DefaultPath returns the default config file path: ~/.jsdebug/config.yaml
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".jsdebug", "config.yaml")
	}

	return filepath.Join(home, ".jsdebug", "config.yaml")
}

// LoadFile reads the configuration at path. Files ending in .toml are decoded
// as TOML, everything else as YAML. A missing file yields the defaults.
// Environment overrides are applied last.
func LoadFile(path string) (*File, error) {
	cfg := DefaultFile()

	data, err := os.ReadFile(path)

	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	case strings.EqualFold(filepath.Ext(path), ".toml"):
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

func (f *File) applyEnv() {
	if v := os.Getenv(EnvURL); v != "" {
		f.URL = v
	}

	if v := os.Getenv(EnvHTTP); v != "" {
		f.HTTP = v
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		f.LogLevel = v
	}
}

// Level parses LogLevel. Unknown values fall back to warn.
func (f *File) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(f.LogLevel))); err != nil {
		return slog.LevelWarn
	}

	return level
}

// Options converts the file into client options.
func (f *File) Options(log *slog.Logger) (*Options, error) {
	opts := &Options{
		Logger:       log,
		URL:          strings.TrimSpace(f.URL),
		HTTPEndpoint: strings.TrimSpace(f.HTTP),
		Script:       f.Script,
		ScriptArgs:   f.ScriptArgs,
		NodePath:     f.NodePath,
		NodeArgs:     f.NodeArgs,
	}

	if f.BreakOnException != "" {
		if _, err := NormalizePauseMode(f.BreakOnException); err != nil {
			return nil, err
		}

		opts.BreakOnException = f.BreakOnException
	}

	for _, d := range []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"handshake_timeout", f.HandshakeTimeout, &opts.HandshakeTimeout},
		{"write_timeout", f.WriteTimeout, &opts.WriteTimeout},
		{"scripts_timeout", f.ScriptsTimeout, &opts.ScriptsTimeout},
	} {
		if d.raw == "" {
			continue
		}

		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.name, err)
		}

		*d.dst = v
	}

	return opts, nil
}
