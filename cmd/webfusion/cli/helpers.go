package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/webfusionlab/webfusion/internal/config"
	"github.com/webfusionlab/webfusion/internal/store"
)

const configFileName = "webfusion.yaml"

// configPath returns the config file to read: the --config flag, or the
// first default location that exists. Empty means no file.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	candidates := []string{configFileName}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".webfusion", configFileName))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// loadConfig resolves the effective configuration from the global viper
// instance, which also carries any flags bound by the running command.
func loadConfig() (config.Config, error) {
	v := viper.GetViper()
	config.Bind(v)
	if path := configPath(); path != "" {
		if err := config.LoadYAMLFile(v, path); err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if devMode {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the process logger from the logging settings.
func newLogger(c config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStore connects to the configured database and applies migrations.
func openStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	opts, err := cfg.Database.StoreOptions()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s database %s: %w", opts.Dialect, store.SanitizeDSN(opts.DSN), err)
	}
	return st, nil
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}
