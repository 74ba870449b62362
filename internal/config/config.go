// Package config merges command-line flags, REGVIEW_* environment variables
// (including .env files) and an optional YAML file into one Config.
// Precedence is flag, then environment, then file, then default.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joshuapare/regview/internal/browser"
)

// Keys shared by flags, environment variables and the config file.
const (
	KeyConfig     = "config"
	KeyMaxResults = "max-results"
	KeyLogDir     = "log-dir"
	KeyVerbose    = "verbose"
	KeyQuiet      = "quiet"
)

// EnvPrefix prefixes environment variables, e.g. REGVIEW_MAX_RESULTS.
const EnvPrefix = "regview"

// DefaultFileName is looked up in the home directory when --config is not
// given.
const DefaultFileName = ".regview.yaml"

// Config is the resolved runtime configuration.
type Config struct {
	Search  browser.SearchLimits
	LogDir  string
	Verbose int
	Quiet   bool
	// File is the config file that was read, if any.
	File string
}

// LoggingEnabled reports whether a log file should be written.
func (c *Config) LoggingEnabled() bool {
	return !c.Quiet && c.Verbose > 0
}

// SetupFlags registers the configuration flags on cmd.
func SetupFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String(KeyConfig, "", "config file (default $HOME/"+DefaultFileName+")")
	f.Int(KeyMaxResults, browser.DefaultMaxResults, "maximum number of search results")
	f.String(KeyLogDir, "", "directory for log files (default ~/.regview/logs)")
	f.CountP(KeyVerbose, "v", "write a log file; repeat for more detail (-v warn, -vv info, -vvv debug)")
	f.BoolP(KeyQuiet, "q", false, "disable logging")
}

// Load resolves the configuration for cmd after its flags were parsed.
func Load(cmd *cobra.Command) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault(KeyMaxResults, browser.DefaultMaxResults)
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	file, err := readFile(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Search:  browser.SearchLimits{MaxResults: v.GetInt(KeyMaxResults)},
		LogDir:  v.GetString(KeyLogDir),
		Verbose: v.GetInt(KeyVerbose),
		Quiet:   v.GetBool(KeyQuiet),
		File:    file,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readFile reads the explicit config file, which must exist, or the default
// one, which may be absent.
func readFile(v *viper.Viper) (string, error) {
	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("read config %s: %w", path, err)
		}
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}
	path := filepath.Join(home, DefaultFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("read config %s: %w", path, err)
	}
	return path, nil
}

// Validate rejects values the browser cannot run with.
func (c *Config) Validate() error {
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("%s: %w", KeyMaxResults, err)
	}
	if c.Verbose < 0 {
		return fmt.Errorf("%s must not be negative, got %d", KeyVerbose, c.Verbose)
	}
	return nil
}
