package config

import (
	"os"
	"path/filepath"
	"strings"

	"emperror.dev/errors"
	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Log struct {
	// One of the logrus level names (e.g., "debug", "trace"). Empty means the
	// default level.
	Level string
}

var Stackbase = struct {
	// Glob rules for protected branch names, evaluated in order. A leading
	// "!" unprotects. See the protect package.
	ProtectedBranches []string
	// If true, remote-tracking branches take part in branch classification.
	IncludeRemotes bool
	Log            Log
}{
	ProtectedBranches: []string{"main", "master"},
}

// Load initializes the configuration values.
// It may optionally be called with a list of additional paths to check for the
// config file; those are searched before the user-wide locations so that a
// repository can override the user config.
// Returns a boolean indicating whether or not a config file was loaded and an
// error if one occurred.
func Load(paths []string) (bool, error) {
	loaded, err := loadFromFile(paths)
	loadFromEnv()
	return loaded, err
}

func loadFromFile(paths []string) (bool, error) {
	config := viper.New()

	// Viper has support for various formats, so it supports json, toml, yaml,
	// and more (https://github.com/spf13/viper#reading-config-files).
	config.SetConfigName("stackbase")

	// The primary use case for this is repository-specific configuration
	// (e.g., $REPO/.git/stackbase.yaml).
	for _, path := range paths {
		config.AddConfigPath(path)
	}
	config.AddConfigPath(filepath.Join(xdg.ConfigHome, "stackbase"))
	for _, dir := range xdg.ConfigDirs {
		config.AddConfigPath(filepath.Join(dir, "stackbase"))
	}
	config.AddConfigPath("$STACKBASE_HOME")

	if err := config.ReadInConfig(); err != nil {
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return false, nil
		}
		return false, errors.Wrap(err, "failed to read stackbase config")
	}
	logrus.WithField("file", config.ConfigFileUsed()).Debug("read config file")

	// Replace list values wholesale instead of merging them element-wise into
	// the defaults.
	zeroFields := func(dc *mapstructure.DecoderConfig) { dc.ZeroFields = true }
	if err := config.Unmarshal(&Stackbase, zeroFields); err != nil {
		return true, errors.Wrap(err, "failed to parse stackbase config")
	}

	return true, nil
}

func loadFromEnv() {
	if v := os.Getenv("STACKBASE_PROTECTED_BRANCHES"); v != "" {
		var patterns []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		Stackbase.ProtectedBranches = patterns
	}
	if v := os.Getenv("STACKBASE_LOG_LEVEL"); v != "" {
		Stackbase.Log.Level = v
	}
}

// ProtectedBranchRules returns the configured protected branch rules followed
// by extra (typically the values of the `stack.protected-branch` git config).
func ProtectedBranchRules(extra ...string) []string {
	rules := make([]string, 0, len(Stackbase.ProtectedBranches)+len(extra))
	rules = append(rules, Stackbase.ProtectedBranches...)
	return append(rules, extra...)
}

// LogLevel returns the configured log level, or ok=false if none is set.
func LogLevel() (logrus.Level, bool, error) {
	if Stackbase.Log.Level == "" {
		return logrus.InfoLevel, false, nil
	}
	level, err := logrus.ParseLevel(Stackbase.Log.Level)
	if err != nil {
		return logrus.InfoLevel, false, errors.WrapIff(err, "invalid log level %q", Stackbase.Log.Level)
	}
	return level, true, nil
}
