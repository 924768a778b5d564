// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cfg

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the top-level, viper-bound configuration for the refdb CLI and
// the server embedding it. Values come from (in ascending priority) a
// config file, environment variables prefixed REFDB_, and command-line
// flags.
type Config struct {
	Repository RepositoryConfig `yaml:"repository" mapstructure:"repository"`

	Refs RefsConfig `yaml:"refs" mapstructure:"refs"`

	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`

	Debug DebugConfig `yaml:"debug" mapstructure:"debug"`
}

// RepositoryConfig locates the repository a Backend is rooted at.
type RepositoryConfig struct {
	// Root is the repository's working directory; "packed-refs" and
	// "refs/" are resolved relative to it (after Namespace expansion).
	Root ResolvedPath `yaml:"root" mapstructure:"root"`

	// Namespace is an optional "a/b/c" style prefix expanded by
	// internal/reponame into nested refs/namespaces/... directories.
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
}

// RefsConfig tunes the reference backend itself.
type RefsConfig struct {
	ObjectFileMode Octal `yaml:"object-file-mode" mapstructure:"object-file-mode"`

	LockTimeout time.Duration `yaml:"lock-timeout" mapstructure:"lock-timeout"`
}

// LoggingConfig configures the package-level logger.
type LoggingConfig struct {
	Severity string `yaml:"severity" mapstructure:"severity"`

	Format string `yaml:"format" mapstructure:"format"`

	FilePath ResolvedPath `yaml:"file-path" mapstructure:"file-path"`

	LogRotate LogRotateLoggingConfig `yaml:"log-rotate" mapstructure:"log-rotate"`
}

// LogRotateLoggingConfig mirrors internal/config.LogRotateConfig in the
// shape viper/mapstructure expect for nested keys.
type LogRotateLoggingConfig struct {
	MaxFileSizeMb int `yaml:"max-file-size-mb" mapstructure:"max-file-size-mb"`

	BackupFileCount int `yaml:"backup-file-count" mapstructure:"backup-file-count"`

	Compress bool `yaml:"compress" mapstructure:"compress"`
}

// MetricsConfig configures the Prometheus exporter.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	ListenAddr string `yaml:"listen-addr" mapstructure:"listen-addr"`
}

// DebugConfig controls internal diagnostics.
type DebugConfig struct {
	ExitOnInvariantViolation bool `yaml:"exit-on-invariant-violation" mapstructure:"exit-on-invariant-violation"`
}

// BindFlags registers the persistent flags shared by every subcommand and
// binds each one to its viper key, so that flag > env > file > default
// resolves the same way regardless of which surface set a value.
func BindFlags(flagSet *pflag.FlagSet) error {
	var err error

	flagSet.StringP("root", "C", ".", "Repository root directory.")
	if err = viper.BindPFlag("repository.root", flagSet.Lookup("root")); err != nil {
		return err
	}

	flagSet.StringP("namespace", "", "", "Reference namespace prefix, e.g. \"foo/bar\".")
	if err = viper.BindPFlag("repository.namespace", flagSet.Lookup("namespace")); err != nil {
		return err
	}

	flagSet.StringP("object-file-mode", "", DefaultObjectFileMode.String(), "Permission bits for loose and packed reference files, in octal.")
	if err = viper.BindPFlag("refs.object-file-mode", flagSet.Lookup("object-file-mode")); err != nil {
		return err
	}

	flagSet.DurationP("lock-timeout", "", DefaultLockTimeoutSeconds*time.Second, "How long a stale lock file sits before being reclaimed; 0 disables reclamation.")
	if err = viper.BindPFlag("refs.lock-timeout", flagSet.Lookup("lock-timeout")); err != nil {
		return err
	}

	flagSet.StringP("log-severity", "", INFO, "Logging severity: TRACE, DEBUG, INFO, WARNING, ERROR, or OFF.")
	if err = viper.BindPFlag("logging.severity", flagSet.Lookup("log-severity")); err != nil {
		return err
	}

	flagSet.StringP("log-format", "", "text", "Logging output format: text or json.")
	if err = viper.BindPFlag("logging.format", flagSet.Lookup("log-format")); err != nil {
		return err
	}

	flagSet.StringP("log-file", "", "", "Path to write logs to; empty means stderr.")
	if err = viper.BindPFlag("logging.file-path", flagSet.Lookup("log-file")); err != nil {
		return err
	}

	flagSet.BoolP("metrics", "", false, "Expose Prometheus metrics.")
	if err = viper.BindPFlag("metrics.enabled", flagSet.Lookup("metrics")); err != nil {
		return err
	}

	flagSet.StringP("metrics-listen-addr", "", ":9090", "Address the Prometheus exporter listens on.")
	if err = viper.BindPFlag("metrics.listen-addr", flagSet.Lookup("metrics-listen-addr")); err != nil {
		return err
	}

	flagSet.BoolP("debug-invariants", "", false, "Sets debug.exit-on-invariant-violation. No code reads this setting; invariant violations are returned as errors either way.")
	if err = viper.BindPFlag("debug.exit-on-invariant-violation", flagSet.Lookup("debug-invariants")); err != nil {
		return err
	}

	return nil
}
