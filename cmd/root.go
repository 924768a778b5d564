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

// Package cmd wires the refdb command-line tool: a cobra root command
// carrying the persistent repository/logging/metrics flags, and one
// subcommand per Backend operation.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/googlecloudplatform/refdb/cfg"
	"github.com/googlecloudplatform/refdb/internal/config"
	"github.com/googlecloudplatform/refdb/internal/logger"
	"github.com/googlecloudplatform/refdb/internal/objectdb"
	"github.com/googlecloudplatform/refdb/internal/refs"
	"github.com/googlecloudplatform/refdb/internal/reponame"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	bindErr       error
	configFileErr error
	unmarshalErr  error

	// Config is the parsed configuration, populated by initConfig before
	// any subcommand's RunE runs.
	Config cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "refdb",
	Short: "Inspect and mutate a filesystem-backed reference database",
	Long: `refdb operates directly on the loose-and-packed reference layout
rooted at --root: for-each-ref, show-ref, update-ref, rename-ref,
delete-ref, and pack-refs each open the backend, perform one operation,
and exit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		if unmarshalErr != nil {
			return unmarshalErr
		}

		if err := logger.InitLogFile(
			config.LogConfig{
				Severity: Config.Logging.Severity,
				File:     string(Config.Logging.FilePath),
				Format:   Config.Logging.Format,
				LogRotateConfig: config.LogRotateConfig{
					MaxFileSizeMB:   Config.Logging.LogRotate.MaxFileSizeMb,
					BackupFileCount: Config.Logging.LogRotate.BackupFileCount,
					Compress:        Config.Logging.LogRotate.Compress,
				},
			},
			Config.Logging,
		); err != nil {
			return fmt.Errorf("initializing log file: %w", err)
		}

		logger.Debugf("resolved configuration: %s", Config.String())

		var err error
		metricsHandle, metricsServer, err = setupMetrics(metricsConfig{
			Enabled:    Config.Metrics.Enabled,
			ListenAddr: Config.Metrics.ListenAddr,
		})
		if err != nil {
			return fmt.Errorf("starting metrics: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdownMetrics(cmd.Context(), metricsServer)
	},
}

// Execute runs the root command, exiting the process with status 1 on
// error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file.")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(forEachRefCmd, showRefCmd, updateRefCmd, renameRefCmd, deleteRefCmd, packRefsCmd)
}

func initConfig() {
	viper.SetEnvPrefix("REFDB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		abs, err := filepath.Abs(cfgFile)
		if err != nil {
			configFileErr = fmt.Errorf("resolving config file path: %w", err)
			return
		}
		viper.SetConfigFile(abs)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			configFileErr = fmt.Errorf("reading config file: %w", err)
			return
		}
	}

	unmarshalErr = viper.Unmarshal(&Config, viper.DecodeHook(cfg.DecodeHook()))
}

// openBackend builds the Backend and its object database collaborator for
// the currently parsed Config, ensuring the namespace root exists.
func openBackend() (*refs.Backend, error) {
	root := reponame.Root(string(Config.Repository.Root), Config.Repository.Namespace)
	if err := reponame.EnsureRoot(root); err != nil {
		return nil, fmt.Errorf("preparing repository root: %w", err)
	}

	objects := objectdb.NewStore(string(Config.Repository.Root))

	return refs.NewBackend(root, objects,
		refs.WithFileMode(os.FileMode(cfg.EffectiveObjectFileMode(&Config))),
		refs.WithLockTimeout(Config.Refs.LockTimeout),
		refs.WithMetrics(metricsHandle),
	), nil
}
