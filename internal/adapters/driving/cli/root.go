// Package cli implements the sfcc-replicator command line.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sfcc-replicator/internal/app"
	"github.com/custodia-labs/sfcc-replicator/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool

	// rt is the assembled replicator. Commands that need it call
	// requireRuntime; tests inject one with SetRuntime.
	rt *app.Runtime
	// ownsRuntime is set when rt was built here and must be closed.
	ownsRuntime bool
)

var rootCmd = &cobra.Command{
	Use:   "sfcc-replicator",
	Short: "Replicate CMS content to Salesforce Commerce Cloud",
	Long: `sfcc-replicator turns CMS pages and assets into commerce content assets,
slot configurations and static files, and delivers them through the OCAPI
data API and WebDAV.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeRuntime()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.sfcc-replicator/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetRuntime injects an assembled runtime. The caller keeps ownership.
func SetRuntime(r *app.Runtime) {
	rt = r
	ownsRuntime = false
}

func resolvedConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return file.DefaultPath()
}

func loadConfig() (*file.Config, string, error) {
	path, err := resolvedConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := file.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func requireRuntime() (*app.Runtime, error) {
	if rt != nil {
		return rt, nil
	}
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	r, err := app.New(cfg)
	if err != nil {
		return nil, err
	}
	rt, ownsRuntime = r, true
	return rt, nil
}

func closeRuntime() error {
	if rt == nil || !ownsRuntime {
		return nil
	}
	err := rt.Close()
	rt, ownsRuntime = nil, false
	return err
}

var errFailed = errors.New("replication failed")
