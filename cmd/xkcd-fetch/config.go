package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"xkcdfetch/pkg/config"
)

const defaultConfigPath = ".xkcd-fetch.yaml"

func newConfigCommand(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage xkcd-fetch configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (RED_SPIDER_ROOT, XKCD_FETCH_*), including .env files
  - Configuration file
  - Default values (lowest priority)`,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create an example configuration file",
		Long: `Create a configuration file holding the default values.

The file is created as '.xkcd-fetch.yaml' in the current directory unless a
different path is given with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, opts)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, opts)
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, opts)
		},
	}

	configCmd.AddCommand(initCmd, showCmd, validateCmd)
	return configCmd
}

func runConfigInit(cmd *cobra.Command, opts *rootOptions) error {
	path := opts.configFile
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.Load(opts.configFile, nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, string(data))
	fmt.Fprintf(out, "\n# cache directory: %s\n", cfg.Cache.Dir())
	return nil
}

func runConfigValidate(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.Load(opts.configFile, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration is valid")
	fmt.Fprintf(out, "  Base URL: %s\n", cfg.Network.BaseURL)
	fmt.Fprintf(out, "  Image base URL: %s\n", cfg.Network.ImageBaseURL)
	fmt.Fprintf(out, "  Cache directory: %s\n", cfg.Cache.Dir())
	fmt.Fprintf(out, "  Sleep time: %s\n", cfg.Network.SleepTime)
	fmt.Fprintf(out, "  Timeout: %s\n", cfg.Network.Timeout)
	fmt.Fprintf(out, "  Max retries: %d\n", cfg.Network.MaxRetries)
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
