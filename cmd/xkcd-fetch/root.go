package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// rootOptions holds the flags of the fetch command.
type rootOptions struct {
	configFile  string
	logLevel    string
	cacheAll    bool
	quiet       bool
	sleepTime   float64
	timeout     time.Duration
	maxRetries  int
	metricsAddr string

	stdout io.Writer
	stderr io.Writer
}

// newRootCommand builds the command tree writing to the given streams.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "xkcd-fetch [flags] [N...]",
		Short: "Fetch xkcd comics into a local cache and print them",
		Long: `xkcd-fetch keeps a local copy of xkcd comics and prints their records.

Each record is printed as a block of lines: number, title, image file name,
title text, date and the transcript between <transcript> markers, followed by
a blank line. Without numbers the latest comic is printed.

Comics are cached under $RED_SPIDER_ROOT/work/xkcd-fetch/ and only downloaded
when missing. Interrupting a run keeps everything fetched so far.`,
		Example: `  # Print the latest comic
  xkcd-fetch

  # Print two comics, fetching them if needed
  xkcd-fetch 614 1000

  # Cache every comic, two seconds apart
  xkcd-fetch --cache-all --sleep-time 2`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		Args:          comicNumbers,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, opts, args)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default is .xkcd-fetch.yaml or $HOME/.config/xkcd-fetch/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error, disabled)")

	cmd.Flags().BoolVarP(&opts.cacheAll, "cache-all", "a", false, "download every comic listed in the archive")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print progress messages")
	cmd.Flags().Float64VarP(&opts.sleepTime, "sleep-time", "s", 1.0, "seconds to sleep between downloads in order to respect the server")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "timeout of a single request")
	cmd.Flags().IntVar(&opts.maxRetries, "max-retries", 0, "retries of a failed request (0 disables retrying)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate(`xkcd-fetch {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(newConfigCommand(opts))
	return cmd
}

// comicNumbers accepts positive integers only.
func comicNumbers(_ *cobra.Command, args []string) error {
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid comic number %q", arg)
		}
	}
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
