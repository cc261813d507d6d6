package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/moodflix/moodflix/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, values and environment variable substitution without starting the server.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an example config.toml",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(configCmd, initCmd)
	configCmd.AddCommand(configTestCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path := "config.toml"
	if len(args) > 0 {
		path = args[0]
	} else if configPath != "" {
		path = configPath
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(out, configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(out, cfg)
	fmt.Fprintln(out, "\nConfiguration valid!")
	return nil
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Fprintln(w, "Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		fmt.Fprintln(w)
	}

	if len(e.Errors) > 0 {
		fmt.Fprintln(w, "Validation errors:")
		for _, msg := range e.Errors {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
		fmt.Fprintln(w)
	}
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration Summary:")
	fmt.Fprintf(w, "  Server:   %s (log: %s)\n", cfg.Addr(), cfg.Server.LogLevel)
	fmt.Fprintf(w, "  OMDb:     %s (ttl %s, timeout %s)\n", keyState(cfg.OMDb.APIKey), cfg.OMDb.CacheTTL.Duration, cfg.OMDb.Timeout.Duration)
	fmt.Fprintf(w, "  YouTube:  %s (ttl %s, %d candidates)\n", keyState(cfg.YouTube.APIKey), cfg.YouTube.CacheTTL.Duration, cfg.YouTube.MaxResults)

	cache := cfg.Cache.Backend
	switch cache {
	case config.BackendLRU:
		cache += fmt.Sprintf(" (%d entries)", cfg.Cache.MaxEntries)
	case config.BackendSQLite:
		cache += fmt.Sprintf(" (%s)", cfg.Cache.Path)
	}
	if cfg.Cache.PruneInterval.Duration > 0 {
		cache += fmt.Sprintf(", prune every %s", cfg.Cache.PruneInterval.Duration)
	}
	fmt.Fprintf(w, "  Cache:    %s\n", cache)
	fmt.Fprintf(w, "  Batch:    %d per batch, %s apart\n", cfg.Batch.Size, cfg.Batch.Delay.Duration)
}

func keyState(key string) string {
	if key == "" {
		return "no API key"
	}
	return "API key set"
}

func runInit(cmd *cobra.Command, args []string) error {
	path := "config.toml"
	if len(args) > 0 {
		path = args[0]
	} else if configPath != "" {
		path = configPath
	}
	force, _ := cmd.Flags().GetBool("force")

	if err := config.WriteDefault(path, force); err != nil {
		return fmt.Errorf("%w (use --force to overwrite)", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nSet OMDB_API_KEY (and optionally YOUTUBE_API_KEY), then run 'moodflix serve'.\n", path)
	return nil
}
