package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moodflix/moodflix/internal/config"
	"github.com/moodflix/moodflix/internal/server"
)

var version = "dev"

var (
	configPath string
	jsonOutput bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "moodflix",
	Short: "Mood based movie discovery backed by OMDb and YouTube",
	Long: `moodflix - mood based movie discovery

Serves the MoodFlix JSON API and offers the same lookups from the
command line: title search, movie details, mood picks, recommendations
and trailers.

Run 'moodflix serve' to start the API server.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: discovered)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override server.log_level")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("moodflix {{.Version}}\n")
}

// loadConfig loads --config, or the discovered file, or the defaults.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, _, err = config.LoadOrDefault()
	}
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildApp wires the application for one-shot commands. Logs go to stderr
// so stdout stays parseable.
func buildApp(cmd *cobra.Command) (*server.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	level := cfg.Server.LogLevel
	if logLevel == "" {
		level = "warn"
	}
	return server.New(cfg, newLogger(cmd.ErrOrStderr(), level))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "moodflix %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
