package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the lookup caches",
	Long: `Inspect and maintain the lookup caches.

Only the sqlite backend persists between invocations; with the memory
and lru backends these commands see an empty, fresh cache.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cached keys",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached entry",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Physically remove expired entries",
	Args:  cobra.NoArgs,
	RunE:  runCachePrune,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd, cachePruneCmd)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()
	caches := app.Caches()
	stats := make(map[string]any, len(caches))
	for _, name := range sortedNames(caches) {
		st := caches[name].CacheStats()
		stats[name] = st
		if !jsonOutput {
			fmt.Fprintf(out, "%s: %d entries\n", name, st.Size)
			for _, k := range st.Keys {
				fmt.Fprintf(out, "  %s\n", k)
			}
		}
	}
	if jsonOutput {
		return printJSON(out, stats)
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	for _, c := range app.Caches() {
		c.ClearCache()
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Caches cleared")
	return nil
}

func runCachePrune(cmd *cobra.Command, _ []string) error {
	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()
	caches := app.Caches()
	for _, name := range sortedNames(caches) {
		n, err := caches[name].PruneCache()
		if err != nil {
			return fmt.Errorf("prune %s: %w", name, err)
		}
		fmt.Fprintf(out, "%s: removed %d expired entries\n", name, n)
	}
	return nil
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
