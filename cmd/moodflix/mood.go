package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moodflix/moodflix/internal/discovery"
	"github.com/moodflix/moodflix/internal/mood"
)

var moodCmd = &cobra.Command{
	Use:   "mood [mood]",
	Short: "List moods or pick movies for one",
	Long: `Without arguments, list the supported moods and their genres.
With a mood, fetch a shuffled set of matching titles.

Examples:
  moodflix mood
  moodflix mood spooky --count 4`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMood,
}

func init() {
	rootCmd.AddCommand(moodCmd)
	moodCmd.Flags().Int("count", mood.DefaultSeedCount, "Number of titles")
}

func runMood(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		catalog, err := mood.New()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, catalog.Stats())
		}
		stats := catalog.Stats()
		for _, m := range catalog.Moods() {
			st := stats[m]
			fmt.Fprintf(out, "%-11s %-40s %d titles\n", m, strings.Join(st.GenreList, ", "), st.UniqueSeeds)
		}
		return nil
	}

	count, _ := cmd.Flags().GetInt("count")

	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	movies, err := app.Discovery.Prefetch(cmd.Context(), args[0], count)
	if errors.Is(err, discovery.ErrUnknownMood) {
		if s := app.Catalog.Suggest(args[0]); s != "" {
			return fmt.Errorf("unknown mood %q, did you mean %q?", args[0], s)
		}
		return fmt.Errorf("unknown mood %q (try: %s)", args[0], strings.Join(app.Catalog.Moods(), ", "))
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(out, movies)
	}
	if len(movies) > 0 && movies[0].Fallback {
		fmt.Fprintln(out, "Movie details are temporarily unavailable; showing placeholders.")
	}
	printMovieList(out, movies)
	return nil
}
