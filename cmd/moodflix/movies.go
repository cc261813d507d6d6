package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moodflix/moodflix/internal/discovery"
	"github.com/moodflix/moodflix/internal/omdb"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search movies by title",
	Long: `Search movies by title. The first rows are upgraded to full records.

Examples:
  moodflix search "The Matrix"
  moodflix search --page 2 star wars`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var lookupCmd = &cobra.Command{
	Use:   "lookup [imdb-id]",
	Short: "Show the full record for an IMDb id or exact title",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLookup,
}

var recsCmd = &cobra.Command{
	Use:   "recs <genre>",
	Short: "Recommend titles from a genre",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecs,
}

func init() {
	rootCmd.AddCommand(searchCmd, lookupCmd, recsCmd)
	searchCmd.Flags().Int("page", 1, "Result page")
	lookupCmd.Flags().String("plot", "short", "Plot length (short or full)")
	lookupCmd.Flags().String("title", "", "Look up by exact title instead of id")
	lookupCmd.Flags().String("year", "", "Year to narrow a title lookup")
	recsCmd.Flags().String("exclude", "", "IMDb id to leave out")
	recsCmd.Flags().Int("count", discovery.DefaultRecommendations, "Number of titles")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	page, _ := cmd.Flags().GetInt("page")

	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Discovery.Search(cmd.Context(), query, page)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, result)
	}
	if len(result.Movies) == 0 {
		fmt.Fprintf(out, "No movies found for %q\n", query)
		return nil
	}
	fmt.Fprintf(out, "%d results for %q (page %d)\n\n", result.TotalResults, query, page)
	printMovieList(out, result.Movies)
	return nil
}

func runLookup(cmd *cobra.Command, args []string) error {
	plotFlag, _ := cmd.Flags().GetString("plot")
	title, _ := cmd.Flags().GetString("title")
	year, _ := cmd.Flags().GetString("year")

	plot, err := omdb.ParsePlot(plotFlag)
	if err != nil {
		return err
	}
	if title == "" && len(args) == 0 {
		return fmt.Errorf("an IMDb id or --title is required")
	}

	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	var (
		movie *omdb.Movie
		found bool
		ref   string
	)
	if title != "" {
		ref = strings.TrimSpace(title + " " + year)
		movie, found, err = app.Movies.LookupByTitle(cmd.Context(), title, year)
	} else {
		ref = args[0]
		movie, found, err = app.Movies.LookupByID(cmd.Context(), args[0], plot)
	}
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}
	if !found {
		return fmt.Errorf("movie not found: %s", ref)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, movie)
	}
	printMovieDetail(out, movie)
	return nil
}

func runRecs(cmd *cobra.Command, args []string) error {
	exclude, _ := cmd.Flags().GetString("exclude")
	count, _ := cmd.Flags().GetInt("count")

	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	movies := app.Discovery.Recommendations(cmd.Context(), args[0], exclude, count)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, movies)
	}
	if len(movies) == 0 {
		fmt.Fprintf(out, "No recommendations for %s\n", args[0])
		return nil
	}
	printMovieList(out, movies)
	return nil
}

func printMovieList(w io.Writer, movies []*omdb.Movie) {
	for i, m := range movies {
		line := fmt.Sprintf("%2d. %s (%s)", i+1, m.Title, m.Year)
		if m.Genre != "" {
			line += "  " + m.Genre
		}
		if m.IMDBRating != "" && m.IMDBRating != "N/A" {
			line += fmt.Sprintf("  ★ %s", m.IMDBRating)
		}
		fmt.Fprintf(w, "%s  [%s]\n", line, m.IMDBID)
	}
}

func printMovieDetail(w io.Writer, m *omdb.Movie) {
	fmt.Fprintf(w, "%s (%s)\n", m.Title, m.Year)
	fmt.Fprintf(w, "  IMDb:     %s\n", m.IMDBID)
	if m.Genre != "" {
		fmt.Fprintf(w, "  Genre:    %s\n", m.Genre)
	}
	if mins := m.RuntimeMinutes(); mins > 0 {
		fmt.Fprintf(w, "  Runtime:  %d min\n", mins)
	}
	if m.Director != "" {
		fmt.Fprintf(w, "  Director: %s\n", m.Director)
	}
	for _, r := range m.Ratings {
		fmt.Fprintf(w, "  %s: %s\n", r.Source, r.Value)
	}
	if m.Plot != "" {
		fmt.Fprintf(w, "\n%s\n", m.Plot)
	}
}
