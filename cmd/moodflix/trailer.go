package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var trailerCmd = &cobra.Command{
	Use:   "trailer <title>...",
	Short: "Find the official trailer for a title",
	Long: `Find the official trailer for a title on YouTube.

Without a YouTube API key, or when the quota is exhausted, a search
link is printed instead.

Examples:
  moodflix trailer Inception --year 2010`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTrailer,
}

func init() {
	rootCmd.AddCommand(trailerCmd)
	trailerCmd.Flags().String("year", "", "Release year")
}

func runTrailer(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")
	year, _ := cmd.Flags().GetString("year")

	app, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	res := app.Trailers.Resolve(cmd.Context(), title, year)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, res)
	}
	if !res.Found() {
		fmt.Fprintf(out, "No trailer resolved (%s)\n", res.Reason)
		fmt.Fprintf(out, "Search: %s\n", searchLink(title, year))
		return nil
	}
	fmt.Fprintf(out, "%s\n  %s\n  https://www.youtube.com/watch?v=%s\n", res.Title, res.ChannelTitle, res.VideoID)
	return nil
}

// searchLink is the manual fallback offered when no video was selected.
func searchLink(title, year string) string {
	q := strings.Join(strings.Fields(title+" "+year+" trailer"), " ")
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(q)
}
