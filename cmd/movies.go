package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"movie-finder-cli/browser"
	"movie-finder-cli/model"
	"movie-finder-cli/service"
	"movie-finder-cli/tui"
)

func newSearchCmd(opts *options) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search movies by title",
		Long:  `Search the catalog and record the search for the trending list.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			movies, genres, err := fetchMovies(cmd.Context(), opts.app, query, page)
			if err != nil {
				return err
			}
			renderMovies(cmd.OutOrStdout(), movies, genres)
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "result page")
	return cmd
}

func newDiscoverCmd(opts *options) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List popular movies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(cmd.Context(), cmd.OutOrStdout(), opts.app, page)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "result page")
	return cmd
}

func newTrendingCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Show the most searched movies",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.Trending.Limit
			}
			entries, err := a.backend.Trending(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("%s: %w", browser.TrendingFailureMessage, err)
			}
			renderTrending(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "number of entries")
	return cmd
}

func newDetailCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "detail <movie-id>",
		Short: "Show certification, trailers and production details for a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid movie id %q", args[0])
			}
			detail, err := opts.app.details.Detail(cmd.Context(), id)
			if err != nil {
				return catalogError(browser.DetailFailureMessage, err)
			}
			renderDetail(cmd.OutOrStdout(), detail)
			return nil
		},
	}
}

func runDiscover(ctx context.Context, out io.Writer, a *app, page int) error {
	movies, genres, err := fetchMovies(ctx, a, "", page)
	if err != nil {
		return err
	}
	renderMovies(out, movies, genres)
	return nil
}

// fetchMovies runs one browser cycle so the CLI shares the TUI's semantics,
// including the search count write.
func fetchMovies(ctx context.Context, a *app, query string, page int) ([]model.MovieSummary, model.GenreMap, error) {
	if page < 1 {
		page = 1
	}
	if page > a.cfg.Browser.MaxPages {
		return nil, nil, fmt.Errorf("page must be between 1 and %d", a.cfg.Browser.MaxPages)
	}
	res := a.runner.Fetch(ctx, browser.Request{Query: query, Page: page})
	switch {
	case res.Err != nil:
		return nil, nil, catalogError(res.Message, res.Err)
	case res.Logical:
		return nil, nil, errors.New(res.Message)
	}
	return res.Movies, res.Genres, nil
}

// catalogError prefixes err with the user-facing message and names the
// usual fix for rejected keys and unknown ids.
func catalogError(message string, err error) error {
	switch {
	case service.IsUnauthorized(err):
		return fmt.Errorf("%s: the catalog rejected the API key, check catalog.api_key: %w", message, err)
	case service.IsNotFound(err):
		return fmt.Errorf("%s: movie not found: %w", message, err)
	default:
		return fmt.Errorf("%s: %w", message, err)
	}
}

func renderMovies(out io.Writer, movies []model.MovieSummary, genres model.GenreMap) {
	if len(movies) == 0 {
		fmt.Fprintln(out, "No movies found.")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"#", "ID", "Title", "Year", "Rating", "Kind", "Genre"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 40},
	})
	for i, movie := range movies {
		t.AppendRow(table.Row{
			i + 1,
			movie.ID,
			movie.Title,
			movie.Year(),
			tui.FormatRating(movie.VoteAverage),
			movie.Kind(),
			tui.FirstGenre(genres.Names(movie.GenreIDs)),
		})
	}
	t.Render()
}

func renderTrending(out io.Writer, entries []model.TrendingEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No movies found.")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Rank", "Search", "Title", "Count", "Poster"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.Rank, e.SearchTerm, e.DisplayTitle(), e.Count, e.PosterURL})
	}
	t.Render()
}

func renderDetail(out io.Writer, d *model.MovieDetail) {
	genres := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		genres = append(genres, g.Name)
	}
	countries := make([]string, 0, len(d.ProductionCountries))
	for _, c := range d.ProductionCountries {
		countries = append(countries, c.Name)
	}
	languages := make([]string, 0, len(d.SpokenLanguages))
	for _, l := range d.SpokenLanguages {
		languages = append(languages, l.EnglishName)
	}
	companies := make([]string, 0, len(d.ProductionCompanies))
	for _, c := range d.ProductionCompanies {
		companies = append(companies, c.Name)
	}
	trailer := "No trailer available."
	if tr, ok := d.FirstTrailer(); ok {
		trailer = tr.WatchURL()
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(d.Title)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 70},
	})
	t.AppendRows([]table.Row{
		{"Year", d.Year()},
		{"Certification", tui.OrDefault(d.Certification, "N/A")},
		{"Runtime", tui.FormatRuntime(d.Runtime)},
		{"Rating", fmt.Sprintf("%s/10 (%s)", tui.FormatRating(d.VoteAverage), tui.FormatVotes(d.VoteCount))},
		{"Trailer", trailer},
		{"Genre", tui.JoinOr(genres, "No genres available.")},
		{"IMDb", tui.OrDefault(tui.IMDbURL(d.IMDBID), "N/A")},
		{"Official Site", tui.OrDefault(d.Homepage, "N/A")},
		{"Overview", tui.OrDefault(d.Overview, "No Overview.")},
		{"Release Date", tui.FormatReleaseDate(d.ReleaseDate)},
		{"Status", tui.OrDefault(d.Status, "Status Unknown.")},
		{"Countries", tui.JoinOr(countries, "N/A")},
		{"Languages", tui.JoinOr(languages, "Unknown Languages.")},
		{"Budget", tui.FormatMoney(d.Budget, "Unknown Budget.")},
		{"Revenue", tui.FormatMoney(d.Revenue, "Unknown Revenue.")},
		{"Tagline", tui.OrDefault(d.Tagline, "No Tagline.")},
		{"Production Companies", tui.JoinOr(companies, "Unknown Companies.")},
	})
	t.Render()
}
