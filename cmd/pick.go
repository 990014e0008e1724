package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"movie-finder-cli/browser"
	"movie-finder-cli/model"
)

func newPickCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Interactively search and pick a movie to inspect",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			query, err := promptQuery()
			if err != nil {
				return err
			}
			movies, _, err := fetchMovies(cmd.Context(), a, query, 1)
			if err != nil {
				return err
			}
			if len(movies) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No movies found.")
				return nil
			}
			index, err := promptSelectMovie(movies)
			if err != nil {
				return err
			}
			detail, err := a.details.Detail(cmd.Context(), movies[index].ID)
			if err != nil {
				return catalogError(browser.DetailFailureMessage, err)
			}
			renderDetail(cmd.OutOrStdout(), detail)
			return nil
		},
	}
}

func promptQuery() (string, error) {
	prompt := promptui.Prompt{
		Label: "Search movies",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("query must not be empty")
			}
			return nil
		},
	}
	query, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return strings.TrimSpace(query), nil
}

func promptSelectMovie(movies []model.MovieSummary) (int, error) {
	labels := movieLabels(movies)
	selectMovie := promptui.Select{
		Label:    "Select Movie",
		Items:    labels,
		Size:     10,
		Searcher: labelSearcher(labels),
	}
	index, _, err := selectMovie.Run()
	if err != nil {
		return 0, fmt.Errorf("invalid movie: %w", err)
	}
	return index, nil
}

func movieLabels(movies []model.MovieSummary) []string {
	labels := make([]string, 0, len(movies))
	for _, m := range movies {
		labels = append(labels, fmt.Sprintf("%s (%s)", m.Title, m.Year()))
	}
	return labels
}

func labelSearcher(labels []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		return strings.Contains(strings.ToLower(labels[index]), strings.ToLower(strings.TrimSpace(input)))
	}
}
