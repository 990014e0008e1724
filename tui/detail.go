package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"movie-finder-cli/browser"
)

func renderDetail(d browser.DetailState) string {
	movie := d.Detail
	if movie == nil {
		return ""
	}
	label := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	section := func(name string, value string) string {
		return label.Render(name) + "\n" + value
	}

	headline := strings.Join([]string{
		movie.Year(),
		OrDefault(movie.Certification, "N/A"),
		FormatRuntime(movie.Runtime),
		fmt.Sprintf("★ %s/10 (%s)", FormatRating(movie.VoteAverage), FormatVotes(movie.VoteCount)),
	}, listSeparator)

	trailer := "No trailer available."
	if t, ok := movie.FirstTrailer(); ok {
		trailer = fmt.Sprintf("%s\n%s", t.Name, t.WatchURL())
	}

	var links []string
	if url := IMDbURL(movie.IMDBID); url != "" {
		links = append(links, "IMDb: "+url)
	}
	if movie.Homepage != "" {
		links = append(links, "Official Site: "+movie.Homepage)
	}

	countries := make([]string, 0, len(movie.ProductionCountries))
	for _, c := range movie.ProductionCountries {
		countries = append(countries, c.Name)
	}
	languages := make([]string, 0, len(movie.SpokenLanguages))
	for _, l := range movie.SpokenLanguages {
		languages = append(languages, l.EnglishName)
	}
	companies := make([]string, 0, len(movie.ProductionCompanies))
	for _, c := range movie.ProductionCompanies {
		companies = append(companies, c.Name)
	}

	parts := []string{
		lipgloss.NewStyle().Bold(true).Render(movie.Title),
		hint(headline),
		"",
		section("Trailer", trailer),
		section("Genre", JoinOr(d.Genres, "No genres available.")),
	}
	if len(links) > 0 {
		parts = append(parts, section("Links", strings.Join(links, "\n")))
	}
	parts = append(parts,
		section("Overview", OrDefault(movie.Overview, "No Overview.")),
		section("Release Date", FormatReleaseDate(movie.ReleaseDate)),
		section("Status", OrDefault(movie.Status, "Status Unknown.")),
		section("Countries", JoinOr(countries, "N/A")),
		section("Languages", JoinOr(languages, "Unknown Languages.")),
		section("Budget", FormatMoney(movie.Budget, "Unknown Budget.")),
		section("Revenue", FormatMoney(movie.Revenue, "Unknown Revenue.")),
		section("Tagline", OrDefault(movie.Tagline, "No Tagline.")),
		section("Production Companies", JoinOr(companies, "Unknown Companies.")),
	)
	return strings.Join(parts, "\n\n")
}
