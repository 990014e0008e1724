package model

import "strings"

type MovieSummary struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	BackdropPath     string  `json:"backdrop_path"`
	PosterPath       string  `json:"poster_path"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	GenreIDs         []int   `json:"genre_ids"`
	Adult            bool    `json:"adult"`
	Video            bool    `json:"video"`
}

// Kind labels catalog entries flagged as videos apart from regular movies.
func (m MovieSummary) Kind() string {
	if m.Video {
		return "Video"
	}
	return "Movie"
}

func (m MovieSummary) Year() string {
	return releaseYear(m.ReleaseDate)
}

// MoviePage is one page of a search or discover response. Response and Error
// are only set when the catalog reports an application-level failure.
type MoviePage struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []MovieSummary `json:"results"`
	Response     string         `json:"Response,omitempty"`
	Error        string         `json:"Error,omitempty"`
}

// Failed reports whether the catalog signalled failure despite HTTP success.
func (p MoviePage) Failed() bool {
	return p.Response == "False"
}

func releaseYear(date string) string {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return "N/A"
	}
	year, _, _ := strings.Cut(date, "-")
	if len(year) != 4 {
		return "N/A"
	}
	return year
}
