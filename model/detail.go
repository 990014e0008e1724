package model

import "fmt"

type SpokenLanguage struct {
	ISO639      string `json:"iso_639_1"`
	Name        string `json:"name"`
	EnglishName string `json:"english_name"`
}

type ProductionCountry struct {
	ISO3166 string `json:"iso_3166_1"`
	Name    string `json:"name"`
}

type ProductionCompany struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	LogoPath      string `json:"logo_path"`
	OriginCountry string `json:"origin_country"`
}

// MovieBase is the payload of GET /movie/{id}.
type MovieBase struct {
	ID                  int                 `json:"id"`
	IMDBID              string              `json:"imdb_id"`
	Title               string              `json:"title"`
	OriginalTitle       string              `json:"original_title"`
	Tagline             string              `json:"tagline"`
	Overview            string              `json:"overview"`
	ReleaseDate         string              `json:"release_date"`
	Status              string              `json:"status"`
	Runtime             int                 `json:"runtime"`
	Budget              int64               `json:"budget"`
	Revenue             int64               `json:"revenue"`
	VoteAverage         float64             `json:"vote_average"`
	VoteCount           int                 `json:"vote_count"`
	Homepage            string              `json:"homepage"`
	PosterPath          string              `json:"poster_path"`
	BackdropPath        string              `json:"backdrop_path"`
	Adult               bool                `json:"adult"`
	Video               bool                `json:"video"`
	Genres              []Genre             `json:"genres"`
	SpokenLanguages     []SpokenLanguage    `json:"spoken_languages"`
	ProductionCountries []ProductionCountry `json:"production_countries"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
}

type ReleaseDate struct {
	Certification string `json:"certification"`
	ReleaseDate   string `json:"release_date"`
	Note          string `json:"note"`
	Type          int    `json:"type"`
}

type CountryReleases struct {
	Country      string        `json:"iso_3166_1"`
	ReleaseDates []ReleaseDate `json:"release_dates"`
}

type ReleaseDatesResponse struct {
	ID      int               `json:"id"`
	Results []CountryReleases `json:"results"`
}

type Video struct {
	Site string `json:"site"`
	Type string `json:"type"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

type VideosResponse struct {
	ID      int     `json:"id"`
	Results []Video `json:"results"`
}

type Trailer struct {
	Site string `json:"site"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

func (t Trailer) WatchURL() string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", t.Key)
}

// MovieDetail is the merged view of the base detail, the resolved
// certification and the trailer list.
type MovieDetail struct {
	MovieBase
	Certification string    `json:"certification"`
	Trailers      []Trailer `json:"trailers"`
}

func (d *MovieDetail) Year() string {
	return releaseYear(d.ReleaseDate)
}

// FirstTrailer returns the trailer shown in the overlay, if any.
func (d *MovieDetail) FirstTrailer() (Trailer, bool) {
	if d == nil || len(d.Trailers) == 0 {
		return Trailer{}, false
	}
	return d.Trailers[0], true
}
