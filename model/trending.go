package model

// TrendingEntry is one ranked search-count document from the backend.
type TrendingEntry struct {
	ID         string `json:"$id"`
	SearchTerm string `json:"search_term"`
	Title      string `json:"title"`
	MovieID    int    `json:"movie_id"`
	PosterURL  string `json:"poster_url"`
	Count      int    `json:"count"`
	Rank       int    `json:"rank"`
}

// DisplayTitle falls back to the search term for documents written without a title.
func (t TrendingEntry) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.SearchTerm
}
