package model

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type GenreList struct {
	Genres []Genre `json:"genres"`
}

// GenreMap maps catalog genre ids to display names.
type GenreMap map[int]string

func NewGenreMap(genres []Genre) GenreMap {
	out := make(GenreMap, len(genres))
	for _, g := range genres {
		out[g.ID] = g.Name
	}
	return out
}

// Names resolves ids in order, dropping ids with no known name.
func (g GenreMap) Names(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name := g[id]; name != "" {
			names = append(names, name)
		}
	}
	return names
}
