package service

import (
	"context"

	"movie-finder-cli/model"
)

// Genres fetches the catalog's genre table.
func (c *Client) Genres(ctx context.Context) ([]model.Genre, error) {
	var out model.GenreList
	if err := c.getJSON(ctx, "genres", "/genre/movie/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

// GenreMap is the best-effort lookup used by the browser. Missing labels are
// cosmetic, so failures are logged and an empty map is returned.
func (c *Client) GenreMap(ctx context.Context) model.GenreMap {
	genres, err := c.Genres(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("genre lookup failed")
		return model.GenreMap{}
	}
	return model.NewGenreMap(genres)
}
