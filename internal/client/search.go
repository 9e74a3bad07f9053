package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/models"
)

// SearchShows queries /search/shows with term as the q parameter.
// An empty term is sent as-is; TVMaze answers it with an empty list.
func (c *client) SearchShows(ctx context.Context, term string) ([]models.Show, error) {
	logger := config.GetLogger()
	params := url.Values{"q": []string{term}}
	endpoint := fmt.Sprintf("%s/search/shows?%s", c.baseURL, params.Encode())

	logger.Debug().Str("term", term).Str("url", endpoint).Msg("Searching shows")

	shows, err := getJSON(ctx, c, "search", endpoint, c.showParser)
	if err != nil {
		return nil, fmt.Errorf("search shows %q: %w", term, err)
	}

	logger.Info().Str("term", term).Int("count", len(shows)).Msg("Show search completed")
	return shows, nil
}
