package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Belphemur/ShowFinder/internal/apperrors"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/models"
)

// GetEpisodes queries /shows/{id}/episodes. Invalid identifiers are rejected before
// any request is made.
func (c *client) GetEpisodes(ctx context.Context, showID string) ([]models.Episode, error) {
	logger := config.GetLogger()

	id, err := ParseShowID(showID)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/shows/%d/episodes", c.baseURL, id)

	logger.Debug().Int("show_id", id).Str("url", endpoint).Msg("Fetching episodes")

	episodes, err := getJSON(ctx, c, "episodes", endpoint, c.episodeParser)
	if err != nil {
		return nil, fmt.Errorf("episodes of show %d: %w", id, err)
	}

	logger.Info().Int("show_id", id).Int("count", len(episodes)).Msg("Episode fetch completed")
	return episodes, nil
}

// ParseShowID accepts an integer show identifier written as a string.
func ParseShowID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id < 0 {
		return 0, &apperrors.ErrInvalidShowID{Value: raw}
	}
	return id, nil
}
