package parser

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/Belphemur/ShowFinder/internal/models"
)

// episodeRecord mirrors the fields we keep from /shows/{id}/episodes.
// Season and number are null for some specials.
type episodeRecord struct {
	ID     int     `json:"id"`
	Name   *string `json:"name"`
	Season *int    `json:"season"`
	Number *int    `json:"number"`
}

// EpisodeParser projects an episode listing into models.Episode records.
type EpisodeParser struct{}

// NewEpisodeParser creates a new episode parser
func NewEpisodeParser() *EpisodeParser {
	return &EpisodeParser{}
}

// Parse decodes the JSON array, keeping the response order. A null body is an error.
func (p *EpisodeParser) Parse(body io.Reader) ([]models.Episode, error) {
	var records []episodeRecord
	if err := json.NewDecoder(body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode episodes: %w", err)
	}
	if records == nil {
		return nil, fmt.Errorf("decode episodes: %w", ErrNullBody)
	}

	episodes := make([]models.Episode, len(records))
	for i, r := range records {
		ep := models.Episode{ID: r.ID}
		if r.Name != nil {
			ep.Name = *r.Name
		}
		if r.Season != nil {
			ep.Season = *r.Season
		}
		if r.Number != nil {
			ep.Number = *r.Number
		}
		episodes[i] = ep
	}
	return episodes, nil
}
