package parser

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/Belphemur/ShowFinder/internal/models"
)

// searchEntry is one element of the /search/shows response.
// Score is part of the payload but never used.
type searchEntry struct {
	Score float64     `json:"score"`
	Show  *showRecord `json:"show"`
}

type showRecord struct {
	ID      int          `json:"id"`
	Name    string       `json:"name"`
	Summary *string      `json:"summary"`
	Image   *imageRecord `json:"image"`
}

type imageRecord struct {
	Medium   string `json:"medium"`
	Original string `json:"original"`
}

// ShowSearchParser projects a show search response into models.Show records,
// keeping the response order.
type ShowSearchParser struct {
	missingImageURL string
}

// NewShowSearchParser creates a parser that substitutes missingImageURL for shows without a poster
func NewShowSearchParser(missingImageURL string) *ShowSearchParser {
	return &ShowSearchParser{missingImageURL: missingImageURL}
}

// Parse decodes the JSON array and projects each entry's nested show.
func (p *ShowSearchParser) Parse(body io.Reader) ([]models.Show, error) {
	var entries []searchEntry
	if err := json.NewDecoder(body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	if entries == nil {
		return nil, fmt.Errorf("decode search results: %w", ErrNullBody)
	}

	shows := make([]models.Show, 0, len(entries))
	for i, entry := range entries {
		if entry.Show == nil {
			return nil, fmt.Errorf("search result %d has no show", i)
		}
		shows = append(shows, p.project(entry.Show))
	}
	return shows, nil
}

func (p *ShowSearchParser) project(s *showRecord) models.Show {
	show := models.Show{
		ID:    s.ID,
		Name:  s.Name,
		Image: p.missingImageURL,
	}
	if s.Summary != nil {
		show.Summary = *s.Summary
	}
	if s.Image != nil && s.Image.Medium != "" {
		show.Image = s.Image.Medium
	}
	return show
}
