package testutil

import (
	"github.com/goccy/go-json"
)

// StringPtr is a helper for creating *string values in tests
func StringPtr(v string) *string {
	return &v
}

// IntPtr is a helper for creating *int values in tests
func IntPtr(v int) *int {
	return &v
}

// ShowEntryOptions contains options for generating one /search/shows entry
type ShowEntryOptions struct {
	Score       float64
	ShowID      int
	Name        string
	Summary     *string // nil renders as JSON null
	ImageMedium *string // nil renders "image": null
	Language    string  // extra upstream field that must not survive projection
}

// EpisodeOptions contains options for generating one /shows/{id}/episodes entry
type EpisodeOptions struct {
	ID     int
	Name   string
	Season *int // nil renders as JSON null
	Number *int // nil renders as JSON null
}

// GenerateSearchJSON builds a body shaped like the TVMaze show search endpoint
func GenerateSearchJSON(entries []ShowEntryOptions) string {
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		var image any
		if e.ImageMedium != nil {
			image = map[string]any{
				"medium":   *e.ImageMedium,
				"original": *e.ImageMedium + "?original",
			}
		}
		var summary any
		if e.Summary != nil {
			summary = *e.Summary
		}
		out = append(out, map[string]any{
			"score": e.Score,
			"show": map[string]any{
				"id":       e.ShowID,
				"url":      "https://www.tvmaze.com/shows/",
				"name":     e.Name,
				"language": e.Language,
				"genres":   []string{"Drama"},
				"summary":  summary,
				"image":    image,
			},
		})
	}
	return mustMarshal(out)
}

// GenerateEpisodesJSON builds a body shaped like the TVMaze episode listing endpoint
func GenerateEpisodesJSON(episodes []EpisodeOptions) string {
	out := make([]map[string]any, 0, len(episodes))
	for _, e := range episodes {
		var season, number any
		if e.Season != nil {
			season = *e.Season
		}
		if e.Number != nil {
			number = *e.Number
		}
		out = append(out, map[string]any{
			"id":      e.ID,
			"url":     "https://www.tvmaze.com/episodes/",
			"name":    e.Name,
			"season":  season,
			"number":  number,
			"type":    "regular",
			"airdate": "2013-06-24",
			"runtime": 60,
		})
	}
	return mustMarshal(out)
}

func mustMarshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
