package models

import "fmt"

// Episode is the projection of a TVMaze episode.
type Episode struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Season int    `json:"season"`
	Number int    `json:"number"`
}

// Label renders the episode as a single line, e.g. "Pilot (Season 1, Number 1)".
func (e Episode) Label() string {
	return fmt.Sprintf("%s (Season %d, Number %d)", e.Name, e.Season, e.Number)
}
