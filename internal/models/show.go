package models

// Show is the projection of a TVMaze show used by the widget.
// Summary may contain markup; Image is always a usable URL.
type Show struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Summary string `json:"summary"`
	Image   string `json:"image"`
}
