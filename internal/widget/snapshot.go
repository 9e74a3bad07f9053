package widget

import "github.com/Belphemur/ShowFinder/internal/models"

// Snapshot is an immutable copy of a widget's state, used for rendering.
type Snapshot struct {
	Term            string
	Searched        bool
	Cards           []Card
	SearchLoading   bool
	Episodes        []models.Episode
	EpisodesShowID  int
	EpisodesState   EpisodesState
	EpisodesLoading bool
	Status          Status
}

// EpisodesVisible reports whether the episodes region should be displayed.
func (s Snapshot) EpisodesVisible() bool {
	return s.EpisodesState == EpisodesVisible
}

// Snapshot copies the current state.
func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		Term:            w.term,
		Searched:        w.searched,
		Cards:           append([]Card(nil), w.cards...),
		SearchLoading:   w.searchLoading,
		Episodes:        append([]models.Episode(nil), w.episodes...),
		EpisodesShowID:  w.episodesShowID,
		EpisodesState:   w.episodesState,
		EpisodesLoading: w.episodesLoading,
		Status:          w.status,
	}
}
