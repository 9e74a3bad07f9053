package widget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/Belphemur/ShowFinder/internal/apperrors"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/metrics"
	"github.com/Belphemur/ShowFinder/internal/models"
)

// ErrSuperseded is returned by an action whose result was discarded because a newer
// action of the same kind was started while it was in flight.
var ErrSuperseded = errors.New("superseded by a newer request")

// ShowDirectory is the part of the TVMaze client the widget needs.
type ShowDirectory interface {
	SearchShows(ctx context.Context, term string) ([]models.Show, error)
	GetEpisodes(ctx context.Context, showID string) ([]models.Episode, error)
}

// EpisodesState is the visibility of the episodes region.
type EpisodesState int

const (
	// EpisodesHidden: nothing was ever loaded.
	EpisodesHidden EpisodesState = iota
	// EpisodesHiddenStale: a list was loaded, then a search hid it without clearing it.
	EpisodesHiddenStale
	// EpisodesVisible: the list of the last clicked show is shown.
	EpisodesVisible
)

func (s EpisodesState) String() string {
	switch s {
	case EpisodesHidden:
		return "hidden"
	case EpisodesHiddenStale:
		return "hidden-with-stale-content"
	case EpisodesVisible:
		return "visible"
	default:
		return "EpisodesState(" + strconv.Itoa(int(s)) + ")"
	}
}

// Card is one rendered show. Key identifies the card within its widget and is what
// the episodes trigger sends back.
type Card struct {
	Key  string
	Show models.Show
}

// Widget holds the state of one show finder: a shows region and an episodes region.
// It is safe for concurrent use; each browser session owns its own instance.
type Widget struct {
	directory ShowDirectory

	mu sync.Mutex

	term      string
	searched  bool
	cards     []Card
	cardShows map[string]int
	nextCard  int

	episodes       []models.Episode
	episodesShowID int
	episodesState  EpisodesState

	status Status

	searchGen       uint64
	searchCancel    context.CancelFunc
	searchLoading   bool
	episodesGen     uint64
	episodesCancel  context.CancelFunc
	episodesLoading bool
}

// New creates an empty widget backed by directory.
func New(directory ShowDirectory) *Widget {
	return &Widget{
		directory: directory,
		cardShows: make(map[string]int),
	}
}

// Submit handles a search form submission. The episodes region is hidden
// immediately, whatever its state, and its content is kept. On success the shows
// region is rebuilt from scratch. Starting a new search cancels the one in flight,
// whose call then returns ErrSuperseded.
func (w *Widget) Submit(ctx context.Context, term string) ([]Card, error) {
	logger := config.GetLogger()

	w.mu.Lock()
	w.searchGen++
	gen := w.searchGen
	if w.searchCancel != nil {
		w.searchCancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	w.searchCancel = cancel
	w.searchLoading = true
	w.term = term
	w.status = Status{}
	w.hideEpisodesLocked()
	w.mu.Unlock()

	defer cancel()

	shows, err := w.directory.SearchShows(ctx, term)

	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.searchGen {
		logger.Debug().Str("term", term).Msg("Discarding superseded search result")
		metrics.WidgetActionsTotal.WithLabelValues("search", "superseded").Inc()
		return nil, ErrSuperseded
	}
	w.searchCancel = nil
	w.searchLoading = false

	if err != nil {
		w.status = StatusFor(err)
		logger.Warn().Err(err).Str("term", term).Str("status", string(w.status.Kind)).Msg("Search failed")
		metrics.WidgetActionsTotal.WithLabelValues("search", "error").Inc()
		return nil, err
	}

	w.cards = make([]Card, len(shows))
	w.cardShows = make(map[string]int, len(shows))
	for i, show := range shows {
		w.nextCard++
		key := fmt.Sprintf("card-%d", w.nextCard)
		w.cards[i] = Card{Key: key, Show: show}
		w.cardShows[key] = show.ID
	}
	w.searched = true

	metrics.WidgetActionsTotal.WithLabelValues("search", "success").Inc()
	return append([]Card(nil), w.cards...), nil
}

// ShowEpisodes handles a click on the episodes trigger of the card identified by
// cardKey. The show is resolved through the widget's card map; an unknown key fails
// without touching the network. On success the episodes region becomes visible and
// its list is replaced by the clicked show's episodes.
func (w *Widget) ShowEpisodes(ctx context.Context, cardKey string) ([]models.Episode, error) {
	logger := config.GetLogger()

	w.mu.Lock()
	showID, ok := w.cardShows[cardKey]
	if !ok {
		err := apperrors.NewNotFoundError("card", cardKey)
		w.status = StatusFor(err)
		w.mu.Unlock()
		logger.Warn().Str("card", cardKey).Msg("Episodes requested for unknown card")
		metrics.WidgetActionsTotal.WithLabelValues("episodes", "error").Inc()
		return nil, err
	}
	w.episodesGen++
	gen := w.episodesGen
	if w.episodesCancel != nil {
		w.episodesCancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	w.episodesCancel = cancel
	w.episodesLoading = true
	w.status = Status{}
	w.mu.Unlock()

	defer cancel()

	episodes, err := w.directory.GetEpisodes(ctx, strconv.Itoa(showID))

	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.episodesGen {
		logger.Debug().Int("show_id", showID).Msg("Discarding superseded episodes result")
		metrics.WidgetActionsTotal.WithLabelValues("episodes", "superseded").Inc()
		return nil, ErrSuperseded
	}
	w.episodesCancel = nil
	w.episodesLoading = false

	if err != nil {
		w.status = StatusFor(err)
		logger.Warn().Err(err).Int("show_id", showID).Str("status", string(w.status.Kind)).Msg("Episode fetch failed")
		metrics.WidgetActionsTotal.WithLabelValues("episodes", "error").Inc()
		return nil, err
	}

	w.episodes = episodes
	w.episodesShowID = showID
	w.episodesState = EpisodesVisible

	metrics.WidgetActionsTotal.WithLabelValues("episodes", "success").Inc()
	return append([]models.Episode(nil), episodes...), nil
}

// ShowIDForCard returns the show behind a card of the current render.
func (w *Widget) ShowIDForCard(cardKey string) (int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id, ok := w.cardShows[cardKey]
	return id, ok
}

// hideEpisodesLocked hides the episodes region and invalidates any episodes fetch
// in flight, so its late result cannot make the region visible again.
func (w *Widget) hideEpisodesLocked() {
	if w.episodesState == EpisodesVisible {
		w.episodesState = EpisodesHiddenStale
	}
	w.episodesGen++
	if w.episodesCancel != nil {
		w.episodesCancel()
		w.episodesCancel = nil
	}
	w.episodesLoading = false
}

// Close cancels any request still in flight.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.searchCancel != nil {
		w.searchCancel()
		w.searchCancel = nil
	}
	if w.episodesCancel != nil {
		w.episodesCancel()
		w.episodesCancel = nil
	}
}
