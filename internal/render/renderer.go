package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Belphemur/ShowFinder/internal/models"
	"github.com/Belphemur/ShowFinder/internal/widget"
)

// Renderer builds the widget markup. It is safe for concurrent use.
type Renderer struct {
	templates *template.Template
	policy    *bluemonday.Policy
}

// cardView is a show card ready for the template. Summary has been sanitized.
type cardView struct {
	Key     string
	ID      int
	Name    string
	Image   string
	Summary template.HTML
}

type episodeView struct {
	ID    int
	Label string
}

type pageView struct {
	Term            string
	Searched        bool
	SearchLoading   bool
	Cards           []cardView
	Episodes        []episodeView
	EpisodesVisible bool
	EpisodesLoading bool
	Status          widget.Status
}

// New parses the page templates.
func New() (*Renderer, error) {
	t := template.New("render")
	for _, src := range []string{pageTemplate, statusTemplate, showsTemplate, episodesTemplate} {
		if _, err := t.Parse(src); err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}
	}
	return &Renderer{
		templates: t,
		policy:    bluemonday.UGCPolicy(),
	}, nil
}

// Page writes the full document for a widget.
func (r *Renderer) Page(w io.Writer, snap widget.Snapshot) error {
	return r.execute(w, "page", snap)
}

// Shows writes the status message followed by the shows region.
func (r *Renderer) Shows(w io.Writer, snap widget.Snapshot) error {
	if err := r.execute(w, "status", snap); err != nil {
		return err
	}
	return r.execute(w, "shows", snap)
}

// Episodes writes the status message followed by the episodes region.
func (r *Renderer) Episodes(w io.Writer, snap widget.Snapshot) error {
	if err := r.execute(w, "status", snap); err != nil {
		return err
	}
	return r.execute(w, "episodes", snap)
}

// SanitizeSummary strips anything from an upstream summary that is not plain
// formatting markup.
func (r *Renderer) SanitizeSummary(summary string) template.HTML {
	return template.HTML(r.policy.Sanitize(summary))
}

func (r *Renderer) execute(w io.Writer, name string, snap widget.Snapshot) error {
	if err := r.templates.ExecuteTemplate(w, name, r.view(snap)); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

func (r *Renderer) view(snap widget.Snapshot) pageView {
	cards := make([]cardView, len(snap.Cards))
	for i, c := range snap.Cards {
		cards[i] = r.card(c.Key, c.Show)
	}
	episodes := make([]episodeView, len(snap.Episodes))
	for i, e := range snap.Episodes {
		episodes[i] = episodeView{ID: e.ID, Label: e.Label()}
	}
	return pageView{
		Term:            snap.Term,
		Searched:        snap.Searched,
		SearchLoading:   snap.SearchLoading,
		Cards:           cards,
		Episodes:        episodes,
		EpisodesVisible: snap.EpisodesVisible(),
		EpisodesLoading: snap.EpisodesLoading,
		Status:          snap.Status,
	}
}

func (r *Renderer) card(key string, show models.Show) cardView {
	return cardView{
		Key:     key,
		ID:      show.ID,
		Name:    show.Name,
		Image:   show.Image,
		Summary: r.SanitizeSummary(show.Summary),
	}
}
