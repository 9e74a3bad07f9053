package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/metrics"
	"github.com/Belphemur/ShowFinder/internal/widget"
)

// SessionCookie holds the id of the caller's widget.
const SessionCookie = "showfinder_session"

// sessionStore maps session ids to widgets. A session expires once it has been idle
// for ttl, and the least recently used one is evicted when the store is full; either
// way its widget is closed.
type sessionStore struct {
	widgets   *expirable.LRU[string, *widget.Widget]
	directory widget.ShowDirectory
	ttl       time.Duration
}

func newSessionStore(directory widget.ShowDirectory, size int, ttl time.Duration) *sessionStore {
	if size <= 0 {
		size = 1000
	}
	onEvict := func(id string, w *widget.Widget) {
		w.Close()
		metrics.ActiveSessions.Dec()
		logger := config.GetLogger()
		logger.Debug().Str("session", id).Msg("Widget session evicted")
	}
	return &sessionStore{
		widgets:   expirable.NewLRU[string, *widget.Widget](size, onEvict, ttl),
		directory: directory,
		ttl:       ttl,
	}
}

// widgetFor returns the widget of the request's session, starting a new session
// when the cookie is missing, malformed or expired. Every request pushes the
// session's expiry back by ttl and re-issues its cookie.
func (s *sessionStore) widgetFor(w http.ResponseWriter, r *http.Request) *widget.Widget {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			if wdg, ok := s.widgets.Get(cookie.Value); ok {
				// Re-adding an existing key resets its expiry without evicting it
				s.widgets.Add(cookie.Value, wdg)
				s.setCookie(w, cookie.Value)
				return wdg
			}
		}
	}

	id := uuid.NewString()
	wdg := widget.New(s.directory)
	s.widgets.Add(id, wdg)
	metrics.ActiveSessions.Inc()
	s.setCookie(w, id)

	logger := config.GetLogger()
	logger.Debug().Str("session", id).Msg("Widget session started")
	return wdg
}

func (s *sessionStore) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Len returns the number of live sessions.
func (s *sessionStore) Len() int {
	return s.widgets.Len()
}

// Close drops every session.
func (s *sessionStore) Close() {
	s.widgets.Purge()
}
