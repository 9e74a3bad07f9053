package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/render"
	"github.com/Belphemur/ShowFinder/internal/widget"
)

// FragmentContentType is the Accept value asking for a region fragment instead of
// a redirect to the full page.
const FragmentContentType = "text/html-fragment"

// Server wires the widget actions to HTTP routes.
type Server struct {
	directory widget.ShowDirectory
	renderer  *render.Renderer
	sessions  *sessionStore
	handler   http.Handler
}

// New creates a server whose widgets query directory.
func New(cfg *config.Config, directory widget.ShowDirectory, renderer *render.Renderer) *Server {
	ttl := config.ParseDuration("sessions.ttl", cfg.Sessions.TTL, 30*time.Minute)
	s := &Server{
		directory: directory,
		renderer:  renderer,
		sessions:  newSessionStore(directory, cfg.Sessions.Size, ttl),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("POST /episodes", s.handleEpisodes)
	mux.HandleFunc("GET /api/search", s.handleAPISearch)
	mux.HandleFunc("GET /api/shows/{id}/episodes", s.handleAPIEpisodes)
	mux.HandleFunc("GET /healthz", handleHealth)

	sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})
	s.handler = logRequests(sentryHandler.Handle(mux))
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// NewHTTPServer creates the HTTP server listening on the configured address.
func (s *Server) NewHTTPServer(address string, port int) *http.Server {
	if port == 0 {
		port = 8080
	}
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", address, port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Close drops every session and cancels their in-flight requests.
func (s *Server) Close() {
	s.sessions.Close()
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	wdg := s.sessions.widgetFor(w, r)
	s.writeHTML(w, r, http.StatusOK, func(buf *bytes.Buffer) error {
		return s.renderer.Page(buf, wdg.Snapshot())
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	wdg := s.sessions.widgetFor(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	_, err := wdg.Submit(r.Context(), r.PostForm.Get("term"))
	code := s.actionStatus(r, err)

	if !wantsFragment(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.writeHTML(w, r, code, func(buf *bytes.Buffer) error {
		return s.renderer.Shows(buf, wdg.Snapshot())
	})
}

func (s *Server) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	wdg := s.sessions.widgetFor(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	_, err := wdg.ShowEpisodes(r.Context(), r.PostForm.Get("card"))
	code := s.actionStatus(r, err)

	if !wantsFragment(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.writeHTML(w, r, code, func(buf *bytes.Buffer) error {
		return s.renderer.Episodes(buf, wdg.Snapshot())
	})
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if strings.TrimSpace(term) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Missing query parameter q.",
			Kind:  string(widget.StatusInvalidRequest),
		})
		return
	}

	shows, err := s.directory.SearchShows(r.Context(), term)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shows)
}

func (s *Server) handleAPIEpisodes(w http.ResponseWriter, r *http.Request) {
	episodes, err := s.directory.GetEpisodes(r.Context(), r.PathValue("id"))
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, episodes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// actionStatus reports a failed widget action and returns the status code of the
// fragment response. A superseded action renders the newer state with 200.
func (s *Server) actionStatus(r *http.Request, err error) int {
	if err == nil || errors.Is(err, widget.ErrSuperseded) {
		return http.StatusOK
	}
	return reportError(r, err, widget.StatusFor(err))
}

// writeHTML renders into a buffer first so a template failure still yields a clean 500.
func (s *Server) writeHTML(w http.ResponseWriter, r *http.Request, code int, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		reportError(r, err, widget.StatusFor(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

func wantsFragment(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), FragmentContentType)
}
