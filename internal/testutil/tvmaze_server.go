package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Responder produces a status code and JSON body for a fake TVMaze endpoint.
type Responder func(arg string) (int, string)

// FakeTVMaze is an httptest server that mimics the two TVMaze endpoints the client uses
// and records every request it receives.
type FakeTVMaze struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
	search   Responder
	episodes Responder
}

// NewFakeTVMaze starts a fake upstream that answers "[]" to everything until configured.
// The server is closed when the test ends.
func NewFakeTVMaze(t testing.TB) *FakeTVMaze {
	t.Helper()
	f := &FakeTVMaze{
		search:   func(string) (int, string) { return http.StatusOK, "[]" },
		episodes: func(string) (int, string) { return http.StatusOK, "[]" },
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

// OnSearch sets the responder for GET /search/shows; it receives the q parameter.
func (f *FakeTVMaze) OnSearch(r Responder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.search = r
}

// OnEpisodes sets the responder for GET /shows/{id}/episodes; it receives the id.
func (f *FakeTVMaze) OnEpisodes(r Responder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.episodes = r
}

// Requests returns the request URIs received so far, in order.
func (f *FakeTVMaze) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// CountPath returns how many requests hit the given path.
func (f *FakeTVMaze) CountPath(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if strings.SplitN(r, "?", 2)[0] == path {
			n++
		}
	}
	return n
}

func (f *FakeTVMaze) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.RequestURI())
	search, episodes := f.search, f.episodes
	f.mu.Unlock()

	var status int
	var body string
	switch {
	case r.URL.Path == "/search/shows":
		status, body = search(r.URL.Query().Get("q"))
	case strings.HasPrefix(r.URL.Path, "/shows/") && strings.HasSuffix(r.URL.Path, "/episodes"):
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/shows/"), "/episodes")
		status, body = episodes(id)
	default:
		status, body = http.StatusNotFound, `{"name":"Not Found","status":404}`
	}

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
