package server

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"

	"github.com/Belphemur/ShowFinder/internal/client"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/models"
	"github.com/Belphemur/ShowFinder/internal/render"
	"github.com/Belphemur/ShowFinder/internal/testutil"
)

const placeholder = "https://tinyurl.com/tv-missing"

type testEnv struct {
	fake    *testutil.FakeTVMaze
	server  *httptest.Server
	browser *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fake := testutil.NewFakeTVMaze(t)

	cfg := &config.Config{
		TVMazeURL:       fake.URL,
		MissingImageURL: placeholder,
		ClientTimeout:   "5s",
	}
	cfg.Cache.Provider = "none"
	cfg.Sessions.Size = 10
	cfg.Sessions.TTL = "1m"

	c := client.NewClient(cfg)
	t.Cleanup(func() { _ = c.Close() })

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New failed: %v", err)
	}

	srv := New(cfg, c, renderer)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})

	jar, _ := cookiejar.New(nil)
	return &testEnv{
		fake:    fake,
		server:  ts,
		browser: &http.Client{Jar: jar},
	}
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values, fragment bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if fragment {
		req.Header.Set("Accept", FragmentContentType)
	}
	resp, err := e.browser.Do(req)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.browser.Get(e.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func parseHTML(t *testing.T, resp *http.Response) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("Failed to parse HTML: %v", err)
	}
	return doc
}

func searchResponder(string) (int, string) {
	return http.StatusOK, testutil.GenerateSearchJSON([]testutil.ShowEntryOptions{
		{Score: 1, ShowID: 5, Name: "X", Summary: testutil.StringPtr("<p>s</p>")},
		{Score: 0.5, ShowID: 82, Name: "Game of Thrones", Summary: nil, ImageMedium: testutil.StringPtr("https://static.tvmaze.com/82.jpg")},
	})
}

func TestServer_Page_SetsSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			session = c
		}
	}
	if session == nil || session.Value == "" || !session.HttpOnly {
		t.Fatalf("Expected an HttpOnly %s cookie, got %+v", SessionCookie, resp.Cookies())
	}

	doc := parseHTML(t, resp)
	if doc.Find("#searchForm").Length() != 1 {
		t.Error("Expected the search form")
	}
	if _, hidden := doc.Find("#episodesArea").Attr("hidden"); !hidden {
		t.Error("Expected the episodes region to start hidden")
	}

	// Same session on the next request, with its cookie refreshed
	second := env.get(t, "/")
	for _, c := range second.Cookies() {
		if c.Name == SessionCookie && c.Value != session.Value {
			t.Errorf("Expected the existing session to be reused, got %q", c.Value)
		}
	}
}

func TestServer_SearchThenEpisodes(t *testing.T) {
	env := newTestEnv(t)
	env.fake.OnSearch(searchResponder)
	env.fake.OnEpisodes(func(id string) (int, string) {
		return http.StatusOK, `[{"id":1,"name":"Pilot","season":1,"number":1}]`
	})

	resp := env.postForm(t, "/search", url.Values{"term": {"x"}}, false)
	if resp.StatusCode != http.StatusOK || resp.Request.URL.Path != "/" {
		t.Fatalf("Expected redirect to the page, got %d at %s", resp.StatusCode, resp.Request.URL.Path)
	}

	doc := parseHTML(t, resp)
	cards := doc.Find("#showsList .Show")
	if cards.Length() != 2 {
		t.Fatalf("Expected 2 cards, got %d", cards.Length())
	}
	if src, _ := cards.First().Find("img").Attr("src"); src != placeholder {
		t.Errorf("Expected placeholder image, got %q", src)
	}
	if src, _ := cards.Eq(1).Find("img").Attr("src"); src != "https://static.tvmaze.com/82.jpg" {
		t.Errorf("Expected medium image, got %q", src)
	}

	cardKey, _ := cards.First().Attr("data-card-key")
	resp = env.postForm(t, "/episodes", url.Values{"card": {cardKey}}, false)
	doc = parseHTML(t, resp)

	if n := env.fake.CountPath("/shows/5/episodes"); n != 1 {
		t.Errorf("Expected exactly one request to /shows/5/episodes, got %d", n)
	}
	area := doc.Find("#episodesArea")
	if _, hidden := area.Attr("hidden"); hidden {
		t.Error("Expected the episodes region to be visible")
	}
	if items := area.Find("li"); items.Length() != 1 || items.Text() != "Pilot (Season 1, Number 1)" {
		t.Errorf("Unexpected episodes %q", items.Text())
	}

	// A new search hides the region again
	resp = env.postForm(t, "/search", url.Values{"term": {"x"}}, false)
	doc = parseHTML(t, resp)
	if _, hidden := doc.Find("#episodesArea").Attr("hidden"); !hidden {
		t.Error("Expected the episodes region to be hidden after a new search")
	}
}

func TestServer_EpisodesTriggerSurvivesRebuilds(t *testing.T) {
	env := newTestEnv(t)
	env.fake.OnSearch(searchResponder)

	var cardKey string
	for i := 0; i < 3; i++ {
		resp := env.postForm(t, "/search", url.Values{"term": {"x"}}, true)
		doc := parseHTML(t, resp)
		cardKey, _ = doc.Find(".Show").Eq(1).Attr("data-card-key")
	}

	resp := env.postForm(t, "/episodes", url.Values{"card": {cardKey}}, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if n := env.fake.CountPath("/shows/82/episodes"); n != 1 {
		t.Errorf("Expected one episodes request for show 82, got %d", n)
	}
}

func TestServer_SearchFragment(t *testing.T) {
	env := newTestEnv(t)
	env.fake.OnSearch(searchResponder)

	resp := env.postForm(t, "/search", url.Values{"term": {"x"}}, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	doc := parseHTML(t, resp)
	if doc.Find("#showsList .Show").Length() != 2 {
		t.Error("Expected 2 cards in the fragment")
	}
	if doc.Find("#searchForm").Length() != 0 {
		t.Error("Expected a fragment, not the full page")
	}
}

func TestServer_SearchUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.fake.OnSearch(func(string) (int, string) {
		return http.StatusBadRequest, `{"name":"Bad Request","status":400}`
	})

	resp := env.postForm(t, "/search", url.Values{"term": {"x"}}, true)
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", resp.StatusCode)
	}
	doc := parseHTML(t, resp)
	if msg := doc.Find("#status").Text(); msg != "TVMaze returned an error (status 400)." {
		t.Errorf("Unexpected status message %q", msg)
	}

	// The page shows the same message and is not stuck loading
	page := parseHTML(t, env.get(t, "/"))
	if page.Find("#status").Length() != 1 {
		t.Error("Expected the status message on the page")
	}
	if _, busy := page.Find("#showsList").Attr("aria-busy"); busy {
		t.Error("Expected the shows region not to be loading")
	}
}

func TestServer_EpisodesUnknownCard(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postForm(t, "/episodes", url.Values{"card": {"card-42"}}, true)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
	if len(env.fake.Requests()) != 0 {
		t.Errorf("Expected no upstream request, got %v", env.fake.Requests())
	}
}

func TestServer_APISearch(t *testing.T) {
	env := newTestEnv(t)
	env.fake.OnSearch(searchResponder)

	resp := env.get(t, "/api/search?q=x")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	var shows []models.Show
	if err := json.NewDecoder(resp.Body).Decode(&shows); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	expected := []models.Show{
		{ID: 5, Name: "X", Summary: "<p>s</p>", Image: placeholder},
		{ID: 82, Name: "Game of Thrones", Summary: "", Image: "https://static.tvmaze.com/82.jpg"},
	}
	if len(shows) != len(expected) {
		t.Fatalf("Expected %d shows, got %d", len(expected), len(shows))
	}
	for i := range expected {
		if shows[i] != expected[i] {
			t.Errorf("Show %d: expected %+v, got %+v", i, expected[i], shows[i])
		}
	}
}

func TestServer_APIEpisodes(t *testing.T) {
	env := newTestEnv(t)
	env.fake.OnEpisodes(func(id string) (int, string) {
		return http.StatusOK, testutil.GenerateEpisodesJSON([]testutil.EpisodeOptions{
			{ID: 4952, Name: "Winter is Coming", Season: testutil.IntPtr(1), Number: testutil.IntPtr(1)},
			{ID: 4953, Name: "The Kingsroad", Season: testutil.IntPtr(1), Number: testutil.IntPtr(2)},
		})
	})

	resp := env.get(t, "/api/shows/82/episodes")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var episodes []models.Episode
	if err := json.NewDecoder(resp.Body).Decode(&episodes); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(episodes) != 2 || episodes[1].Name != "The Kingsroad" || episodes[1].Number != 2 {
		t.Errorf("Unexpected episodes %+v", episodes)
	}
}

func TestServer_APIErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		setup    func(f *testutil.FakeTVMaze)
		expected int
		kind     string
	}{
		{
			name:     "missing query",
			path:     "/api/search",
			expected: http.StatusBadRequest,
			kind:     "invalid_request",
		},
		{
			name:     "invalid show id",
			path:     "/api/shows/abc/episodes",
			expected: http.StatusBadRequest,
			kind:     "invalid_request",
		},
		{
			name: "show not found",
			path: "/api/shows/999999/episodes",
			setup: func(f *testutil.FakeTVMaze) {
				f.OnEpisodes(func(string) (int, string) {
					return http.StatusNotFound, `{"name":"Not Found","status":404}`
				})
			},
			expected: http.StatusNotFound,
			kind:     "not_found",
		},
		{
			name: "malformed upstream",
			path: "/api/search?q=x",
			setup: func(f *testutil.FakeTVMaze) {
				f.OnSearch(func(string) (int, string) { return http.StatusOK, `{"not":"an array"}` })
			},
			expected: http.StatusBadGateway,
			kind:     "malformed_response",
		},
		{
			name: "upstream error",
			path: "/api/search?q=x",
			setup: func(f *testutil.FakeTVMaze) {
				f.OnSearch(func(string) (int, string) { return http.StatusForbidden, `{}` })
			},
			expected: http.StatusBadGateway,
			kind:     "upstream_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.setup != nil {
				tt.setup(env.fake)
			}

			resp := env.get(t, tt.path)
			if resp.StatusCode != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, resp.StatusCode)
			}

			var body errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode error body: %v", err)
			}
			if body.Kind != tt.kind || body.Error == "" {
				t.Errorf("Unexpected error body %+v", body)
			}
		})
	}
}

func TestServer_APINetworkUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.fake.Close()

	resp := env.get(t, "/api/search?q=x")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", resp.StatusCode)
	}
}

func TestServer_Healthz(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/healthz")
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("Expected 200 ok, got %d %q", resp.StatusCode, body)
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	if resp := env.get(t, "/nope"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}
