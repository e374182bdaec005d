package omdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/Digital-Shane/media-renamer/internal/media"
	"github.com/Digital-Shane/media-renamer/internal/provider"
	"github.com/google/go-cmp/cmp"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripFunc) *http.Client {
	return &http.Client{Transport: fn}
}

func jsonResponse(status int, body string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp
}

func newTestProvider(t *testing.T, fn roundTripFunc) *Provider {
	t.Helper()
	prov, err := New("testing", newTestClient(fn))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return prov
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New("  ", nil); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("New() error = %v, want %v", err, ErrMissingAPIKey)
	}
}

func TestSearchByTitle_Movie(t *testing.T) {
	var gotQuery string
	prov := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		gotQuery = req.URL.RawQuery
		return jsonResponse(200, `{
            "Title": "Interstellar",
            "Year": "2014",
            "imdbID": "tt0816692",
            "Type": "movie",
            "Response": "True"
        }`), nil
	})

	got, err := prov.SearchByTitle(context.Background(), provider.Query{Title: "Interstellar", Year: 2014, Kind: media.KindMovie})
	if err != nil {
		t.Fatalf("SearchByTitle() error = %v", err)
	}
	want := []provider.Candidate{{ID: "tt0816692", Title: "Interstellar", Year: 2014, Kind: media.KindMovie, IMDbID: "tt0816692"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchByTitle() mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(gotQuery, "Interstellar") {
		t.Errorf("query %q does not carry the title", gotQuery)
	}
}

func TestSearchByTitle_Series(t *testing.T) {
	prov := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{
            "Title": "Breaking Bad",
            "Year": "2008–2013",
            "imdbID": "tt0903747",
            "Type": "series",
            "totalSeasons": "5",
            "Response": "True"
        }`), nil
	})

	got, err := prov.SearchByTitle(context.Background(), provider.Query{Title: "Breaking Bad", Kind: media.KindEpisode})
	if err != nil {
		t.Fatalf("SearchByTitle() error = %v", err)
	}
	want := []provider.Candidate{{ID: "tt0903747", Title: "Breaking Bad", Year: 2008, Kind: media.KindEpisode, IMDbID: "tt0903747"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchByTitle() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchByTitle_NotFoundIsEmpty(t *testing.T) {
	prov := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"Response": "False", "Error": "Movie not found!"}`), nil
	})

	got, err := prov.SearchByTitle(context.Background(), provider.Query{Title: "Nope", Kind: media.KindMovie})
	if err != nil {
		t.Fatalf("SearchByTitle() error = %v, want nil", err)
	}
	if len(got) != 0 {
		t.Errorf("SearchByTitle() = %v, want no candidates", got)
	}
}

func TestSearchByTitle_InvalidKey(t *testing.T) {
	prov := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(401, `{"Response": "False", "Error": "Invalid API key!"}`), nil
	})

	_, err := prov.SearchByTitle(context.Background(), provider.Query{Title: "Heat", Kind: media.KindMovie})
	if !provider.IsAuth(err) {
		t.Fatalf("SearchByTitle() error = %v, want auth error", err)
	}
}

func TestEpisodeTitle(t *testing.T) {
	prov := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("Episode") == "99" {
			return jsonResponse(200, `{"Response": "False", "Error": "Episode not found!"}`), nil
		}
		return jsonResponse(200, `{
            "Title": "Pilot",
            "Released": "20 Jan 2008",
            "Season": "1",
            "Episode": "1",
            "imdbID": "tt0959621",
            "seriesID": "tt0903747",
            "Type": "episode",
            "Response": "True"
        }`), nil
	})

	got, err := prov.EpisodeTitle(context.Background(), "tt0903747", 1, 1)
	if err != nil || got != "Pilot" {
		t.Fatalf("EpisodeTitle() = %q, %v, want Pilot", got, err)
	}

	got, err = prov.EpisodeTitle(context.Background(), "tt0903747", 1, 99)
	if err != nil || got != "" {
		t.Errorf("EpisodeTitle() missing = %q, %v, want empty and nil", got, err)
	}
}
