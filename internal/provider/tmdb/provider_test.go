package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Digital-Shane/media-renamer/internal/media"
	"github.com/Digital-Shane/media-renamer/internal/provider"
	"github.com/google/go-cmp/cmp"
	"github.com/ryanbradynd05/go-tmdb"
)

// mockClient implements Client for testing
type mockClient struct {
	searchMovieFunc      func(name string, options map[string]string) (*tmdb.MovieSearchResults, error)
	searchTvFunc         func(name string, options map[string]string) (*tmdb.TvSearchResults, error)
	getTvSeasonInfoFunc func(showID, seasonID int, options map[string]string) (*tmdb.TvSeason, error)
}

func (m *mockClient) SearchMovie(name string, options map[string]string) (*tmdb.MovieSearchResults, error) {
	if m.searchMovieFunc != nil {
		return m.searchMovieFunc(name, options)
	}
	return nil, errors.New("not implemented")
}

func (m *mockClient) SearchTv(name string, options map[string]string) (*tmdb.TvSearchResults, error) {
	if m.searchTvFunc != nil {
		return m.searchTvFunc(name, options)
	}
	return nil, errors.New("not implemented")
}

func (m *mockClient) GetTvSeasonInfo(showID, seasonID int, options map[string]string) (*tmdb.TvSeason, error) {
	if m.getTvSeasonInfoFunc != nil {
		return m.getTvSeasonInfoFunc(showID, seasonID, options)
	}
	return nil, errors.New("not implemented")
}

func tvResults(t *testing.T, raw string) *tmdb.TvSearchResults {
	t.Helper()
	var results tmdb.TvSearchResults
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		t.Fatalf("unmarshal tv results: %v", err)
	}
	return &results
}

func TestNew(t *testing.T) {
	if _, err := New("", "en-US"); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("New(\"\") error = %v, want %v", err, ErrMissingAPIKey)
	}
	p, err := New("test-api-key", "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.language != "en-US" {
		t.Errorf("default language = %q, want en-US", p.language)
	}
	if p.Name() != "tmdb" {
		t.Errorf("Name() = %q, want tmdb", p.Name())
	}
}

func TestSearchByTitle_Movie(t *testing.T) {
	var gotOptions map[string]string
	client := &mockClient{
		searchMovieFunc: func(name string, options map[string]string) (*tmdb.MovieSearchResults, error) {
			gotOptions = options
			return &tmdb.MovieSearchResults{
				Results: []tmdb.MovieShort{
					{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-31"},
					{ID: 604, Title: "The Matrix Reloaded", ReleaseDate: "2003-05-15"},
					{ID: 9, Title: "Undated"},
				},
			}, nil
		},
	}
	p := NewWithClient(client, "en-US")

	got, err := p.SearchByTitle(context.Background(), provider.Query{Title: "The Matrix", Year: 1999, Kind: media.KindMovie})
	if err != nil {
		t.Fatalf("SearchByTitle() error = %v", err)
	}
	want := []provider.Candidate{
		{ID: "603", Title: "The Matrix", Year: 1999, Kind: media.KindMovie},
		{ID: "604", Title: "The Matrix Reloaded", Year: 2003, Kind: media.KindMovie},
		{ID: "9", Title: "Undated", Kind: media.KindMovie},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchByTitle() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"language": "en-US", "year": "1999"}, gotOptions); diff != "" {
		t.Errorf("search options mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchByTitle_Series(t *testing.T) {
	client := &mockClient{
		searchTvFunc: func(name string, options map[string]string) (*tmdb.TvSearchResults, error) {
			if name != "Breaking Bad" {
				t.Errorf("SearchTv name = %q", name)
			}
			return tvResults(t, `{"results":[{"id":1396,"name":"Breaking Bad","first_air_date":"2008-01-20"}]}`), nil
		},
	}
	p := NewWithClient(client, "")

	got, err := p.SearchByTitle(context.Background(), provider.Query{Title: "Breaking Bad", Kind: media.KindEpisode})
	if err != nil {
		t.Fatalf("SearchByTitle() error = %v", err)
	}
	want := []provider.Candidate{{ID: "1396", Title: "Breaking Bad", Year: 2008, Kind: media.KindEpisode}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchByTitle() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchByTitle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"auth", errors.New("401 Unauthorized"), provider.IsAuth},
		{"rate limit", errors.New("429 rate limit"), provider.IsRateLimited},
		{"unavailable", errors.New("503 Service Unavailable"), provider.IsRetryable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := &mockClient{
				searchMovieFunc: func(string, map[string]string) (*tmdb.MovieSearchResults, error) {
					return nil, tc.err
				},
			}
			_, err := NewWithClient(client, "").SearchByTitle(context.Background(), provider.Query{Title: "Heat"})
			if !tc.check(err) {
				t.Errorf("SearchByTitle() error = %v, not classified as %s", err, tc.name)
			}
		})
	}
}

func TestEpisodeTitle(t *testing.T) {
	calls := 0
	client := &mockClient{
		getTvSeasonInfoFunc: func(showID, season int, options map[string]string) (*tmdb.TvSeason, error) {
			calls++
			if showID != 1396 || season != 1 {
				return nil, errors.New("404 not found")
			}
			if options["language"] != "en-US" {
				t.Errorf("language option = %q, want en-US", options["language"])
			}
			return &tmdb.TvSeason{SeasonNumber: 1, Episodes: []tmdb.TvEpisode{
				{EpisodeNumber: 1, Name: "Pilot"},
				{EpisodeNumber: 2, Name: "Cat's in the Bag..."},
			}}, nil
		},
	}
	p := NewWithClient(client, "en-US")

	tests := []struct {
		season, episode int
		want            string
	}{
		{1, 1, "Pilot"},
		{1, 2, "Cat's in the Bag..."},
		{1, 1, "Pilot"},
		{1, 9, ""},
	}
	for _, tc := range tests {
		got, err := p.EpisodeTitle(context.Background(), "1396", tc.season, tc.episode)
		if err != nil || got != tc.want {
			t.Fatalf("EpisodeTitle(S%dE%d) = %q, %v, want %q", tc.season, tc.episode, got, err, tc.want)
		}
	}
	if calls != 1 {
		t.Errorf("GetTvSeasonInfo called %d times, want 1", calls)
	}

	got, err := p.EpisodeTitle(context.Background(), "1396", 9, 9)
	if err != nil || got != "" {
		t.Errorf("EpisodeTitle() missing season = %q, %v, want empty and nil", got, err)
	}

	if _, err := p.EpisodeTitle(context.Background(), "abc", 1, 1); err == nil {
		t.Error("EpisodeTitle() invalid id error = nil, want error")
	}
}

func TestEpisodeTitleErrorNotCached(t *testing.T) {
	calls := 0
	client := &mockClient{
		getTvSeasonInfoFunc: func(int, int, map[string]string) (*tmdb.TvSeason, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("503 Service Unavailable")
			}
			return &tmdb.TvSeason{Episodes: []tmdb.TvEpisode{{EpisodeNumber: 1, Name: "Pilot"}}}, nil
		},
	}
	p := NewWithClient(client, "")

	if _, err := p.EpisodeTitle(context.Background(), "1396", 1, 1); !provider.IsRetryable(err) {
		t.Fatalf("EpisodeTitle() error = %v, want retryable", err)
	}
	got, err := p.EpisodeTitle(context.Background(), "1396", 1, 1)
	if err != nil || got != "Pilot" {
		t.Errorf("EpisodeTitle() after failure = %q, %v, want Pilot", got, err)
	}
}
