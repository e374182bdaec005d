package media

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIdentityValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		wantErr bool
	}{
		{"movie", Identity{Kind: KindMovie, Title: "Heat", Year: 1995}, false},
		{"movie with season", Identity{Kind: KindMovie, Title: "Heat", Season: 1}, true},
		{"episode", Identity{Kind: KindEpisode, Title: "Lost", Season: 1, Episode: 4}, false},
		{"episode missing number", Identity{Kind: KindEpisode, Title: "Lost", Season: 1}, true},
		{"bad year", Identity{Kind: KindMovie, Title: "Heat", Year: 95}, true},
		{"unknown", Identity{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.id.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestIdentityFillKeepsExistingFields(t *testing.T) {
	guess := Identity{
		Kind:        KindEpisode,
		Title:       "breaking bad",
		Season:      1,
		Episode:     1,
		ProviderIDs: map[string]string{"tvdb": "81189"},
		SourcePath:  "/tv/Breaking.Bad.S01E01.mkv",
		Extension:   ".mkv",
	}
	other := Identity{
		Kind:         KindMovie,
		Title:        "Breaking Bad",
		Year:         2008,
		Season:       9,
		EpisodeTitle: "Pilot",
		ProviderIDs:  map[string]string{"tvdb": "other", "imdb": "tt0903747"},
	}

	got := guess.Fill(other)
	want := Identity{
		Kind:         KindEpisode,
		Title:        "breaking bad",
		Year:         2008,
		Season:       1,
		Episode:      1,
		EpisodeTitle: "Pilot",
		ProviderIDs:  map[string]string{"tvdb": "81189", "imdb": "tt0903747"},
		SourcePath:   "/tv/Breaking.Bad.S01E01.mkv",
		Extension:    ".mkv",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Fill() mismatch (-want +got):\n%s", diff)
	}
	if _, ok := guess.ProviderIDs["imdb"]; ok {
		t.Error("Fill() mutated the receiver's provider IDs")
	}
}

func TestIdentityWithProviderID(t *testing.T) {
	base := Identity{Title: "Heat"}
	withID := base.WithProviderID("tmdb", "949")

	if got := withID.ProviderID("tmdb"); got != "949" {
		t.Errorf("ProviderID(tmdb) = %q, want 949", got)
	}
	if base.ProviderIDs != nil {
		t.Errorf("receiver modified: %v", base.ProviderIDs)
	}
	if got := withID.WithProviderID("tmdb", "1").ProviderID("tmdb"); got != "949" {
		t.Errorf("existing id replaced, got %q", got)
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := map[string]string{
		"The.Matrix":         "the matrix",
		"Schindler's List":   "schindlers list",
		"  Spider-Man:  Far": "spider man far",
		"AMÉLIE":             "amélie",
		"":                   "",
	}
	for in, want := range tests {
		if got := NormalizeTitle(in); got != want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSummary(t *testing.T) {
	s := NewSummary()
	s.Add(Outcome{OriginalPath: "a", Status: StatusSuccess})
	s.Add(Outcome{OriginalPath: "b", Status: StatusDryRun})
	s.Add(Failed("c", ReasonAuth, "authentication failed for tmdb"))

	if !s.AnyFailed() {
		t.Error("AnyFailed() = false, want true")
	}
	if !s.AuthFailed() {
		t.Error("AuthFailed() = false, want true")
	}
	want := map[Status]int{StatusSuccess: 1, StatusDryRun: 1, StatusFailed: 1}
	if diff := cmp.Diff(want, s.Counts); diff != "" {
		t.Errorf("Counts mismatch (-want +got):\n%s", diff)
	}
	if got := len(s.Failures()); got != 1 {
		t.Errorf("Failures() len = %d, want 1", got)
	}
}
