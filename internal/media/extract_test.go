package media

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var ignoreQuality = cmpopts.IgnoreFields(Identity{}, "Quality")

func TestParseName(t *testing.T) {
	tests := map[string]struct {
		stem string
		want Identity
	}{
		"dotted movie with tags": {
			stem: "The.Matrix.1999.1080p.BluRay.x264",
			want: Identity{Kind: KindMovie, Title: "The Matrix", Year: 1999},
		},
		"movie with parenthesised year and bracket tag": {
			stem: "Inception (2010) [1080p]",
			want: Identity{Kind: KindMovie, Title: "Inception", Year: 2010},
		},
		"hyphenated title kept": {
			stem: "Spider-Man.2002.720p.WEB-DL",
			want: Identity{Kind: KindMovie, Title: "Spider-Man", Year: 2002},
		},
		"leading year belongs to title": {
			stem: "2001.A.Space.Odyssey.1968.720p",
			want: Identity{Kind: KindMovie, Title: "2001 A Space Odyssey", Year: 1968},
		},
		"adjacent years keep the last": {
			stem: "Blade.Runner.2049.2017.1080p",
			want: Identity{Kind: KindMovie, Title: "Blade Runner 2049", Year: 2017},
		},
		"dash delimited movie": {
			stem: "The-Matrix-1999-1080p-BluRay",
			want: Identity{Kind: KindMovie, Title: "The Matrix", Year: 1999},
		},
		"dash delimited episode": {
			stem: "Breaking-Bad-S01E01-720p-HDTV",
			want: Identity{Kind: KindEpisode, Title: "Breaking Bad", Season: 1, Episode: 1},
		},
		"underscore separated movie": {
			stem: "the_dark_knight_2008",
			want: Identity{Kind: KindMovie, Title: "the dark knight", Year: 2008},
		},
		"SxxEyy episode": {
			stem: "Breaking.Bad.S01E01.720p.HDTV.x264",
			want: Identity{Kind: KindEpisode, Title: "Breaking Bad", Season: 1, Episode: 1},
		},
		"episode with year keeps year as first-air year": {
			stem: "Doctor.Who.2005.S02E03.Tooth.and.Claw",
			want: Identity{Kind: KindEpisode, Title: "Doctor Who", Year: 2005, Season: 2, Episode: 3},
		},
		"space and dash delimited episode": {
			stem: "The Office - s03e12 - Traveling Salesmen",
			want: Identity{Kind: KindEpisode, Title: "The Office", Season: 3, Episode: 12},
		},
		"multi-episode marker": {
			stem: "Friends.S05E01E02",
			want: Identity{Kind: KindEpisode, Title: "Friends", Season: 5, Episode: 1},
		},
		"cross marker": {
			stem: "Futurama.3x05.A.Tale.of.Two.Santas",
			want: Identity{Kind: KindEpisode, Title: "Futurama", Season: 3, Episode: 5},
		},
		"verbose marker": {
			stem: "Planet Earth Season 2 Episode 3",
			want: Identity{Kind: KindEpisode, Title: "Planet Earth", Season: 2, Episode: 3},
		},
		"season zero is not an episode marker": {
			stem: "Sherlock.S00E01.2010",
			want: Identity{Kind: KindMovie, Title: "Sherlock S00E01", Year: 2010},
		},
		"no markers is unknown": {
			stem: "Home Video Birthday",
			want: Identity{Kind: KindUnknown, Title: "Home Video Birthday"},
		},
		"resolution is not a cross marker": {
			stem: "Sample.Clip.1920x1080",
			want: Identity{Kind: KindUnknown, Title: "Sample Clip 1920x1080"},
		},
		"only tags": {
			stem: "1080p.BluRay",
			want: Identity{Kind: KindUnknown},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := ParseName(tc.stem)
			if diff := cmp.Diff(tc.want, got, ignoreQuality); diff != "" {
				t.Errorf("ParseName(%q) mismatch (-want +got):\n%s", tc.stem, diff)
			}
		})
	}
}

func TestParseNameMovieProperty(t *testing.T) {
	titles := []string{"Heat", "Alien", "Jaws"}
	years := []int{1975, 1979, 1995, 2004}
	tags := []string{"1080p.BluRay.x264", "720p.WEB-DL", "2160p.HDR.HEVC"}

	for _, title := range titles {
		for _, year := range years {
			for _, tag := range tags {
				stem := title + "." + itoa(year) + "." + tag
				got := ParseName(stem)
				want := Identity{Kind: KindMovie, Title: title, Year: year}
				if diff := cmp.Diff(want, got, ignoreQuality); diff != "" {
					t.Errorf("ParseName(%q) mismatch (-want +got):\n%s", stem, diff)
				}
			}
		}
	}
}

func TestParseNameEpisodeProperty(t *testing.T) {
	for season := 1; season <= 12; season += 3 {
		for episode := 1; episode <= 24; episode += 5 {
			for _, year := range []string{"", ".2011"} {
				stem := "Some.Show" + year + ".S" + pad2(season) + "E" + pad2(episode) + ".1080p"
				got := ParseName(stem)
				if got.Kind != KindEpisode || got.Season != season || got.Episode != episode {
					t.Errorf("ParseName(%q) = kind %v S%dE%d, want episode S%dE%d",
						stem, got.Kind, got.Season, got.Episode, season, episode)
				}
			}
		}
	}
}

type fakeProber struct {
	result ProbeResult
	calls  int
}

func (f *fakeProber) Probe(ctx context.Context, path string) ProbeResult {
	f.calls++
	return f.result
}

func TestExtractorExtract(t *testing.T) {
	tests := map[string]struct {
		path      string
		probe     ProbeResult
		want      Identity
		wantProbe int
	}{
		"extension case preserved": {
			path: "/media/The.Matrix.1999.1080p.BluRay.x264.MKV",
			want: Identity{
				Kind: KindMovie, Title: "The Matrix", Year: 1999,
				SourcePath: "/media/The.Matrix.1999.1080p.BluRay.x264.MKV", Extension: ".MKV",
			},
		},
		"show name from directories": {
			path: "/tv/Breaking Bad/Season 01/S01E02.mkv",
			want: Identity{
				Kind: KindEpisode, Title: "Breaking Bad", Season: 1, Episode: 2,
				SourcePath: "/tv/Breaking Bad/Season 01/S01E02.mkv", Extension: ".mkv",
			},
		},
		"probe fills missing title": {
			path:  "/media/[rarbg].mp4",
			probe: ProbeResult{Title: "The Matrix (1999)", Resolution: "1080p"},
			want: Identity{
				Kind: KindMovie, Title: "The Matrix", Year: 1999,
				SourcePath: "/media/[rarbg].mp4", Extension: ".mp4",
				Quality: Quality{Resolution: "1080p"},
			},
			wantProbe: 1,
		},
		"probe show title for bare episode": {
			path:  "S02E03.mkv",
			probe: ProbeResult{Title: "Grilled", ShowTitle: "Breaking Bad"},
			want: Identity{
				Kind: KindEpisode, Title: "Breaking Bad", Season: 2, Episode: 3,
				SourcePath: "S02E03.mkv", Extension: ".mkv",
			},
			wantProbe: 1,
		},
		"nothing found stays unknown": {
			path: "/media/[x].avi",
			want: Identity{
				Kind: KindUnknown, SourcePath: "/media/[x].avi", Extension: ".avi",
			},
			wantProbe: 1,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			prober := &fakeProber{result: tc.probe}
			got := NewExtractor(prober).Extract(context.Background(), tc.path)

			opts := cmp.Options{}
			if tc.want.Quality.IsZero() {
				opts = append(opts, ignoreQuality)
			}
			if diff := cmp.Diff(tc.want, got, opts...); diff != "" {
				t.Errorf("Extract(%q) mismatch (-want +got):\n%s", tc.path, diff)
			}
			if prober.calls != tc.wantProbe {
				t.Errorf("probe calls = %d, want %d", prober.calls, tc.wantProbe)
			}
		})
	}
}

func TestExtractorWithoutProber(t *testing.T) {
	got := NewExtractor(nil).Extract(context.Background(), "/media/[x].avi")
	if got.Kind != KindUnknown || got.Title != "" {
		t.Fatalf("Extract() = %+v, want unknown identity with empty title", got)
	}
}

func itoa(n int) string {
	return string(rune('0'+n/1000)) + string(rune('0'+n/100%10)) + string(rune('0'+n/10%10)) + string(rune('0'+n%10))
}

func pad2(n int) string {
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}
