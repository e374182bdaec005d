package media

import (
	"fmt"
	"maps"
	"strings"
	"unicode"
)

// Kind classifies what a media file represents.
type Kind int

const (
	KindUnknown Kind = iota
	KindMovie
	KindEpisode
)

func (k Kind) String() string {
	switch k {
	case KindMovie:
		return "movie"
	case KindEpisode:
		return "episode"
	default:
		return "unknown"
	}
}

// Identity is the structured guess of what a media file is. Values are
// treated as immutable: helpers return modified copies and never touch
// the receiver's ProviderIDs map.
type Identity struct {
	Kind         Kind
	Title        string
	Year         int // 0 when unknown
	Season       int // 0 unless Kind is KindEpisode
	Episode      int // 0 unless Kind is KindEpisode
	EpisodeTitle string

	// ProviderIDs maps a provider name (tmdb, tvdb, omdb, imdb) to the
	// provider's opaque identifier for this title.
	ProviderIDs map[string]string

	SourcePath string
	Extension  string

	Quality Quality
}

// Validate reports the first violated identity invariant.
func (id Identity) Validate() error {
	switch id.Kind {
	case KindEpisode:
		if id.Season < 1 || id.Episode < 1 {
			return fmt.Errorf("episode identity requires season and episode >= 1, got S%dE%d", id.Season, id.Episode)
		}
	case KindMovie:
		if id.Season != 0 || id.Episode != 0 {
			return fmt.Errorf("movie identity must not carry season/episode numbers")
		}
	}
	if id.Year != 0 && (id.Year < 1000 || id.Year > 9999) {
		return fmt.Errorf("year %d is not a 4-digit year", id.Year)
	}
	return nil
}

// ProviderID returns the identifier recorded for the named provider.
func (id Identity) ProviderID(name string) string {
	if id.ProviderIDs == nil {
		return ""
	}
	return id.ProviderIDs[name]
}

// WithProviderID returns a copy with the provider identifier recorded.
// An existing identifier for the same provider is kept.
func (id Identity) WithProviderID(name, value string) Identity {
	if value == "" || id.ProviderID(name) != "" {
		return id
	}
	out := id
	out.ProviderIDs = maps.Clone(id.ProviderIDs)
	if out.ProviderIDs == nil {
		out.ProviderIDs = make(map[string]string)
	}
	out.ProviderIDs[name] = value
	return out
}

// Clone returns a deep copy of the identity.
func (id Identity) Clone() Identity {
	out := id
	out.ProviderIDs = maps.Clone(id.ProviderIDs)
	return out
}

// Fill returns a copy where every empty field is taken from other. Fields
// already set on the receiver are never replaced, and the kind is only
// adopted when the receiver's kind is unknown.
func (id Identity) Fill(other Identity) Identity {
	out := id.Clone()
	if out.Kind == KindUnknown && other.Kind != KindUnknown {
		out.Kind = other.Kind
		if other.Kind == KindEpisode {
			out.Season, out.Episode = other.Season, other.Episode
		}
	}
	if out.Title == "" {
		out.Title = other.Title
	}
	if out.Year == 0 {
		out.Year = other.Year
	}
	if out.Kind == KindEpisode {
		if out.Season == 0 {
			out.Season = other.Season
		}
		if out.Episode == 0 {
			out.Episode = other.Episode
		}
		if out.EpisodeTitle == "" {
			out.EpisodeTitle = other.EpisodeTitle
		}
	}
	for name, value := range other.ProviderIDs {
		out = out.WithProviderID(name, value)
	}
	out.Quality = out.Quality.Fill(other.Quality)
	return out
}

// NormalizeTitle lowercases a title and reduces it to letters, digits and
// single spaces so equivalent spellings compare equal.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	space := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case r == '\'' || r == '’':
			// "Schindler's" and "Schindlers" should match
		default:
			space = true
		}
	}
	return b.String()
}
