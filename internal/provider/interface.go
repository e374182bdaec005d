package provider

import (
	"context"

	"github.com/Digital-Shane/media-renamer/internal/media"
)

// Query describes a title search.
type Query struct {
	Title string
	Year  int // optional filter, 0 when unknown
	Kind  media.Kind
}

// Candidate is one search hit returned by a provider, in the provider's
// own relevance order.
type Candidate struct {
	ID     string
	Title  string
	Year   int
	Kind   media.Kind
	IMDbID string
}

// Provider is the capability shared by every metadata service.
//
// SearchByTitle returns an empty slice when nothing matches. Remote
// failures are reported as *ProviderError so callers can tell rejected
// credentials, remote throttling and generic lookup failures apart.
//
// EpisodeTitle returns "" with a nil error when the provider knows the
// show but has no title for the requested episode.
type Provider interface {
	Name() string
	SearchByTitle(ctx context.Context, q Query) ([]Candidate, error)
	EpisodeTitle(ctx context.Context, showID string, season, episode int) (string, error)
}
