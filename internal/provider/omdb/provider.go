package omdb

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Shane/media-renamer/internal/media"
	"github.com/Digital-Shane/media-renamer/internal/provider"
	"github.com/Digital-Shane/omdb"
)

const providerName = "omdb"

// ErrMissingAPIKey is returned by New when no key is configured.
var ErrMissingAPIKey = errors.New("omdb api key is required")

// Provider implements provider.Provider for OMDb. OMDb title lookups
// return at most one result, so searches yield zero or one candidate.
type Provider struct {
	client *omdb.Client
}

// New creates an OMDb provider. A nil httpClient uses a default client.
func New(apiKey string, httpClient *http.Client) (*Provider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Provider{client: omdb.NewClient(apiKey, httpClient)}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

// SearchByTitle looks a title up as a series for episode queries and as
// a movie otherwise.
func (p *Provider) SearchByTitle(ctx context.Context, q provider.Query) ([]provider.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(q.Title)
	if title == "" {
		return nil, &provider.ProviderError{Provider: providerName, Code: provider.CodeInvalidRequest, Message: "search requires a title"}
	}

	query := omdb.QueryData{Title: title, SearchType: "movie"}
	if q.Kind == media.KindEpisode {
		query.SearchType = "series"
	}
	if q.Year > 0 {
		query.Year = strconv.Itoa(q.Year)
	}

	result, err := p.client.SearchByTitle(query)
	if err != nil {
		mapped := p.mapError(err)
		if provider.IsNotFound(mapped) {
			return nil, nil
		}
		return nil, mapped
	}

	var c provider.Candidate
	switch r := result.(type) {
	case omdb.MovieResult:
		c = candidate(r.ImdbID, r.Title, r.Year, media.KindMovie)
	case *omdb.MovieResult:
		c = candidate(r.ImdbID, r.Title, r.Year, media.KindMovie)
	case omdb.SeriesResult:
		c = candidate(r.ImdbID, r.Title, r.Year, media.KindEpisode)
	case *omdb.SeriesResult:
		c = candidate(r.ImdbID, r.Title, r.Year, media.KindEpisode)
	default:
		return nil, nil
	}
	if c.ID == "" {
		return nil, nil
	}
	return []provider.Candidate{c}, nil
}

// EpisodeTitle looks an episode up by the series IMDb ID.
func (p *Provider) EpisodeTitle(ctx context.Context, showID string, season, episode int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if season <= 0 || episode <= 0 {
		return "", &provider.ProviderError{Provider: providerName, Code: provider.CodeInvalidRequest, Message: "episode lookup requires valid season and episode numbers"}
	}

	result, err := p.client.SearchByImdbID(omdb.QueryData{
		ImdbID:  strings.TrimSpace(showID),
		Season:  strconv.Itoa(season),
		Episode: strconv.Itoa(episode),
	})
	if err != nil {
		mapped := p.mapError(err)
		if provider.IsNotFound(mapped) {
			return "", nil
		}
		return "", mapped
	}

	switch e := result.(type) {
	case omdb.EpisodeResult:
		return strings.TrimSpace(e.Title), nil
	case *omdb.EpisodeResult:
		return strings.TrimSpace(e.Title), nil
	default:
		return "", nil
	}
}

func candidate(imdbID, title, year string, kind media.Kind) provider.Candidate {
	y, _ := strconv.Atoi(omdb.FirstYear(year))
	return provider.Candidate{
		ID:     imdbID,
		Title:  strings.TrimSpace(title),
		Year:   y,
		Kind:   kind,
		IMDbID: imdbID,
	}
}

func (p *Provider) mapError(err error) error {
	if err == nil {
		return nil
	}
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "not found"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeNotFound, Message: err.Error()}
	case strings.Contains(lower, "limit reached"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeRateLimited, Message: err.Error(), Retry: true, RetryAfter: 5}
	}
	return provider.ClassifyHTTPError(providerName, err)
}
