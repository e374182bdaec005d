package tmdb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Digital-Shane/media-renamer/internal/media"
	"github.com/Digital-Shane/media-renamer/internal/provider"
	"github.com/patrickmn/go-cache"
	"github.com/ryanbradynd05/go-tmdb"
)

const (
	providerName = "tmdb"
)

// ErrMissingAPIKey is returned by New when no key is configured.
var ErrMissingAPIKey = errors.New("tmdb api key is required")

// Client is the subset of *tmdb.TMDb used by the provider.
type Client interface {
	SearchMovie(name string, options map[string]string) (*tmdb.MovieSearchResults, error)
	SearchTv(name string, options map[string]string) (*tmdb.TvSearchResults, error)
	GetTvSeasonInfo(showID, seasonID int, options map[string]string) (*tmdb.TvSeason, error)
}

// Provider implements provider.Provider for The Movie Database. Movie
// lookups use the movie search, episode lookups the TV endpoints. Season
// episode lists are cached for the life of the provider, so every episode
// of a season costs one request.
type Provider struct {
	client   Client
	language string
	seasons  *cache.Cache
}

// New creates a TMDB provider backed by the real API.
func New(apiKey, language string) (*Provider, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client := tmdb.Init(tmdb.Config{
		APIKey:   apiKey,
		Proxies:  nil,
		UseProxy: false,
	})
	return NewWithClient(client, language), nil
}

// NewWithClient creates a provider around an existing client.
func NewWithClient(client Client, language string) *Provider {
	if language == "" {
		language = "en-US"
	}
	return &Provider{
		client:   client,
		language: language,
		seasons:  cache.New(cache.NoExpiration, 0),
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return providerName
}

// SearchByTitle searches movies, or TV series when q.Kind is an episode.
func (p *Provider) SearchByTitle(ctx context.Context, q provider.Query) ([]provider.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.Kind == media.KindEpisode {
		return p.searchTv(q)
	}
	return p.searchMovie(q)
}

func (p *Provider) searchMovie(q provider.Query) ([]provider.Candidate, error) {
	options := map[string]string{"language": p.language}
	if q.Year > 0 {
		options["year"] = strconv.Itoa(q.Year)
	}

	results, err := p.client.SearchMovie(q.Title, options)
	if err != nil {
		return nil, provider.ClassifyHTTPError(providerName, err)
	}
	if results == nil {
		return nil, nil
	}

	candidates := make([]provider.Candidate, 0, len(results.Results))
	for _, m := range results.Results {
		candidates = append(candidates, provider.Candidate{
			ID:    strconv.Itoa(m.ID),
			Title: m.Title,
			Year:  yearOf(m.ReleaseDate),
			Kind:  media.KindMovie,
		})
	}
	return candidates, nil
}

func (p *Provider) searchTv(q provider.Query) ([]provider.Candidate, error) {
	options := map[string]string{"language": p.language}
	if q.Year > 0 {
		options["first_air_date_year"] = strconv.Itoa(q.Year)
	}

	results, err := p.client.SearchTv(q.Title, options)
	if err != nil {
		return nil, provider.ClassifyHTTPError(providerName, err)
	}
	if results == nil {
		return nil, nil
	}

	candidates := make([]provider.Candidate, 0, len(results.Results))
	for _, s := range results.Results {
		candidates = append(candidates, provider.Candidate{
			ID:    strconv.Itoa(s.ID),
			Title: s.Name,
			Year:  yearOf(s.FirstAirDate),
			Kind:  media.KindEpisode,
		})
	}
	return candidates, nil
}

// EpisodeTitle returns the title of one episode of a TMDB series.
func (p *Provider) EpisodeTitle(ctx context.Context, showID string, season, episode int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := strconv.Atoi(showID)
	if err != nil {
		return "", &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeInvalidRequest,
			Message:  fmt.Sprintf("invalid tmdb show id %q", showID),
		}
	}

	titles, err := p.season(id, season)
	if err != nil {
		return "", err
	}
	return titles[episode], nil
}

// season returns the episode titles of one season keyed by episode
// number. A season TMDB does not know is an empty list.
func (p *Provider) season(id, season int) (map[int]string, error) {
	key := fmt.Sprintf("%d:%d", id, season)
	if cached, found := p.seasons.Get(key); found {
		return cached.(map[int]string), nil
	}

	info, err := p.client.GetTvSeasonInfo(id, season, map[string]string{"language": p.language})
	if err != nil {
		mapped := provider.ClassifyHTTPError(providerName, err)
		if !provider.IsNotFound(mapped) {
			return nil, mapped
		}
		info = nil
	}

	titles := make(map[int]string)
	if info != nil {
		for _, ep := range info.Episodes {
			titles[ep.EpisodeNumber] = ep.Name
		}
	}
	p.seasons.Set(key, titles, cache.NoExpiration)
	return titles, nil
}

// yearOf returns the year of a YYYY-MM-DD date, or 0.
func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
