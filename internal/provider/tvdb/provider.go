package tvdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Digital-Shane/media-renamer/internal/media"
	"github.com/Digital-Shane/media-renamer/internal/provider"
	tvdbapi "github.com/dashotv/tvdb"
	"github.com/dashotv/tvdb/openapi/models/operations"
	"github.com/dashotv/tvdb/openapi/models/shared"
	"github.com/patrickmn/go-cache"
)

const providerName = "tvdb"

// TVDBClient captures the dashotv client methods used by this provider.
type TVDBClient interface {
	GetSearchResults(request operations.GetSearchResultsRequest) (*tvdbapi.GetSearchResultsResponse, error)
	GetSeriesEpisodes(request operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error)
}

// api is the narrow view of TVDB the provider works against.
type api interface {
	search(request operations.GetSearchResultsRequest) ([]shared.SearchResult, error)
	seasonEpisodes(seriesID int64, season int) ([]shared.EpisodeBaseRecord, error)
}

type clientAPI struct {
	client TVDBClient
}

func (c clientAPI) search(request operations.GetSearchResultsRequest) ([]shared.SearchResult, error) {
	resp, err := c.client.GetSearchResults(request)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	return resp.Data, nil
}

func (c clientAPI) seasonEpisodes(seriesID int64, season int) ([]shared.EpisodeBaseRecord, error) {
	seasonNum := int64(season)
	resp, err := c.client.GetSeriesEpisodes(operations.GetSeriesEpisodesRequest{
		ID:         float64(seriesID),
		SeasonType: "official",
		Season:     &seasonNum,
		Page:       0,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Data == nil {
		return nil, nil
	}
	return resp.Data.Episodes, nil
}

// Provider implements provider.Provider for TheTVDB. Season episode
// lists are cached for the life of the provider so a season is fetched
// once however many of its episodes are renamed.
type Provider struct {
	api     api
	seasons *cache.Cache
}

// New logs in to TVDB and returns a provider.
func New(apiKey string) (*Provider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("tvdb api key is required")
	}

	client, err := tvdbapi.Login(apiKey)
	if err != nil {
		return nil, provider.ClassifyHTTPError(providerName, err)
	}
	return NewWithClient(client), nil
}

// NewWithClient creates a provider around an existing client.
func NewWithClient(client TVDBClient) *Provider {
	return newWithAPI(clientAPI{client: client})
}

func newWithAPI(a api) *Provider {
	return &Provider{
		api:     a,
		seasons: cache.New(cache.NoExpiration, 0),
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return providerName
}

// SearchByTitle searches series for episode queries and movies otherwise.
func (p *Provider) SearchByTitle(ctx context.Context, q provider.Query) ([]provider.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := strings.TrimSpace(q.Title)
	if query == "" {
		return nil, &provider.ProviderError{Provider: providerName, Code: provider.CodeInvalidRequest, Message: "search requires a title"}
	}

	kind := media.KindMovie
	recordType := "movie"
	if q.Kind == media.KindEpisode {
		kind = media.KindEpisode
		recordType = "series"
	}

	req := operations.GetSearchResultsRequest{Query: &query, Type: &recordType}
	if q.Year > 0 {
		yf := float64(q.Year)
		req.Year = &yf
	}

	results, err := p.api.search(req)
	if err != nil {
		return nil, provider.ClassifyHTTPError(providerName, err)
	}

	candidates := make([]provider.Candidate, 0, len(results))
	for _, result := range results {
		if t := pointerToString(result.Type); t != "" && !strings.EqualFold(t, recordType) {
			continue
		}
		id := parseInt64(pointerToString(result.TvdbID))
		if id == 0 {
			id = parseInt64(pointerToString(result.ID))
		}
		if id == 0 {
			continue
		}
		year, _ := strconv.Atoi(pointerToString(result.Year))
		candidates = append(candidates, provider.Candidate{
			ID:    strconv.FormatInt(id, 10),
			Title: firstNonEmptyString(pointerToString(result.Name), pointerToString(result.Title), pointerToString(result.NameTranslated)),
			Year:  year,
			Kind:  kind,
		})
	}
	return candidates, nil
}

// EpisodeTitle returns the title of one episode from the official order.
func (p *Provider) EpisodeTitle(ctx context.Context, showID string, season, episode int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if season <= 0 || episode <= 0 {
		return "", &provider.ProviderError{Provider: providerName, Code: provider.CodeInvalidRequest, Message: "episode lookup requires valid season and episode numbers"}
	}
	id := parseInt64(showID)
	if id == 0 {
		return "", &provider.ProviderError{Provider: providerName, Code: provider.CodeInvalidRequest, Message: fmt.Sprintf("invalid tvdb series id %q", showID)}
	}

	episodes, err := p.season(id, season)
	if err != nil {
		return "", err
	}
	for _, e := range episodes {
		if e.Number != nil && int(*e.Number) == episode {
			return pointerToString(e.Name), nil
		}
	}
	return "", nil
}

func (p *Provider) season(id int64, season int) ([]shared.EpisodeBaseRecord, error) {
	key := fmt.Sprintf("%d:%d", id, season)
	if cached, found := p.seasons.Get(key); found {
		return cached.([]shared.EpisodeBaseRecord), nil
	}

	episodes, err := p.api.seasonEpisodes(id, season)
	if err != nil {
		mapped := provider.ClassifyHTTPError(providerName, err)
		if provider.IsNotFound(mapped) {
			return nil, nil
		}
		return nil, mapped
	}
	p.seasons.Set(key, episodes, cache.NoExpiration)
	return episodes, nil
}

func pointerToString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func parseInt64(value string) int64 {
	parsed, _ := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	return parsed
}

func firstNonEmptyString(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
