package cmd

import (
	"context"
	"fmt"

	"github.com/Digital-Shane/media-renamer/internal/config"
	"github.com/Digital-Shane/media-renamer/internal/media"
	"github.com/Digital-Shane/media-renamer/internal/provider"
	"github.com/Digital-Shane/media-renamer/internal/provider/omdb"
	"github.com/Digital-Shane/media-renamer/internal/provider/tmdb"
	"github.com/Digital-Shane/media-renamer/internal/provider/tvdb"

	"github.com/sirupsen/logrus"
)

// providerFactory builds a provider client from its settings.
type providerFactory func(pc config.ProviderConfig) (provider.Provider, error)

var defaultFactories = map[string]providerFactory{
	config.TMDB: func(pc config.ProviderConfig) (provider.Provider, error) {
		p, err := tmdb.New(pc.APIKey, pc.Language)
		if err != nil {
			return nil, err
		}
		return p, nil
	},
	config.TVDB: func(pc config.ProviderConfig) (provider.Provider, error) {
		p, err := tvdb.New(pc.APIKey)
		if err != nil {
			return nil, err
		}
		return p, nil
	},
	config.OMDB: func(pc config.ProviderConfig) (provider.Provider, error) {
		p, err := omdb.New(pc.APIKey, nil)
		if err != nil {
			return nil, err
		}
		return p, nil
	},
}

// providerPriorities orders the providers per kind; higher is asked first.
var providerPriorities = map[string]map[media.Kind]int{
	config.TMDB: {media.KindMovie: 3, media.KindEpisode: 2},
	config.OMDB: {media.KindMovie: 2, media.KindEpisode: 1},
	config.TVDB: {media.KindMovie: 1, media.KindEpisode: 3},
}

// buildRegistry registers a guarded client for every provider that has an
// API key. A provider whose client cannot be created stays registered in
// a failed state so its files report the cause; rejected credentials
// disable it straight away.
func buildRegistry(cfg config.Config, factories map[string]providerFactory) (*provider.Registry, error) {
	registry := provider.NewRegistry()

	for name, pc := range cfg.ProviderMap() {
		if !pc.Enabled() {
			continue
		}
		factory, ok := factories[name]
		if !ok {
			continue
		}

		p, err := factory(pc)
		if err != nil {
			logrus.WithField("provider", name).Warnf("provider unavailable: %v", err)
			p = &unavailable{name: name, err: provider.ClassifyHTTPError(name, err)}
		}

		guarded := provider.Guard(p, provider.GuardOptions{
			RequestsPerMinute: pc.RequestsPerMinute,
			Timeout:           cfg.LookupTimeout,
			MaxRetries:        uint64(cfg.MaxRetries),
		})
		if err := registry.Register(guarded, providerPriorities[name]); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", name, err)
		}
		if u, ok := p.(*unavailable); ok && provider.IsAuth(u.err) {
			registry.Disable(name, u.err)
		}
	}
	return registry, nil
}

// unavailable stands in for a provider whose client could not be built.
type unavailable struct {
	name string
	err  error
}

func (u *unavailable) Name() string { return u.name }

func (u *unavailable) SearchByTitle(context.Context, provider.Query) ([]provider.Candidate, error) {
	return nil, u.err
}

func (u *unavailable) EpisodeTitle(context.Context, string, int, int) (string, error) {
	return "", u.err
}
