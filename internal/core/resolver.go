package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Digital-Shane/media-renamer/internal/media"
	"github.com/Digital-Shane/media-renamer/internal/provider"
	log "github.com/sirupsen/logrus"
)

// ResolveError describes why metadata resolution failed for one file.
// It never aborts the run.
type ResolveError struct {
	Reason   media.Reason
	Provider string
	Err      error
}

func (e *ResolveError) Error() string {
	if e.Provider == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Resolver enhances identity guesses through the registered providers.
// Providers are expected to be wrapped with provider.Guard so that each
// call is rate limited, bounded by a timeout and retried when transient.
type Resolver struct {
	registry *provider.Registry
	searches *provider.RunCache[[]provider.Candidate]
	episodes *provider.RunCache[string]
}

// NewResolver creates a resolver over registry. A nil or empty registry
// resolves offline: every guess comes back unchanged.
func NewResolver(registry *provider.Registry) *Resolver {
	if registry == nil {
		registry = provider.NewRegistry()
	}
	return &Resolver{
		registry: registry,
		searches: provider.NewRunCache[[]provider.Candidate](),
		episodes: provider.NewRunCache[string](),
	}
}

// Disabled reports whether the named provider was switched off after it
// rejected its credentials.
func (r *Resolver) Disabled(name string) bool {
	return r.registry.DisabledReason(name) != nil
}

// Resolve returns the enhanced identity for guess. On failure the guess is
// returned unchanged together with a *ResolveError.
func (r *Resolver) Resolve(ctx context.Context, guess media.Identity) (media.Identity, error) {
	if guess.Title == "" {
		return guess, &ResolveError{Reason: media.ReasonIdentity, Err: errors.New("could not determine media identity")}
	}

	kind := media.KindMovie
	if guess.Kind == media.KindEpisode {
		kind = media.KindEpisode
	}

	providers := r.registry.ForKind(kind)
	if len(providers) == 0 {
		if cause := r.registry.DisabledFor(kind); cause != nil {
			return guess, &ResolveError{Reason: media.ReasonAuth, Err: cause}
		}
		return guess, nil
	}

	q := provider.Query{Title: guess.Title, Year: guess.Year, Kind: kind}
	var firstErr *ResolveError
	for _, p := range providers {
		cands, err := r.search(ctx, p, q)
		if err != nil {
			rerr := r.classify(p.Name(), err)
			if ctx.Err() != nil {
				return guess, rerr
			}
			log.WithFields(log.Fields{
				"provider": p.Name(),
				"title":    guess.Title,
				"reason":   rerr.Reason,
			}).Debugf("search failed: %v", err)
			if firstErr == nil {
				firstErr = rerr
			}
			continue
		}

		best, ok := bestCandidate(guess, cands)
		if !ok {
			continue
		}
		log.WithFields(log.Fields{
			"provider":   p.Name(),
			"title":      guess.Title,
			"match":      best.Title,
			"year":       best.Year,
			"candidates": len(cands),
		}).Debug("matched title")

		resolved := applyCandidate(guess, p.Name(), best)
		if resolved.Kind != media.KindEpisode {
			return resolved, nil
		}
		title, err := r.episodeTitle(ctx, p, best.ID, resolved.Season, resolved.Episode)
		if err != nil {
			rerr := r.classify(p.Name(), err)
			if ctx.Err() != nil {
				return guess, rerr
			}
			log.WithFields(log.Fields{
				"provider": p.Name(),
				"title":    resolved.Title,
				"reason":   rerr.Reason,
			}).Debugf("episode lookup failed: %v", err)
			if firstErr == nil {
				firstErr = rerr
			}
			continue
		}
		resolved.EpisodeTitle = title
		return resolved, nil
	}

	if firstErr != nil {
		return guess, firstErr
	}
	return guess, &ResolveError{
		Reason: media.ReasonNoMatch,
		Err:    fmt.Errorf("no match found for %q", describeGuess(guess)),
	}
}

func (r *Resolver) search(ctx context.Context, p provider.Provider, q provider.Query) ([]provider.Candidate, error) {
	key := fmt.Sprintf("%s|%s|%s|%d", p.Name(), q.Kind, media.NormalizeTitle(q.Title), q.Year)
	return r.searches.Do(key, func() ([]provider.Candidate, error) {
		cands, err := p.SearchByTitle(ctx, q)
		if provider.IsNotFound(err) {
			return nil, nil
		}
		return cands, err
	})
}

func (r *Resolver) episodeTitle(ctx context.Context, p provider.Provider, showID string, season, episode int) (string, error) {
	key := fmt.Sprintf("%s|%s|%d|%d", p.Name(), showID, season, episode)
	return r.episodes.Do(key, func() (string, error) {
		title, err := p.EpisodeTitle(ctx, showID, season, episode)
		if provider.IsNotFound(err) {
			return "", nil
		}
		return title, err
	})
}

// classify maps a provider failure onto an outcome reason. Rejected
// credentials disable the provider for the rest of the run.
func (r *Resolver) classify(name string, err error) *ResolveError {
	switch {
	case provider.IsAuth(err):
		r.registry.Disable(name, err)
		log.WithField("provider", name).Warnf("provider disabled: %v", err)
		return &ResolveError{Reason: media.ReasonAuth, Provider: name, Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), provider.IsRetryable(err):
		return &ResolveError{Reason: media.ReasonTransient, Provider: name, Err: err}
	default:
		return &ResolveError{Reason: media.ReasonLookup, Provider: name, Err: err}
	}
}

// applyCandidate returns a copy of guess enriched with the provider's
// canonical title, year and identifiers.
func applyCandidate(guess media.Identity, providerName string, c provider.Candidate) media.Identity {
	out := guess.Clone()
	if out.Kind == media.KindUnknown {
		out.Kind = media.KindMovie
	}
	if c.Title != "" {
		out.Title = c.Title
	}
	if c.Year != 0 {
		out.Year = c.Year
	}
	out = out.WithProviderID(providerName, c.ID)
	if c.IMDbID != "" {
		out = out.WithProviderID("imdb", c.IMDbID)
	}
	return out
}

func describeGuess(id media.Identity) string {
	s := id.Title
	if id.Year != 0 {
		s += " (" + strconv.Itoa(id.Year) + ")"
	}
	if id.Kind == media.KindEpisode {
		s += fmt.Sprintf(" S%02dE%02d", id.Season, id.Episode)
	}
	return s
}
