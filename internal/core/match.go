package core

import (
	"sort"

	"github.com/Digital-Shane/media-renamer/internal/media"
	"github.com/Digital-Shane/media-renamer/internal/provider"
)

// minSimilarity is the lowest similarity ratio that counts as a close
// match between a guessed title and a candidate title.
const minSimilarity = 0.8

// bestCandidate applies the tie-break policy to the candidates one
// provider returned for guess:
//
//  1. if the guess has a year, candidates from that year (one year either
//     side for shows) are considered before all others;
//  2. an exact normalized title match wins;
//  3. otherwise the closest title with similarity >= minSimilarity;
//  4. otherwise, and among equals at each step, the earliest release year,
//     then the order the provider returned them in.
//
// It reports false only when cands is empty.
func bestCandidate(guess media.Identity, cands []provider.Candidate) (provider.Candidate, bool) {
	if len(cands) == 0 {
		return provider.Candidate{}, false
	}

	pool := cands
	if guess.Year != 0 {
		tolerance := 0
		if guess.Kind == media.KindEpisode {
			tolerance = 1
		}
		var sameYear []provider.Candidate
		for _, c := range cands {
			if c.Year != 0 && abs(c.Year-guess.Year) <= tolerance {
				sameYear = append(sameYear, c)
			}
		}
		if len(sameYear) > 0 {
			pool = sameYear
		}
	}

	want := media.NormalizeTitle(guess.Title)
	var exact []provider.Candidate
	for _, c := range pool {
		if media.NormalizeTitle(c.Title) == want {
			exact = append(exact, c)
		}
	}
	if len(exact) > 0 {
		return earliest(exact), true
	}

	best := 0.0
	var nearest []provider.Candidate
	for _, c := range pool {
		score := similarity(want, media.NormalizeTitle(c.Title))
		switch {
		case score < minSimilarity || score < best:
		case score > best:
			best = score
			nearest = []provider.Candidate{c}
		default:
			nearest = append(nearest, c)
		}
	}
	if len(nearest) > 0 {
		return earliest(nearest), true
	}

	return earliest(pool), true
}

// earliest returns the candidate with the lowest known year, keeping the
// provider's order among equal years. Candidates without a year sort last.
func earliest(cands []provider.Candidate) provider.Candidate {
	sorted := make([]provider.Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		yi, yj := sorted[i].Year, sorted[j].Year
		if yi == 0 || yj == 0 {
			return yi != 0 && yj == 0
		}
		return yi < yj
	})
	return sorted[0]
}

// similarity returns 1 - levenshtein(a, b) / max(len(a), len(b)) over
// runes, so identical strings score 1 and unrelated ones approach 0.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return float64(longest-levenshtein(ra, rb)) / float64(longest)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
