package media

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ProbeResult holds attributes read from a file's container tags. Every
// field is optional.
type ProbeResult struct {
	Title      string
	ShowTitle  string
	Resolution string
	VideoCodec string
	AudioCodec string
}

// Prober reads embedded container metadata. Implementations never modify
// the file and return an empty result when the file cannot be read.
type Prober interface {
	Probe(ctx context.Context, path string) ProbeResult
}

// Extractor turns file paths into identity guesses.
type Extractor struct {
	prober Prober
}

// NewExtractor creates an extractor. A nil prober disables the embedded
// metadata fallback.
func NewExtractor(prober Prober) *Extractor {
	return &Extractor{prober: prober}
}

// Extract builds the best-effort identity for path. It never fails: an
// unidentifiable file comes back as KindUnknown with an empty title.
func (e *Extractor) Extract(ctx context.Context, path string) Identity {
	base := filepath.Base(path)
	ext := filepath.Ext(base)

	id := ParseName(strings.TrimSuffix(base, ext))
	id.SourcePath = path
	id.Extension = ext

	// Show/Season 01/S01E02.mkv carries the show name in the directories.
	if id.Title == "" && id.Kind == KindEpisode {
		title, year := titleFromDirs(path)
		id.Title = title
		if id.Year == 0 {
			id.Year = year
		}
	}

	if id.Title == "" && e.prober != nil {
		id = id.Fill(fromProbe(e.prober.Probe(ctx, path), id.Kind))
	}
	return id
}

// ParseName applies the filename heuristics to a name without extension.
func ParseName(stem string) Identity {
	cleaned := bracketedRe.ReplaceAllString(stem, " ")
	if dashDelimited(cleaned) {
		cleaned = strings.ReplaceAll(cleaned, "-", " ")
	}
	id := Identity{Quality: ParseQuality(stem)}

	if season, episode, idx, ok := findEpisodeMarker(cleaned); ok {
		id.Kind = KindEpisode
		id.Season, id.Episode = season, episode
		id.Title, id.Year = splitTitleYear(cleaned[:idx])
		return id
	}

	id.Title, id.Year = splitTitleYear(cleaned)
	if id.Year != 0 {
		id.Kind = KindMovie
	}
	return id
}

// dashDelimited reports whether "-" is the only word separator in s, as in
// "The-Matrix-1999-1080p". Names with dots, underscores or spaces keep their
// hyphens.
func dashDelimited(s string) bool {
	s = strings.TrimSpace(s)
	return strings.Contains(s, "-") && !strings.ContainsAny(s, " ._")
}

// findEpisodeMarker returns the season and episode numbers of the first
// recognised marker and the index where it starts.
func findEpisodeMarker(s string) (season, episode, index int, ok bool) {
	for _, re := range []*regexp.Regexp{seasonEpisodeRe, verboseEpisodeRe, crossEpisodeRe} {
		for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
			season, _ = strconv.Atoi(s[m[2]:m[3]])
			episode, _ = strconv.Atoi(s[m[4]:m[5]])
			if season >= 1 && episode >= 1 {
				return season, episode, m[0], true
			}
		}
	}
	return 0, 0, -1, false
}

// splitTitleYear separates the title from a trailing year and any release
// tags. The year is the last 4-digit year token that precedes the first
// release tag and has title text before it, so "2001.A.Space.Odyssey.1968"
// keeps 2001 in the title.
func splitTitleYear(s string) (string, int) {
	end := len(s)
	if loc := releaseTagRe.FindStringIndex(s); loc != nil {
		end = loc[0]
	}

	year, cut := 0, end
	for _, m := range yearRe.FindAllStringSubmatchIndex(s[:end], -1) {
		start := m[2]
		if strings.TrimRight(s[:start], " ._-([{") == "" {
			continue
		}
		year, _ = strconv.Atoi(s[start:m[3]])
		cut = start
	}
	// yearRe consumes its boundary characters, so adjacent years such as
	// "2049.2017" need a second look past the last match.
	if year != 0 {
		rest := s[cut+4 : end]
		if m := yearRe.FindStringSubmatchIndex(rest); m != nil {
			year, _ = strconv.Atoi(rest[m[2]:m[3]])
			cut = cut + 4 + m[2]
		}
	}

	return cleanTitle(s[:cut]), year
}

// cleanTitle normalizes separators and trims leftovers around a title.
func cleanTitle(s string) string {
	s = strings.NewReplacer(".", " ", "_", " ").Replace(s)
	s = emptyBracketsRe.ReplaceAllString(s, "")

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if strings.Trim(f, "-–—") == "" {
			continue
		}
		kept = append(kept, f)
	}
	s = strings.Join(kept, " ")
	s = strings.TrimRight(s, " ([{")
	return strings.TrimSpace(strings.Trim(s, "-_–—|: "))
}

// titleFromDirs looks for a show name in the parent directory, skipping a
// season directory if present.
func titleFromDirs(path string) (string, int) {
	dir := filepath.Dir(path)
	for range 2 {
		name := filepath.Base(dir)
		if name == "." || name == string(filepath.Separator) || name == "" {
			return "", 0
		}
		if !seasonDirRe.MatchString(strings.TrimSpace(name)) {
			return splitTitleYear(bracketedRe.ReplaceAllString(name, " "))
		}
		dir = filepath.Dir(dir)
	}
	return "", 0
}

func fromProbe(r ProbeResult, kind Kind) Identity {
	probed := Identity{Quality: Quality{
		Resolution: r.Resolution,
		VideoCodec: r.VideoCodec,
		AudioCodec: r.AudioCodec,
	}}

	if kind == KindEpisode && r.ShowTitle != "" {
		probed.Title = r.ShowTitle
		return probed
	}

	if r.Title != "" {
		parsed := ParseName(r.Title)
		probed.Kind = parsed.Kind
		probed.Title = parsed.Title
		probed.Year = parsed.Year
		probed.Season, probed.Episode = parsed.Season, parsed.Episode
	}
	if r.ShowTitle != "" {
		probed.Title = r.ShowTitle
	}
	return probed
}
