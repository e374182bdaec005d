package core

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Digital-Shane/media-renamer/internal/config"
	"github.com/Digital-Shane/media-renamer/internal/media"
)

// FormatError reports why an identity could not be rendered into a name.
type FormatError struct {
	Field string
	Msg   string
}

func (e *FormatError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

var (
	trailingSepRe = regexp.MustCompile(`[\s\-–_.,]+$`)
	leadingSepRe  = regexp.MustCompile(`^[\s\-–_.,]+`)
)

var closingBracket = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// Formatter renders identities into filenames using the configured movie
// and TV patterns. It performs no I/O.
type Formatter struct {
	movie *config.Template
	tv    *config.Template
}

// NewFormatter parses both patterns.
func NewFormatter(moviePattern, tvPattern string) (*Formatter, error) {
	movie, err := config.ParseTemplate(moviePattern)
	if err != nil {
		return nil, fmt.Errorf("movie pattern: %w", err)
	}
	tv, err := config.ParseTemplate(tvPattern)
	if err != nil {
		return nil, fmt.Errorf("tv pattern: %w", err)
	}
	return &Formatter{movie: movie, tv: tv}, nil
}

// Format returns the target filename for id, extension included.
func (f *Formatter) Format(id media.Identity) (string, error) {
	var tmpl *config.Template
	switch id.Kind {
	case media.KindMovie:
		if strings.TrimSpace(id.Title) == "" {
			return "", &FormatError{Field: "title", Msg: "movie has no title"}
		}
		tmpl = f.movie
	case media.KindEpisode:
		if strings.TrimSpace(id.Title) == "" {
			return "", &FormatError{Field: "title", Msg: "episode has no show title"}
		}
		if id.Season < 1 || id.Episode < 1 {
			return "", &FormatError{Field: "season", Msg: fmt.Sprintf("invalid season/episode S%dE%d", id.Season, id.Episode)}
		}
		tmpl = f.tv
	default:
		return "", &FormatError{Msg: "cannot format unidentified media"}
	}

	values := templateValues(id)
	parts := make([]part, 0, len(tmpl.Segments))
	for _, seg := range tmpl.Segments {
		if seg.Var == "" {
			parts = append(parts, part{text: seg.Literal, literal: true})
			continue
		}
		parts = append(parts, part{text: renderValue(values[seg.Var], seg)})
	}

	name := strings.TrimSpace(joinParts(parts))
	if name == "" {
		return "", &FormatError{Msg: fmt.Sprintf("pattern %q produced an empty name", tmpl.Raw)}
	}
	if strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		return "", &FormatError{Msg: fmt.Sprintf("pattern %q produced a path, not a filename", tmpl.Raw)}
	}
	return name + id.Extension, nil
}

// value is a template variable's content. Numeric values honour width
// specifiers; zero means absent.
type value struct {
	text    string
	number  int
	numeric bool
}

func templateValues(id media.Identity) map[string]value {
	return map[string]value{
		"title":         {text: id.Title},
		"year":          {number: id.Year, numeric: true},
		"season":        {number: id.Season, numeric: true},
		"episode":       {number: id.Episode, numeric: true},
		"episode_title": {text: id.EpisodeTitle},
		"quality":       {text: id.Quality.String()},
		"resolution":    {text: id.Quality.Resolution},
		"source":        {text: id.Quality.Source},
		"codec":         {text: id.Quality.VideoCodec},
		"imdb_id":       {text: id.ProviderID("imdb")},
		"tmdb_id":       {text: id.ProviderID(config.TMDB)},
		"tvdb_id":       {text: id.ProviderID(config.TVDB)},
	}
}

func renderValue(v value, seg config.Segment) string {
	if !v.numeric {
		return sanitizeValue(v.text)
	}
	if v.number == 0 {
		return ""
	}
	s := strconv.Itoa(v.number)
	if pad := seg.Width - len(s); pad > 0 {
		fill := " "
		if seg.ZeroPad {
			fill = "0"
		}
		s = strings.Repeat(fill, pad) + s
	}
	return s
}

// part is a rendered template segment.
type part struct {
	text    string
	literal bool
}

// joinParts concatenates the rendered segments, dropping the literal
// punctuation that only framed a value which came out empty: the brackets
// around it, or the separator that joined it to its neighbour. Literal
// text next to a present value is kept as written.
func joinParts(parts []part) string {
	for i := range parts {
		if parts[i].literal || parts[i].text != "" {
			continue
		}
		var prev, next *part
		if i > 0 && parts[i-1].literal {
			prev = &parts[i-1]
		}
		if i+1 < len(parts) && parts[i+1].literal {
			next = &parts[i+1]
		}

		if prev != nil && next != nil && unwrapBrackets(prev, next) {
			continue
		}
		switch {
		case prev != nil && hasContent(parts[:i]):
			prev.text = trailingSepRe.ReplaceAllString(prev.text, "")
		case next != nil:
			next.text = leadingSepRe.ReplaceAllString(next.text, "")
		case prev != nil:
			prev.text = trailingSepRe.ReplaceAllString(prev.text, "")
		}
	}

	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.text)
	}
	return b.String()
}

// unwrapBrackets removes an opening bracket ending prev together with the
// matching closing bracket starting next.
func unwrapBrackets(prev, next *part) bool {
	open := strings.TrimRight(prev.text, " ")
	closing := strings.TrimLeft(next.text, " ")
	if open == "" || closing == "" {
		return false
	}
	want, ok := closingBracket[open[len(open)-1]]
	if !ok || closing[0] != want {
		return false
	}
	prev.text = strings.TrimRight(open[:len(open)-1], " ")
	next.text = closing[1:]
	return true
}

func hasContent(parts []part) bool {
	for _, p := range parts {
		if strings.Trim(p.text, " -–_.,") != "" {
			return true
		}
	}
	return false
}
