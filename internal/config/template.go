package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Variables lists every template variable the formatter understands.
var Variables = map[string]string{
	"title":         "Movie or show title",
	"year":          "Release year, or first-air year for shows",
	"season":        "Season number",
	"episode":       "Episode number",
	"episode_title": "Episode title from a metadata provider",
	"quality":       "Resolution, source and codec, e.g. 1080p BluRay x264",
	"resolution":    "Video resolution, e.g. 1080p",
	"source":        "Release source, e.g. BluRay",
	"codec":         "Video codec, e.g. x264",
	"imdb_id":       "IMDb identifier",
	"tmdb_id":       "TMDB identifier",
	"tvdb_id":       "TVDB identifier",
}

// VariableNames returns the known variable names in sorted order.
func VariableNames() []string {
	names := make([]string, 0, len(Variables))
	for name := range Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Segment is one piece of a parsed template: literal text, or a variable
// with an optional zero-padded width.
type Segment struct {
	Literal string
	Var     string
	Width   int
	ZeroPad bool
}

// Template is a parsed naming pattern such as "{title} ({year})".
type Template struct {
	Raw      string
	Segments []Segment
}

// ParseTemplate parses a naming pattern. Variables are written {name} or
// {name:02d}; "{{" and "}}" produce literal braces. Unknown variables and
// malformed placeholders are errors.
func ParseTemplate(pattern string) (*Template, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("pattern is empty")
	}

	t := &Template{Raw: pattern}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.Segments = append(t.Segments, Segment{Literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '{':
			if i+1 < len(pattern) && pattern[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(pattern[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unclosed placeholder at offset %d in %q", i, pattern)
			}
			seg, err := parsePlaceholder(pattern[i+1 : i+1+end])
			if err != nil {
				return nil, fmt.Errorf("%w in %q", err, pattern)
			}
			flush()
			t.Segments = append(t.Segments, seg)
			i += end + 1
		case '}':
			if i+1 < len(pattern) && pattern[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("unexpected '}' at offset %d in %q", i, pattern)
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return t, nil
}

func parsePlaceholder(body string) (Segment, error) {
	name, verb, hasVerb := strings.Cut(body, ":")
	name = strings.TrimSpace(name)
	if _, ok := Variables[name]; !ok {
		return Segment{}, fmt.Errorf("unknown variable: {%s}", name)
	}

	seg := Segment{Var: name}
	if !hasVerb {
		return seg, nil
	}

	// Accepted widths: d, 2d, 02d.
	verb = strings.TrimSpace(verb)
	if !strings.HasSuffix(verb, "d") {
		return Segment{}, fmt.Errorf("unsupported format %q for {%s}", verb, name)
	}
	digits := strings.TrimSuffix(verb, "d")
	if digits == "" {
		return seg, nil
	}
	if strings.HasPrefix(digits, "0") {
		seg.ZeroPad = true
	}
	width, err := strconv.Atoi(digits)
	if err != nil || width < 0 || width > 9 {
		return Segment{}, fmt.Errorf("unsupported format %q for {%s}", verb, name)
	}
	seg.Width = width
	return seg, nil
}

// Vars returns the variables the template references, in order of first use.
func (t *Template) Vars() []string {
	seen := make(map[string]bool)
	var vars []string
	for _, s := range t.Segments {
		if s.Var != "" && !seen[s.Var] {
			seen[s.Var] = true
			vars = append(vars, s.Var)
		}
	}
	return vars
}

// Uses reports whether the template references name.
func (t *Template) Uses(name string) bool {
	for _, s := range t.Segments {
		if s.Var == name {
			return true
		}
	}
	return false
}
