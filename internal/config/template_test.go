package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		pattern string
		want    []Segment
	}{
		{
			pattern: "{title} ({year})",
			want: []Segment{
				{Var: "title"},
				{Literal: " ("},
				{Var: "year"},
				{Literal: ")"},
			},
		},
		{
			pattern: "S{season:02d}E{episode:3d}",
			want: []Segment{
				{Literal: "S"},
				{Var: "season", Width: 2, ZeroPad: true},
				{Literal: "E"},
				{Var: "episode", Width: 3},
			},
		},
		{
			pattern: "{{literal}} {title:d}",
			want: []Segment{
				{Literal: "{literal} "},
				{Var: "title"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			got, err := ParseTemplate(tc.pattern)
			if err != nil {
				t.Fatalf("ParseTemplate() error = %v", err)
			}
			if diff := cmp.Diff(tc.want, got.Segments); diff != "" {
				t.Errorf("ParseTemplate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTemplateErrors(t *testing.T) {
	for _, pattern := range []string{
		"",
		"{title",
		"title}",
		"{rating}",
		"{season:02x}",
		"{season:abd}",
	} {
		if _, err := ParseTemplate(pattern); err == nil {
			t.Errorf("ParseTemplate(%q) error = nil, want error", pattern)
		}
	}
}

func TestTemplateVars(t *testing.T) {
	tmpl, err := ParseTemplate("{title} - S{season:02d}E{episode:02d} - {episode_title} {title}")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"title", "season", "episode", "episode_title"}, tmpl.Vars()); diff != "" {
		t.Errorf("Vars() mismatch (-want +got):\n%s", diff)
	}
	if !tmpl.Uses("episode_title") || tmpl.Uses("year") {
		t.Error("Uses() returned the wrong answer")
	}
}
