package media

import (
	"regexp"
	"strings"
)

// Quality captures release attributes parsed from a filename or probed
// from the container.
type Quality struct {
	Resolution   string
	Source       string
	VideoCodec   string
	AudioCodec   string
	HDR          bool
	ReleaseGroup string
}

type qualityRule struct {
	re    *regexp.Regexp
	value string
}

var (
	resolutionRules = []qualityRule{
		{regexp.MustCompile(`(?i)\b(?:2160p|4K|UHD)\b`), "2160p"},
		{regexp.MustCompile(`(?i)\b1080[pi]\b`), "1080p"},
		{regexp.MustCompile(`(?i)\b720p\b`), "720p"},
		{regexp.MustCompile(`(?i)\b576p\b`), "576p"},
		{regexp.MustCompile(`(?i)\b480p\b`), "480p"},
	}
	sourceRules = []qualityRule{
		{regexp.MustCompile(`(?i)\bREMUX\b`), "Remux"},
		{regexp.MustCompile(`(?i)\b(?:BluRay|Blu-Ray|BDRip|BRRip)\b`), "BluRay"},
		{regexp.MustCompile(`(?i)\bWEB-?DL\b`), "WEB-DL"},
		{regexp.MustCompile(`(?i)\bWEB-?Rip\b`), "WEBRip"},
		{regexp.MustCompile(`(?i)\bHDTV\b`), "HDTV"},
		{regexp.MustCompile(`(?i)\bDVDRip\b`), "DVDRip"},
		{regexp.MustCompile(`(?i)\bHDRip\b`), "HDRip"},
	}
	videoCodecRules = []qualityRule{
		{regexp.MustCompile(`(?i)\b(?:x265|H\.?265|HEVC)\b`), "x265"},
		{regexp.MustCompile(`(?i)\b(?:x264|H\.?264|AVC)\b`), "x264"},
		{regexp.MustCompile(`(?i)\bXviD\b`), "XviD"},
		{regexp.MustCompile(`(?i)\bAV1\b`), "AV1"},
	}
	audioCodecRules = []qualityRule{
		{regexp.MustCompile(`(?i)\bAtmos\b`), "Atmos"},
		{regexp.MustCompile(`(?i)\bTrueHD\b`), "TrueHD"},
		{regexp.MustCompile(`(?i)\bDTS-?HD\b`), "DTS-HD"},
		{regexp.MustCompile(`(?i)\bDTS\b`), "DTS"},
		{regexp.MustCompile(`(?i)\bDDP(?:5\.1)?\b|\bEAC3\b`), "DDP"},
		{regexp.MustCompile(`(?i)\b(?:DD5\.1|AC3)\b`), "AC3"},
		{regexp.MustCompile(`(?i)\bAAC\b`), "AAC"},
		{regexp.MustCompile(`(?i)\bFLAC\b`), "FLAC"},
	}
	hdrRe          = regexp.MustCompile(`(?i)\b(?:HDR|HDR10\+?|DV|Dolby[ .]?Vision)\b`)
	releaseGroupRe = regexp.MustCompile(`-([A-Za-z0-9]{2,})$`)
)

// ParseQuality extracts release attributes from a filename stem.
func ParseQuality(stem string) Quality {
	q := Quality{
		Resolution: firstRule(stem, resolutionRules),
		Source:     firstRule(stem, sourceRules),
		VideoCodec: firstRule(stem, videoCodecRules),
		AudioCodec: firstRule(stem, audioCodecRules),
		HDR:        hdrRe.MatchString(stem),
	}
	// A trailing -GROUP only counts when the name carries release tags.
	if m := releaseGroupRe.FindStringSubmatch(stem); m != nil && !q.IsZero() {
		q.ReleaseGroup = m[1]
	}
	return q
}

func firstRule(s string, rules []qualityRule) string {
	for _, r := range rules {
		if r.re.MatchString(s) {
			return r.value
		}
	}
	return ""
}

// IsZero reports whether no attribute is set.
func (q Quality) IsZero() bool {
	return q == Quality{}
}

// Fill returns a copy with empty attributes taken from other.
func (q Quality) Fill(other Quality) Quality {
	if q.Resolution == "" {
		q.Resolution = other.Resolution
	}
	if q.Source == "" {
		q.Source = other.Source
	}
	if q.VideoCodec == "" {
		q.VideoCodec = other.VideoCodec
	}
	if q.AudioCodec == "" {
		q.AudioCodec = other.AudioCodec
	}
	if q.ReleaseGroup == "" {
		q.ReleaseGroup = other.ReleaseGroup
	}
	q.HDR = q.HDR || other.HDR
	return q
}

// String renders the attributes used in filenames, e.g. "1080p BluRay x264".
func (q Quality) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{q.Resolution, q.Source, q.VideoCodec} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if q.HDR {
		parts = append(parts, "HDR")
	}
	return strings.Join(parts, " ")
}
