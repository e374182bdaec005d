package media

import "regexp"

var (
	// Season/episode markers, tried in order.
	seasonEpisodeRe  = regexp.MustCompile(`(?i)\bs(\d{1,2})[ ._-]?e(\d{1,3})(?:[ ._-]?e\d{1,3})*\b`)
	verboseEpisodeRe = regexp.MustCompile(`(?i)\bseason[ ._-]*(\d{1,2})[ ._-]*episode[ ._-]*(\d{1,3})\b`)
	crossEpisodeRe   = regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{2,3})\b`)

	// Year extraction
	yearRe = regexp.MustCompile(`(?:^|[^\dA-Za-z])((?:19|20)\d{2})(?:[^\dA-Za-z]|$)`)

	// Release tags; everything from the first match onward is not title.
	releaseTagRe = regexp.MustCompile(`(?i)\b(?:2160p|1080[pi]|720p|576p|480p|4K|UHD|BluRay|Blu-Ray|BDRip|BRRip|WEB-?DL|WEB-?Rip|HDTV|DVDRip|DVDScr|HDRip|REMUX|x26[45]|H\.?26[45]|HEVC|XviD|DivX|10bit|HDR10|PROPER|REPACK|iNTERNAL|UNRATED|EXTENDED|AAC|AC3|DTS|DDP?5\.1|TrueHD|Atmos)\b`)

	bracketedRe     = regexp.MustCompile(`\[[^\[\]]*\]|\{[^{}]*\}`)
	emptyBracketsRe = regexp.MustCompile(`\s*[\(\[\{<]\s*[\)\]\}>]`)
	seasonDirRe     = regexp.MustCompile(`(?i)^(?:season|series|s)[ ._-]*\d{1,2}$|^specials?$`)
)
