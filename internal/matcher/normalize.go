package matcher

import (
	"regexp"
	"strings"
)

// TagCategory identifies a class of decorative tokens that channel and guide
// names carry on top of their actual identity.
type TagCategory string

const (
	TagQuality       TagCategory = "quality"
	TagRegional      TagCategory = "regional"
	TagGeographic    TagCategory = "geographic"
	TagMiscellaneous TagCategory = "miscellaneous"
)

// TagSet is a set of tag categories.
type TagSet map[TagCategory]bool

// AllTags returns a set containing every tag category.
func AllTags() TagSet {
	return TagSet{
		TagQuality:       true,
		TagRegional:      true,
		TagGeographic:    true,
		TagMiscellaneous: true,
	}
}

// Has reports whether the category is in the set.
func (s TagSet) Has(c TagCategory) bool { return s[c] }

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// Leading country/region prefix followed by a separator, e.g. "US: " or
	// "UK | ".
	geographicRe = regexp.MustCompile(`^(?:usa|us|uk|ca|mx|au|nz|de|fr|es|intl)\s*[:|\-]\s*`)

	// Bracketed or parenthetical quality markers anywhere in the name,
	// e.g. "[HD]", "(1080p)", "(Backup)".
	qualityBracketRe = regexp.MustCompile(`[\[(]\s*(?:uhd|fhd|hd|sd|4k|8k|1080[pi]?|720[pi]?|480[pi]?|backup)\s*[\])]`)

	// Short parenthetical single/double-letter codes, e.g. "(E)" or "(CA)".
	miscCodeRe = regexp.MustCompile(`\(\s*[a-z]{1,2}\s*\)`)
)

// Bare trailing tokens stripped per category.
var (
	qualitySuffixes = map[string]bool{
		"uhd": true, "fhd": true, "hd": true, "sd": true, "4k": true,
		"8k": true, "1080p": true, "1080i": true, "720p": true,
		"480p": true, "480i": true, "backup": true,
	}
	regionalSuffixes = map[string]bool{
		"east": true, "west": true, "north": true, "south": true,
	}
)

// Normalize reduces a raw channel or guide name to its canonical comparison
// form. Categories in ignore are stripped; all others stay in place so they
// keep acting as distinguishing tokens. The result is lowercase with
// collapsed whitespace, and re-normalizing it with the same ignore set is a
// no-op.
func Normalize(raw string, ignore TagSet) (string, TagSet) {
	removed := TagSet{}
	s := strings.ToLower(strings.TrimSpace(raw))

	if ignore.Has(TagGeographic) {
		for {
			next := geographicRe.ReplaceAllString(s, "")
			if next == s {
				break
			}
			s = next
			removed[TagGeographic] = true
		}
	}

	if ignore.Has(TagQuality) {
		if qualityBracketRe.MatchString(s) {
			s = qualityBracketRe.ReplaceAllString(s, " ")
			removed[TagQuality] = true
		}
	}

	if ignore.Has(TagMiscellaneous) {
		if miscCodeRe.MatchString(s) {
			s = miscCodeRe.ReplaceAllString(s, " ")
			removed[TagMiscellaneous] = true
		}
	}

	s = stripTrailingTags(s, ignore, removed)

	s = whitespaceRe.ReplaceAllString(s, " ")
	s = trimSeparators(s)
	return s, removed
}

// stripTrailingTags keeps peeling bare trailing tokens until the name no
// longer ends in a stripped category, so interleaved suffixes
// ("Show West HD") come off in one pass.
func stripTrailingTags(s string, ignore, removed TagSet) string {
	for {
		s = trimSeparators(s)
		tok := lastToken(s)
		if tok == "" {
			return s
		}
		switch {
		case ignore.Has(TagQuality) && qualitySuffixes[tok]:
			s = s[:len(s)-len(tok)]
			removed[TagQuality] = true
		case ignore.Has(TagRegional) && regionalSuffixes[tok]:
			s = s[:len(s)-len(tok)]
			removed[TagRegional] = true
		default:
			return s
		}
	}
}

// trimSeparators drops leading/trailing whitespace and dangling separator
// punctuation left behind by tag removal.
func trimSeparators(s string) string {
	return strings.Trim(s, " \t-|:,")
}

func lastToken(s string) string {
	idx := strings.LastIndexAny(s, " -|:,")
	if idx < 0 {
		return s
	}
	return s[idx+1:]
}
