package matcher

import (
	"regexp"
	"sort"
	"strings"
)

// Clues holds the structured identity evidence extracted from a canonical
// name. An empty field means no evidence, never a negative signal.
type Clues struct {
	Callsign string
	Network  string
	State    string
	City     string
}

// Extractor derives identity clues from canonical names using a fixed set of
// lookup tables.
type Extractor struct {
	tables   *LookupTables
	cityList []string
}

// NewExtractor creates an extractor over the given tables. A nil tables
// argument uses the built-in defaults.
func NewExtractor(tables *LookupTables) *Extractor {
	if tables == nil {
		tables = DefaultTables()
	}
	cities := make([]string, 0, len(tables.cities))
	for city := range tables.cities {
		cities = append(cities, city)
	}
	// Longest first so "new york" wins over any shorter overlap, with a
	// stable alphabetical order after that.
	sort.Slice(cities, func(i, j int) bool {
		if len(cities[i]) != len(cities[j]) {
			return len(cities[i]) > len(cities[j])
		}
		return cities[i] < cities[j]
	})
	return &Extractor{tables: tables, cityList: cities}
}

var (
	tokenRe        = regexp.MustCompile(`[a-z0-9]+(?:-[a-z0-9]+)?`)
	parenTokenRe   = regexp.MustCompile(`\(([a-z0-9-]+)\)`)
	callsignBaseRe = regexp.MustCompile(`^[kw][a-z]{2,3}$`)
)

// Extract parses a canonical (normalized) name into identity clues.
func (e *Extractor) Extract(canonical string) Clues {
	var c Clues

	parenthesized := map[string]bool{}
	for _, m := range parenTokenRe.FindAllStringSubmatch(canonical, -1) {
		parenthesized[m[1]] = true
	}

	for _, tok := range tokenRe.FindAllString(canonical, -1) {
		if c.Network == "" && e.tables.Networks[tok] {
			c.Network = tok
			continue
		}
		if c.State == "" && len(tok) == 2 && e.tables.States[tok] {
			c.State = tok
			continue
		}
		if c.Callsign == "" {
			if base, ok := e.callsign(tok, parenthesized[tok]); ok {
				c.Callsign = base
			}
		}
	}

	// A city is only trusted when it co-occurs with harder evidence;
	// a bare locality name is too weak on its own.
	if c.Callsign != "" || c.State != "" {
		for _, city := range e.cityList {
			if containsTokens(canonical, city) {
				c.City = city
				break
			}
		}
	}

	return c
}

// callsign reports whether tok is a trustworthy broadcast callsign and
// returns its base form (suffixes like "-dt" stripped). A bare token of
// callsign shape only counts when it is parenthesized or appears in the
// station table; that keeps ordinary words like "west" from misfiring.
func (e *Extractor) callsign(tok string, parenthesized bool) (string, bool) {
	base, suffix, _ := strings.Cut(tok, "-")
	if !callsignBaseRe.MatchString(base) {
		return "", false
	}
	if e.tables.Stopwords[base] {
		return "", false
	}
	if suffix != "" || parenthesized {
		return base, true
	}
	if _, known := e.tables.Stations[base]; known {
		return base, true
	}
	return "", false
}

// containsTokens reports whether needle appears in haystack on token
// boundaries.
func containsTokens(haystack, needle string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		beforeOK := start == 0 || !isAlnum(haystack[start-1])
		afterOK := end == len(haystack) || !isAlnum(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
