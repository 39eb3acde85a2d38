package matcher

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// FuzzyThreshold is the minimum similarity treated as a qualifying fuzzy
// match. Anything below contributes nothing.
const FuzzyThreshold = 0.85

// Similarity computes a symmetric similarity in [0,1] between two canonical
// strings. Jaro-Winkler handles minor punctuation and spelling drift; a
// second pass over sorted tokens handles word-order differences, and the
// better of the two wins.
func Similarity(a, b string) float64 {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	direct := float64(edlib.JaroWinklerSimilarity(a, b))
	sorted := float64(edlib.JaroWinklerSimilarity(sortTokens(a), sortTokens(b)))
	if sorted > direct {
		return sorted
	}
	return direct
}

func sortTokens(s string) string {
	tokens := tokenRe.FindAllString(s, -1)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
