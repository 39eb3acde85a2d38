package matcher

import (
	"math"
	"strings"
)

// Point weights for structured clue agreement. Each category counts at most
// once; the total is capped at MaxConfidence.
const (
	PointsCallsign = 50
	PointsState    = 30
	PointsCity     = 20
	PointsNetwork  = 10

	// MaxConfidence caps the final score.
	MaxConfidence = 100

	// fuzzyMaxPoints is the ceiling of the fuzzy fallback contribution.
	fuzzyMaxPoints = 50

	// MethodFuzzy is the method label when only the fuzzy path fired.
	MethodFuzzy = "Fuzzy"
)

// Scorer combines structured clue agreement and fuzzy similarity into a
// single 0-100 confidence.
type Scorer struct {
	extractor *Extractor
	ignore    TagSet
}

// NewScorer creates a scorer. A nil extractor uses the default tables; a nil
// ignore set strips every tag category.
func NewScorer(extractor *Extractor, ignore TagSet) *Scorer {
	if extractor == nil {
		extractor = NewExtractor(nil)
	}
	if ignore == nil {
		ignore = AllTags()
	}
	return &Scorer{extractor: extractor, ignore: ignore}
}

// Ignore returns the scorer's tag-ignore set.
func (s *Scorer) Ignore() TagSet { return s.ignore }

// Score compares two already-extracted clue sets, falling back to fuzzy
// similarity of the canonical names when no structured evidence agrees.
// Structured and fuzzy contributions are mutually exclusive: any structured
// points at all suppress the fuzzy path.
func (s *Scorer) Score(channelClues, entryClues Clues, channelCanonical, entryCanonical string) (int, string) {
	points := 0
	var methods []string

	if channelClues.Callsign != "" && channelClues.Callsign == entryClues.Callsign {
		points += PointsCallsign
		methods = append(methods, "Callsign")
	}
	if channelClues.State != "" && channelClues.State == entryClues.State {
		points += PointsState
		methods = append(methods, "State")
	}
	if channelClues.City != "" && channelClues.City == entryClues.City {
		points += PointsCity
		methods = append(methods, "City")
	}
	if channelClues.Network != "" && channelClues.Network == entryClues.Network {
		points += PointsNetwork
		methods = append(methods, "Network")
	}

	if points > 0 {
		if points > MaxConfidence {
			points = MaxConfidence
		}
		return points, strings.Join(methods, "+")
	}

	sim := Similarity(channelCanonical, entryCanonical)
	if sim < FuzzyThreshold {
		return 0, ""
	}
	return int(math.Round(sim * fuzzyMaxPoints)), MethodFuzzy
}

// ScoreNames normalizes and extracts both raw names, then scores them.
func (s *Scorer) ScoreNames(channelName, entryName string) (int, string) {
	channelCanonical, _ := Normalize(channelName, s.ignore)
	entryCanonical, _ := Normalize(entryName, s.ignore)
	channelClues := s.extractor.Extract(channelCanonical)
	entryClues := s.extractor.Extract(entryCanonical)
	return s.Score(channelClues, entryClues, channelCanonical, entryCanonical)
}
