package matcher

import "sort"

// Candidate is one guide entry offered for ranking against a channel.
type Candidate struct {
	EntryID    int64
	Name       string
	SourceID   int64
	SourceName string
	// SourceRank is the candidate source's position in the configured
	// priority order; lower ranks win ties.
	SourceRank int
}

// Match is a scored candidate.
type Match struct {
	Candidate  Candidate
	Confidence int
	Method     string
}

// Rank scores every candidate against the channel name and orders the result
// by confidence (highest first), breaking ties by ascending source rank.
// Candidates that score zero are dropped. Ranking never touches program
// data; validation is the caller's concern and should walk the returned
// slice in order, stopping at the first candidate that passes.
func (s *Scorer) Rank(channelName string, candidates []Candidate) []Match {
	channelCanonical, _ := Normalize(channelName, s.ignore)
	channelClues := s.extractor.Extract(channelCanonical)

	matches := make([]Match, 0, len(candidates))
	for _, cand := range candidates {
		entryCanonical, _ := Normalize(cand.Name, s.ignore)
		entryClues := s.extractor.Extract(entryCanonical)
		confidence, method := s.Score(channelClues, entryClues, channelCanonical, entryCanonical)
		if confidence == 0 {
			continue
		}
		matches = append(matches, Match{
			Candidate:  cand,
			Confidence: confidence,
			Method:     method,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].Candidate.SourceRank < matches[j].Candidate.SourceRank
	})

	return matches
}
