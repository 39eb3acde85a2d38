package matcher

import "testing"

func TestScoreStructured(t *testing.T) {
	s := NewScorer(nil, AllTags())

	full := Clues{Callsign: "wkbw", Network: "abc", State: "ny", City: "buffalo"}

	t.Run("AllCluesCapsAtHundred", func(t *testing.T) {
		confidence, method := s.Score(full, full, "abc - ny buffalo (wkbw)", "wkbw-dt (abc) buffalo, ny")
		if confidence != 100 {
			t.Fatalf("expected 100, got %d", confidence)
		}
		if method != "Callsign+State+City+Network" {
			t.Fatalf("unexpected method %q", method)
		}
	})

	t.Run("NetworkOnly", func(t *testing.T) {
		a := Clues{Network: "abc"}
		confidence, method := s.Score(a, a, "abc stations", "abc broadcasting")
		if confidence != 10 {
			t.Fatalf("expected 10, got %d", confidence)
		}
		if method != "Network" {
			t.Fatalf("unexpected method %q", method)
		}
	})

	t.Run("CallsignAndState", func(t *testing.T) {
		a := Clues{Callsign: "wagt", State: "ga"}
		confidence, method := s.Score(a, a, "x", "y")
		if confidence != 80 {
			t.Fatalf("expected 80, got %d", confidence)
		}
		if method != "Callsign+State" {
			t.Fatalf("unexpected method %q", method)
		}
	})

	t.Run("CallsignStateNetwork", func(t *testing.T) {
		a := Clues{Callsign: "wagt", State: "ga", Network: "nbc"}
		confidence, method := s.Score(a, a, "x", "y")
		if confidence != 90 {
			t.Fatalf("expected 90, got %d", confidence)
		}
		if method != "Callsign+State+Network" {
			t.Fatalf("unexpected method %q", method)
		}
	})

	t.Run("AbsentCluesNeverMatch", func(t *testing.T) {
		// Both sides empty on every category: no structured evidence, and
		// the names are too far apart for fuzzy.
		confidence, method := s.Score(Clues{}, Clues{}, "golf channel", "cartoon network")
		if confidence != 0 || method != "" {
			t.Fatalf("expected no match, got %d %q", confidence, method)
		}
	})

	t.Run("DisagreementIsNotNegative", func(t *testing.T) {
		// A state mismatch contributes nothing but does not cancel the
		// callsign agreement.
		a := Clues{Callsign: "wkbw", State: "ny"}
		b := Clues{Callsign: "wkbw", State: "ca"}
		confidence, method := s.Score(a, b, "x", "y")
		if confidence != 50 || method != "Callsign" {
			t.Fatalf("expected 50/Callsign, got %d %q", confidence, method)
		}
	})
}

func TestScoreFuzzyFallback(t *testing.T) {
	s := NewScorer(nil, AllTags())

	t.Run("IdenticalAfterStripping", func(t *testing.T) {
		confidence, method := s.ScoreNames("HBO Latino", "HBO Latino HD")
		if confidence != 50 {
			t.Fatalf("expected 50, got %d", confidence)
		}
		if method != MethodFuzzy {
			t.Fatalf("unexpected method %q", method)
		}
	})

	t.Run("BelowThresholdNoContribution", func(t *testing.T) {
		confidence, method := s.ScoreNames("Golf Channel", "Cartoon Network")
		if confidence != 0 || method != "" {
			t.Fatalf("expected no match, got %d %q", confidence, method)
		}
	})

	// Policy for partial structured evidence alongside a qualifying fuzzy
	// similarity: structured wins and fuzzy contributes nothing. The two
	// paths are never summed.
	t.Run("StructuredSuppressesFuzzy", func(t *testing.T) {
		confidence, method := s.ScoreNames("ABC Family", "ABC Family")
		if confidence != 10 {
			t.Fatalf("expected structured 10, got %d", confidence)
		}
		if method != "Network" {
			t.Fatalf("unexpected method %q", method)
		}
	})
}

func TestScoreDeterministic(t *testing.T) {
	s := NewScorer(nil, AllTags())

	c1, m1 := s.ScoreNames("ABC - NY Buffalo (WKBW)", "WKBW-DT (ABC) Buffalo, NY")
	for i := 0; i < 10; i++ {
		c2, m2 := s.ScoreNames("ABC - NY Buffalo (WKBW)", "WKBW-DT (ABC) Buffalo, NY")
		if c1 != c2 || m1 != m2 {
			t.Fatalf("score not deterministic: (%d,%q) != (%d,%q)", c1, m1, c2, m2)
		}
	}
	if c1 != 100 {
		t.Fatalf("expected 100 for full broadcast identity, got %d", c1)
	}
}
