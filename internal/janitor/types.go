package janitor

import "time"

// Mode selects the run strategy sharing the rank-validate pipeline.
type Mode string

const (
	// ModeAutoMatch proposes a guide assignment for every channel in
	// scope, whatever its current state.
	ModeAutoMatch Mode = "automatch"
	// ModeScanHeal targets only channels whose current assignment has no
	// program data and tries to replace it.
	ModeScanHeal Mode = "scanheal"
)

// Status is the terminal per-channel result of a run.
type Status string

const (
	StatusMatched            Status = "MATCHED"
	StatusNoMatch            Status = "NO_MATCH"
	StatusHealed             Status = "HEALED"
	StatusReplacementPreview Status = "REPLACEMENT_PREVIEW"
	StatusNoReplacement      Status = "NO_REPLACEMENT_FOUND"
)

// GuideRef identifies a guide entry in an outcome record.
type GuideRef struct {
	EntryID int64  `json:"entryId"`
	Name    string `json:"name,omitempty"`
	Source  string `json:"source,omitempty"`
}

// Outcome is the immutable per-channel result of one run. It is created
// once, reported, and optionally applied; never mutated afterwards.
type Outcome struct {
	ChannelID     int64     `json:"channelId"`
	ChannelName   string    `json:"channelName"`
	ChannelNumber float64   `json:"channelNumber,omitempty"`
	ChannelGroup  string    `json:"channelGroup,omitempty"`
	Prior         *GuideRef `json:"prior,omitempty"`
	New           *GuideRef `json:"new,omitempty"`
	Confidence    int       `json:"confidence"`
	Method        string    `json:"method,omitempty"`
	Status        Status    `json:"status"`
	Applied       bool      `json:"applied"`
	ApplyError    string    `json:"applyError,omitempty"`
	ScannedAt     time.Time `json:"scannedAt"`
}

// RunOptions parameterizes a single run.
type RunOptions struct {
	// Apply writes winning assignments back to the catalog. It requires
	// Confirm; preview runs never mutate state.
	Apply   bool `json:"apply"`
	Confirm bool `json:"confirm"`
	// Scope overrides; empty values fall back to the configured scope.
	Groups       []string `json:"groups,omitempty"`
	IgnoreGroups []string `json:"ignoreGroups,omitempty"`
	Profiles     []string `json:"profiles,omitempty"`
	// Threshold overrides the configured healing confidence threshold.
	Threshold *int `json:"threshold,omitempty"`
}

// Summary aggregates a run's outcomes.
type Summary struct {
	TotalChannels int            `json:"totalChannels"`
	ByStatus      map[Status]int `json:"byStatus"`
	BySource      map[string]int `json:"bySource"`
	ByGroup       map[string]int `json:"byGroup"`
}

// RunResult is the full record of one run.
type RunResult struct {
	ID         string    `json:"id"`
	Mode       Mode      `json:"mode"`
	Apply      bool      `json:"apply"`
	CheckHours int       `json:"checkHours"`
	Threshold  int       `json:"threshold"`
	Warnings   []string  `json:"warnings,omitempty"`
	Outcomes   []Outcome `json:"outcomes"`
	Summary    Summary   `json:"summary"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	// Aborted is set when the run was cancelled between channels; the
	// outcomes gathered up to that point remain valid.
	Aborted bool `json:"aborted,omitempty"`
}

// MissingChannel is one channel whose assignment yields no program data.
type MissingChannel struct {
	ChannelID     int64   `json:"channelId"`
	ChannelName   string  `json:"channelName"`
	ChannelNumber float64 `json:"channelNumber,omitempty"`
	ChannelGroup  string  `json:"channelGroup,omitempty"`
	EntryID       int64   `json:"entryId"`
	EntryName     string  `json:"entryName,omitempty"`
	Source        string  `json:"source,omitempty"`
}

// MissingReport is the result of a read-only missing-data scan.
type MissingReport struct {
	CheckHours     int              `json:"checkHours"`
	TotalWithGuide int              `json:"totalWithGuide"`
	Missing        []MissingChannel `json:"missing"`
	BySource       map[string]int   `json:"bySource"`
	ByGroup        map[string]int   `json:"byGroup"`
	ScannedAt      time.Time        `json:"scannedAt"`
}
