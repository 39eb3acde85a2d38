package janitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/epgjanitor/epgjanitor/internal/config"
	"github.com/epgjanitor/epgjanitor/internal/dispatcharr"
	"github.com/epgjanitor/epgjanitor/internal/matcher"
)

// ErrNotConfirmed is returned when an apply run is requested without the
// explicit confirmation signal. The engine never mutates state without it.
var ErrNotConfirmed = errors.New("apply requested without confirmation")

// Catalog is the read/write surface of the host catalog the engine needs.
type Catalog interface {
	ListChannels(ctx context.Context, filter dispatcharr.ChannelFilter) ([]dispatcharr.Channel, error)
	GetGuideSources(ctx context.Context) ([]dispatcharr.GuideSource, error)
	GetGuideEntries(ctx context.Context, sourceID int64) ([]dispatcharr.GuideEntry, error)
	CountPrograms(ctx context.Context, entryID int64, start, end time.Time) (int, error)
	SetChannelEPG(ctx context.Context, channelID int64, entryID *int64) error
}

// Recorder persists finished runs.
type Recorder interface {
	RecordRun(ctx context.Context, result *RunResult) error
}

// Service orchestrates the rank-validate-decide pipeline over the catalog.
// Channels are processed one at a time in catalog order; nothing here is
// concurrent.
type Service struct {
	catalog  Catalog
	cfg      *config.Config
	scorer   *matcher.Scorer
	recorder Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a new janitor service.
func NewService(catalog Catalog, cfg *config.Config, scorer *matcher.Scorer, logger zerolog.Logger) *Service {
	return &Service{
		catalog: catalog,
		cfg:     cfg,
		scorer:  scorer,
		logger:  logger.With().Str("component", "janitor").Logger(),
		now:     time.Now,
	}
}

// SetRecorder sets the run recorder for persisting results.
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// TagSetFromConfig converts the configured tag-ignore flags into the
// matcher's category set.
func TagSetFromConfig(jc config.JanitorConfig) matcher.TagSet {
	ts := matcher.TagSet{}
	if jc.IgnoreQualityTags {
		ts[matcher.TagQuality] = true
	}
	if jc.IgnoreRegionalTags {
		ts[matcher.TagRegional] = true
	}
	if jc.IgnoreGeographicTags {
		ts[matcher.TagGeographic] = true
	}
	if jc.IgnoreMiscTags {
		ts[matcher.TagMiscellaneous] = true
	}
	return ts
}

// RunAutoMatch proposes guide assignments for every channel in scope.
func (s *Service) RunAutoMatch(ctx context.Context, opts RunOptions) (*RunResult, error) {
	return s.run(ctx, ModeAutoMatch, opts)
}

// RunScanHeal finds channels with a broken assignment and tries to replace
// it with a validated alternative.
func (s *Service) RunScanHeal(ctx context.Context, opts RunOptions) (*RunResult, error) {
	return s.run(ctx, ModeScanHeal, opts)
}

// candidatePool is gathered once per run and read-only afterwards.
type candidatePool struct {
	candidates []matcher.Candidate
	byEntryID  map[int64]matcher.Candidate
}

func (s *Service) run(ctx context.Context, mode Mode, opts RunOptions) (*RunResult, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Apply && !opts.Confirm {
		return nil, ErrNotConfirmed
	}

	threshold := s.cfg.Janitor.ConfidenceThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	if threshold < 0 || threshold > 100 {
		return nil, fmt.Errorf("invalid configuration: confidence threshold must be between 0 and 100, got %d", threshold)
	}

	result := &RunResult{
		ID:         uuid.NewString(),
		Mode:       mode,
		Apply:      opts.Apply,
		CheckHours: s.cfg.Janitor.CheckHours,
		Threshold:  threshold,
		StartedAt:  s.now(),
	}

	pool, warnings, err := s.gatherPool(ctx, mode == ModeScanHeal)
	if err != nil {
		return nil, err
	}
	result.Warnings = warnings

	channels, err := s.catalog.ListChannels(ctx, s.channelFilter(opts))
	if err != nil {
		return nil, err
	}

	start := s.now()
	end := start.Add(time.Duration(s.cfg.Janitor.CheckHours) * time.Hour)

	s.logger.Info().
		Str("runId", result.ID).
		Str("mode", string(mode)).
		Bool("apply", opts.Apply).
		Int("channels", len(channels)).
		Int("candidates", len(pool.candidates)).
		Msg("starting run")

	for i := range channels {
		// Cancellation is cooperative at channel granularity: outcomes
		// already produced stay valid.
		if ctx.Err() != nil {
			result.Aborted = true
			s.logger.Warn().Str("runId", result.ID).Int("processed", i).Msg("run aborted")
			break
		}

		outcome, err := s.evaluateChannel(ctx, mode, &channels[i], pool, start, end, threshold, opts)
		if err != nil {
			return result, err
		}
		if outcome == nil {
			continue
		}
		result.Outcomes = append(result.Outcomes, *outcome)
	}

	result.FinishedAt = s.now()
	result.Summary = summarize(len(channels), result.Outcomes)

	s.logger.Info().
		Str("runId", result.ID).
		Int("outcomes", len(result.Outcomes)).
		Msg("run finished")

	if s.recorder != nil {
		if err := s.recorder.RecordRun(ctx, result); err != nil {
			s.logger.Warn().Err(err).Str("runId", result.ID).Msg("failed to persist run")
		}
	}

	return result, nil
}

func (s *Service) channelFilter(opts RunOptions) dispatcharr.ChannelFilter {
	filter := dispatcharr.ChannelFilter{
		Groups:       s.cfg.Janitor.Groups,
		IgnoreGroups: s.cfg.Janitor.IgnoreGroups,
		Profiles:     s.cfg.Janitor.Profiles,
	}
	if len(opts.Groups) > 0 {
		filter.Groups = opts.Groups
		filter.IgnoreGroups = nil
	}
	if len(opts.IgnoreGroups) > 0 {
		filter.IgnoreGroups = opts.IgnoreGroups
		filter.Groups = nil
	}
	if len(opts.Profiles) > 0 {
		filter.Profiles = opts.Profiles
	}
	return filter
}

// gatherPool fetches the guide entries of every allowed source, in priority
// order. Configured source names resolve case-insensitively with a warning;
// unknown names produce a warning instead of being silently dropped.
func (s *Service) gatherPool(ctx context.Context, heal bool) (*candidatePool, []string, error) {
	sources, err := s.catalog.GetGuideSources(ctx)
	if err != nil {
		return nil, nil, err
	}

	configured := s.cfg.Janitor.SourcePool(heal)

	var warnings []string
	var selected []dispatcharr.GuideSource

	if len(configured) == 0 {
		selected = sources
	} else {
		for _, name := range configured {
			src, warning, found := resolveSource(sources, name)
			if !found {
				warnings = append(warnings, warning)
				continue
			}
			if warning != "" {
				warnings = append(warnings, warning)
			}
			selected = append(selected, src)
		}
	}

	pool := &candidatePool{byEntryID: make(map[int64]matcher.Candidate)}
	for rank, src := range selected {
		entries, err := s.catalog.GetGuideEntries(ctx, src.ID)
		if err != nil {
			return nil, warnings, err
		}
		for _, entry := range entries {
			cand := matcher.Candidate{
				EntryID:    entry.ID,
				Name:       entry.Name,
				SourceID:   src.ID,
				SourceName: src.Name,
				SourceRank: rank,
			}
			pool.candidates = append(pool.candidates, cand)
			pool.byEntryID[entry.ID] = cand
		}
	}

	return pool, warnings, nil
}

// resolveSource finds a configured source name in the server's source list,
// preferring an exact match and falling back to case-insensitive.
func resolveSource(sources []dispatcharr.GuideSource, name string) (dispatcharr.GuideSource, string, bool) {
	for _, src := range sources {
		if src.Name == name {
			return src, "", true
		}
	}
	for _, src := range sources {
		if strings.EqualFold(src.Name, name) {
			return src, fmt.Sprintf("guide source %q matched %q case-insensitively", name, src.Name), true
		}
	}
	return dispatcharr.GuideSource{}, fmt.Sprintf("configured guide source %q not found; skipping", name), false
}

// evaluateChannel runs the rank-validate-decide pipeline for one channel.
// A nil outcome means the channel is out of scope for the mode (scan & heal
// skips channels that are unassigned or still healthy).
func (s *Service) evaluateChannel(
	ctx context.Context,
	mode Mode,
	ch *dispatcharr.Channel,
	pool *candidatePool,
	start, end time.Time,
	threshold int,
	opts RunOptions,
) (*Outcome, error) {
	var prior *GuideRef
	var excludeEntry int64

	if mode == ModeScanHeal {
		if ch.EPGDataID == nil {
			return nil, nil
		}
		valid, err := s.hasProgramData(ctx, *ch.EPGDataID, start, end)
		if err != nil {
			return nil, err
		}
		if valid {
			return nil, nil
		}
		prior = s.guideRef(pool, *ch.EPGDataID)
		excludeEntry = *ch.EPGDataID
	} else if ch.EPGDataID != nil {
		prior = s.guideRef(pool, *ch.EPGDataID)
	}

	outcome := &Outcome{
		ChannelID:     ch.ID,
		ChannelName:   ch.Name,
		ChannelNumber: ch.ChannelNumber,
		ChannelGroup:  ch.ChannelGroup,
		Prior:         prior,
		ScannedAt:     s.now(),
	}

	winner, err := s.firstValidated(ctx, ch.Name, pool, excludeEntry, start, end)
	if err != nil {
		return nil, err
	}

	switch {
	case winner == nil && mode == ModeAutoMatch:
		outcome.Status = StatusNoMatch
	case winner == nil:
		outcome.Status = StatusNoReplacement
	default:
		outcome.New = &GuideRef{
			EntryID: winner.Candidate.EntryID,
			Name:    winner.Candidate.Name,
			Source:  winner.Candidate.SourceName,
		}
		outcome.Confidence = winner.Confidence
		outcome.Method = winner.Method

		if mode == ModeAutoMatch {
			outcome.Status = StatusMatched
		} else if winner.Confidence >= threshold {
			outcome.Status = StatusHealed
		} else {
			outcome.Status = StatusReplacementPreview
		}
	}

	s.applyOutcome(ctx, opts, outcome)
	return outcome, nil
}

// firstValidated ranks the pool against the channel and validates candidates
// in ranked order, stopping at the first one with future program data.
// Validation is the expensive step, so the rest of the list is only touched
// when everything before it fails.
func (s *Service) firstValidated(
	ctx context.Context,
	channelName string,
	pool *candidatePool,
	excludeEntry int64,
	start, end time.Time,
) (*matcher.Match, error) {
	ranked := s.scorer.Rank(channelName, pool.candidates)

	for i := range ranked {
		match := &ranked[i]
		if excludeEntry != 0 && match.Candidate.EntryID == excludeEntry {
			continue
		}
		valid, err := s.hasProgramData(ctx, match.Candidate.EntryID, start, end)
		if err != nil {
			return nil, err
		}
		if valid {
			return match, nil
		}
		s.logger.Debug().
			Str("channel", channelName).
			Str("entry", match.Candidate.Name).
			Int("confidence", match.Confidence).
			Msg("candidate rejected: no future program data")
	}

	return nil, nil
}

// applyOutcome writes the winning assignment back to the catalog when the
// run is an apply run and the outcome's status permits it. A failed write is
// recorded on the outcome and does not abort the remaining channels.
// REPLACEMENT_PREVIEW is never applied: the safety gate is confidence-based.
func (s *Service) applyOutcome(ctx context.Context, opts RunOptions, outcome *Outcome) {
	if !opts.Apply || !opts.Confirm {
		return
	}
	if outcome.Status != StatusMatched && outcome.Status != StatusHealed {
		return
	}

	entryID := outcome.New.EntryID
	if err := s.catalog.SetChannelEPG(ctx, outcome.ChannelID, &entryID); err != nil {
		outcome.ApplyError = err.Error()
		s.logger.Error().Err(err).
			Int64("channelId", outcome.ChannelID).
			Msg("failed to apply guide assignment")
		return
	}
	outcome.Applied = true
}

func (s *Service) guideRef(pool *candidatePool, entryID int64) *GuideRef {
	ref := &GuideRef{EntryID: entryID}
	if cand, ok := pool.byEntryID[entryID]; ok {
		ref.Name = cand.Name
		ref.Source = cand.SourceName
	}
	return ref
}

// hasProgramData reports whether the entry has at least one program record
// starting inside [start, end).
func (s *Service) hasProgramData(ctx context.Context, entryID int64, start, end time.Time) (bool, error) {
	count, err := s.catalog.CountPrograms(ctx, entryID, start, end)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func summarize(totalChannels int, outcomes []Outcome) Summary {
	summary := Summary{
		TotalChannels: totalChannels,
		ByStatus:      make(map[Status]int),
		BySource:      make(map[string]int),
		ByGroup:       make(map[string]int),
	}
	for i := range outcomes {
		o := &outcomes[i]
		summary.ByStatus[o.Status]++
		if o.New != nil && o.New.Source != "" {
			summary.BySource[o.New.Source]++
		}
		if o.ChannelGroup != "" {
			summary.ByGroup[o.ChannelGroup]++
		}
	}
	return summary
}
