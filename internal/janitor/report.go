package janitor

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ScanMissing walks every channel that has a guide assignment and reports
// the ones whose entry has no program data inside the check window. It is
// read-only and never touches assignments.
func (s *Service) ScanMissing(ctx context.Context, opts RunOptions) (*MissingReport, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	pool, _, err := s.gatherPool(ctx, false)
	if err != nil {
		return nil, err
	}

	channels, err := s.catalog.ListChannels(ctx, s.channelFilter(opts))
	if err != nil {
		return nil, err
	}

	start := s.now()
	end := start.Add(time.Duration(s.cfg.Janitor.CheckHours) * time.Hour)

	report := &MissingReport{
		CheckHours: s.cfg.Janitor.CheckHours,
		BySource:   make(map[string]int),
		ByGroup:    make(map[string]int),
		ScannedAt:  start,
	}

	for i := range channels {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		ch := &channels[i]
		if ch.EPGDataID == nil {
			continue
		}
		report.TotalWithGuide++

		valid, err := s.hasProgramData(ctx, *ch.EPGDataID, start, end)
		if err != nil {
			return nil, err
		}
		if valid {
			continue
		}

		missing := MissingChannel{
			ChannelID:     ch.ID,
			ChannelName:   ch.Name,
			ChannelNumber: ch.ChannelNumber,
			ChannelGroup:  ch.ChannelGroup,
			EntryID:       *ch.EPGDataID,
		}
		if cand, ok := pool.byEntryID[*ch.EPGDataID]; ok {
			missing.EntryName = cand.Name
			missing.Source = cand.SourceName
		}
		report.Missing = append(report.Missing, missing)
		report.BySource[missing.Source]++
		if ch.ChannelGroup != "" {
			report.ByGroup[ch.ChannelGroup]++
		}
	}

	s.logger.Info().
		Int("withGuide", report.TotalWithGuide).
		Int("missing", len(report.Missing)).
		Msg("missing-data scan finished")

	return report, nil
}

// WriteCSV renders a run's outcomes as CSV, one row per channel.
func WriteCSV(w io.Writer, result *RunResult) error {
	cw := csv.NewWriter(w)

	header := []string{
		"channel_id", "channel_number", "channel_name", "channel_group",
		"prior_entry", "prior_source", "new_entry", "new_source",
		"confidence", "method", "status", "applied", "apply_error",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range result.Outcomes {
		o := &result.Outcomes[i]
		row := []string{
			strconv.FormatInt(o.ChannelID, 10),
			formatChannelNumber(o.ChannelNumber),
			o.ChannelName,
			o.ChannelGroup,
			refName(o.Prior), refSource(o.Prior),
			refName(o.New), refSource(o.New),
			strconv.Itoa(o.Confidence),
			o.Method,
			string(o.Status),
			strconv.FormatBool(o.Applied),
			o.ApplyError,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteMissingCSV renders a missing-data report as CSV.
func WriteMissingCSV(w io.Writer, report *MissingReport) error {
	cw := csv.NewWriter(w)

	header := []string{
		"channel_id", "channel_number", "channel_name", "channel_group",
		"entry_id", "entry_name", "source",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range report.Missing {
		m := &report.Missing[i]
		row := []string{
			strconv.FormatInt(m.ChannelID, 10),
			formatChannelNumber(m.ChannelNumber),
			m.ChannelName,
			m.ChannelGroup,
			strconv.FormatInt(m.EntryID, 10),
			m.EntryName,
			m.Source,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFile writes a run's CSV report into dir with a timestamped name and
// returns the path.
func ExportFile(dir string, result *RunResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("epgjanitor_%s_%s.csv", result.Mode, result.StartedAt.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteCSV(f, result); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func formatChannelNumber(n float64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func refName(ref *GuideRef) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}

func refSource(ref *GuideRef) string {
	if ref == nil {
		return ""
	}
	return ref.Source
}
