package janitor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/epgjanitor/epgjanitor/internal/config"
	"github.com/epgjanitor/epgjanitor/internal/dispatcharr"
)

func TestScanMissing(t *testing.T) {
	catalog := &fakeCatalog{
		channels: []dispatcharr.Channel{
			{ID: 1, Name: "WKBW", ChannelGroup: "Locals", EPGDataID: intPtr(10)},
			{ID: 2, Name: "WAGT", ChannelGroup: "Locals", EPGDataID: intPtr(11)},
			{ID: 3, Name: "HBO", ChannelGroup: "Premium", EPGDataID: intPtr(12)},
			{ID: 4, Name: "Unassigned"},
		},
		sources: []dispatcharr.GuideSource{{ID: 1, Name: "Gracenote"}},
		entries: map[int64][]dispatcharr.GuideEntry{
			1: {
				{ID: 10, Name: "WKBW (ABC) Buffalo NY", SourceID: 1},
				{ID: 11, Name: "WAGT GA", SourceID: 1},
				{ID: 12, Name: "HBO East", SourceID: 1},
			},
		},
		// Only channel 1's assignment still has data.
		programs: map[int64]int{10: 24},
	}
	svc := newTestService(catalog, config.Default())

	report, err := svc.ScanMissing(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("ScanMissing() error = %v", err)
	}

	if report.TotalWithGuide != 3 {
		t.Errorf("total with guide = %d, want 3", report.TotalWithGuide)
	}
	if len(report.Missing) != 2 {
		t.Fatalf("missing = %d, want 2", len(report.Missing))
	}
	if report.Missing[0].EntryName != "WAGT GA" {
		t.Errorf("entry name = %q, want the resolved pool entry", report.Missing[0].EntryName)
	}
	if got := report.BySource["Gracenote"]; got != 2 {
		t.Errorf("by source = %d, want 2", got)
	}
	if got := report.ByGroup["Premium"]; got != 1 {
		t.Errorf("premium group = %d, want 1", got)
	}

	if len(catalog.setCalls) != 0 {
		t.Errorf("missing-data scan wrote to the catalog: %v", catalog.setCalls)
	}
}

func sampleResult() *RunResult {
	return &RunResult{
		ID:        "run-1",
		Mode:      ModeScanHeal,
		StartedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Outcomes: []Outcome{
			{
				ChannelID:    1,
				ChannelName:  "ABC Buffalo",
				ChannelGroup: "Locals",
				Prior:        &GuideRef{EntryID: 100, Name: "Dead Entry", Source: "Old"},
				New:          &GuideRef{EntryID: 10, Name: "WKBW (ABC) Buffalo NY", Source: "Gracenote"},
				Confidence:   100,
				Method:       "Callsign+State+City+Network",
				Status:       StatusHealed,
				Applied:      true,
			},
			{
				ChannelID:   2,
				ChannelName: "Mystery Channel",
				Status:      StatusNoReplacement,
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var sb strings.Builder
	if err := WriteCSV(&sb, sampleResult()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header plus 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "channel_id,") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "WKBW (ABC) Buffalo NY") || !strings.Contains(lines[1], "HEALED") {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], "NO_REPLACEMENT_FOUND") {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestWriteMissingCSV(t *testing.T) {
	report := &MissingReport{
		Missing: []MissingChannel{
			{ChannelID: 2, ChannelName: "WAGT", ChannelGroup: "Locals", EntryID: 11, EntryName: "WAGT GA", Source: "Gracenote"},
		},
	}

	var sb strings.Builder
	if err := WriteMissingCSV(&sb, report); err != nil {
		t.Fatalf("WriteMissingCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want header plus 1 row", len(lines))
	}
	if !strings.Contains(lines[1], "WAGT GA") || !strings.Contains(lines[1], "Gracenote") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportFile(dir, sampleResult())
	if err != nil {
		t.Fatalf("ExportFile() error = %v", err)
	}

	want := filepath.Join(dir, "epgjanitor_scanheal_20250601_120000.csv")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(data), "ABC Buffalo") {
		t.Errorf("export misses outcome row: %q", data)
	}
}
