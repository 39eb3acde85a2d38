package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/epgjanitor/epgjanitor/internal/janitor"
	"github.com/epgjanitor/epgjanitor/internal/testutil"
)

func sampleRun(id string, started time.Time) *janitor.RunResult {
	return &janitor.RunResult{
		ID:         id,
		Mode:       janitor.ModeScanHeal,
		Apply:      true,
		CheckHours: 12,
		Threshold:  95,
		Warnings:   []string{`guide source "gracenote" matched "Gracenote" case-insensitively`},
		Outcomes: []janitor.Outcome{
			{
				ChannelID:    1,
				ChannelName:  "ABC Buffalo",
				ChannelGroup: "Locals",
				Prior:        &janitor.GuideRef{EntryID: 100, Name: "Dead Entry", Source: "Old"},
				New:          &janitor.GuideRef{EntryID: 10, Name: "WKBW (ABC) Buffalo NY", Source: "Gracenote"},
				Confidence:   100,
				Method:       "Callsign+State+City+Network",
				Status:       janitor.StatusHealed,
				Applied:      true,
				ScannedAt:    started,
			},
			{
				ChannelID:   2,
				ChannelName: "Mystery Channel",
				Status:      janitor.StatusNoReplacement,
				ScannedAt:   started,
			},
		},
		Summary: janitor.Summary{
			TotalChannels: 5,
			ByStatus: map[janitor.Status]int{
				janitor.StatusHealed:        1,
				janitor.StatusNoReplacement: 1,
			},
			BySource: map[string]int{"Gracenote": 1},
			ByGroup:  map[string]int{"Locals": 1},
		},
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
	}
}

func TestRecordAndGetRun(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	svc := NewService(tdb.DB, tdb.Logger)
	ctx := context.Background()

	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	run := sampleRun("run-1", started)
	if err := svc.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	got, err := svc.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}

	if got.Mode != janitor.ModeScanHeal || !got.Apply || got.Threshold != 95 {
		t.Errorf("run fields = %+v", got)
	}
	if len(got.Warnings) != 1 {
		t.Errorf("warnings = %v, want 1", got.Warnings)
	}
	if len(got.Outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(got.Outcomes))
	}

	healed := got.Outcomes[0]
	if healed.Status != janitor.StatusHealed || !healed.Applied {
		t.Errorf("outcome 1 = %+v", healed)
	}
	if healed.New == nil || healed.New.EntryID != 10 || healed.New.Source != "Gracenote" {
		t.Errorf("new ref = %+v", healed.New)
	}
	if healed.Prior == nil || healed.Prior.Name != "Dead Entry" {
		t.Errorf("prior ref = %+v", healed.Prior)
	}

	empty := got.Outcomes[1]
	if empty.Prior != nil || empty.New != nil {
		t.Errorf("outcome without refs round-tripped refs: %+v", empty)
	}
	if got.Summary.ByStatus[janitor.StatusHealed] != 1 {
		t.Errorf("summary = %+v", got.Summary)
	}
}

func TestGetRunNotFound(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	svc := NewService(tdb.DB, tdb.Logger)

	_, err := svc.GetRun(context.Background(), "missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("error = %v, want ErrRunNotFound", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	svc := NewService(tdb.DB, tdb.Logger)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-old", "run-mid", "run-new"} {
		if err := svc.RecordRun(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("RecordRun(%s) error = %v", id, err)
		}
	}

	records, err := svc.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].ID != "run-new" || records[1].ID != "run-mid" {
		t.Errorf("order = %s, %s; want newest first", records[0].ID, records[1].ID)
	}
	if records[0].TotalChannels != 5 {
		t.Errorf("total channels = %d, want 5", records[0].TotalChannels)
	}
	if records[0].Summary.ByStatus[janitor.StatusHealed] != 1 {
		t.Errorf("summary not decoded: %+v", records[0].Summary)
	}
}

func TestDeleteOlderThan(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	svc := NewService(tdb.DB, tdb.Logger)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := svc.RecordRun(ctx, sampleRun("run-old", base)); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if err := svc.RecordRun(ctx, sampleRun("run-new", base.Add(48*time.Hour))); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	deleted, err := svc.DeleteOlderThan(ctx, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if _, err := svc.GetRun(ctx, "run-old"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("pruned run still present, err = %v", err)
	}

	// Outcomes must cascade.
	var count int
	if err := tdb.Conn.QueryRow(`SELECT COUNT(*) FROM outcomes WHERE run_id = 'run-old'`).Scan(&count); err != nil {
		t.Fatalf("counting outcomes: %v", err)
	}
	if count != 0 {
		t.Errorf("orphaned outcomes = %d, want 0", count)
	}
}
