package tasks

import (
	"context"
	"time"

	"github.com/epgjanitor/epgjanitor/internal/history"
	"github.com/epgjanitor/epgjanitor/internal/scheduler"
)

const HistoryCleanupTaskID = "history-cleanup"

// historyRetention is how long stored runs are kept.
const historyRetention = 90 * 24 * time.Hour

// RegisterHistoryCleanupTask registers the run-history cleanup task.
// It runs daily at 2 AM and deletes runs older than the retention period.
func RegisterHistoryCleanupTask(sched *scheduler.Scheduler, historyService *history.Service) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          HistoryCleanupTaskID,
		Name:        "History Cleanup",
		Description: "Deletes stored runs older than the retention period",
		Cron:        "0 2 * * *",
		RunOnStart:  false,
		Func: func(ctx context.Context) error {
			_, err := historyService.DeleteOlderThan(ctx, time.Now().Add(-historyRetention))
			return err
		},
	})
}
