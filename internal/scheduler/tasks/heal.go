package tasks

import (
	"context"

	"github.com/epgjanitor/epgjanitor/internal/config"
	"github.com/epgjanitor/epgjanitor/internal/janitor"
	"github.com/epgjanitor/epgjanitor/internal/scheduler"
)

// RegisterHealTask registers the scheduled scan & heal run.
func RegisterHealTask(sched *scheduler.Scheduler, svc *janitor.Service, cfg *config.JanitorConfig) error {
	if !cfg.AutoHeal {
		return nil // Task disabled, don't register
	}

	opts := janitor.RunOptions{}
	if cfg.AutoHealApply {
		// Scheduled runs have no interactive confirmation step; the
		// auto_heal_apply flag is that consent, given once in config.
		opts.Apply = true
		opts.Confirm = true
	}

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "scanheal",
		Name:        "Scan & Heal",
		Description: "Scans for channels whose guide assignment has no program data and heals them from the configured sources",
		Cron:        cfg.HealCron,
		RunOnStart:  false,
		Func: func(ctx context.Context) error {
			_, err := svc.RunScanHeal(ctx, opts)
			return err
		},
	})
}
