package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/gradecast/gradecast/internal/config"
	"github.com/gradecast/gradecast/internal/scheduler"
	"github.com/gradecast/gradecast/internal/scrape"
)

// RegisterScrapeTask schedules the periodic station scrape cycle.
func RegisterScrapeTask(sched *scheduler.Scheduler, orchestrator *scrape.Orchestrator, cfg config.ScrapeConfig) error {
	interval := cfg.IntervalMinutes
	if interval <= 0 {
		interval = 10
	}

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "station-scrape",
		Name:        "Station Scrape",
		Description: "Captures now-playing and recent songs from the monitored stations",
		Cron:        fmt.Sprintf("*/%d * * * *", interval),
		RunOnStart:  true,
		Func: func(ctx context.Context) error {
			_, err := orchestrator.Run(ctx)
			if errors.Is(err, scrape.ErrAlreadyRunning) {
				return nil // previous cycle still going, skip this tick
			}
			return err
		},
	})
}
