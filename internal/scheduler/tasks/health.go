package tasks

import (
	"context"

	"github.com/gradecast/gradecast/internal/health"
	"github.com/gradecast/gradecast/internal/scheduler"
)

// RegisterHealthTask schedules the periodic built-in health checks.
func RegisterHealthTask(sched *scheduler.Scheduler, svc *health.Service) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "health-check",
		Name:        "Health Check",
		Description: "Verifies database, library paths and the output folder",
		Cron:        "*/15 * * * *",
		RunOnStart:  true,
		Func: func(ctx context.Context) error {
			svc.Check(ctx)
			return nil
		},
	})
}
