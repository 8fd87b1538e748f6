// Package tasks registers the recurring background jobs.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/gradecast/gradecast/internal/config"
	"github.com/gradecast/gradecast/internal/grade"
	"github.com/gradecast/gradecast/internal/scheduler"
)

// RegisterGradeTask schedules the incremental block build shortly before
// each half-hour boundary.
func RegisterGradeTask(sched *scheduler.Scheduler, svc *grade.Service, cfg config.GenerationConfig) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "grade-build",
		Name:        "Grade Block Build",
		Description: "Builds the upcoming half-hour block and merges it into the weekday file",
		Cron:        gradeCron(cfg.LeadMinutes),
		RunOnStart:  true,
		Func: func(ctx context.Context) error {
			_, err := svc.BuildUpcoming(ctx, time.Now())
			return err
		},
	})
}

// gradeCron fires lead minutes before every :00 and :30 boundary, e.g.
// a 5 minute lead yields "25,55 * * * *".
func gradeCron(leadMinutes int) string {
	if leadMinutes < 0 || leadMinutes >= 30 {
		leadMinutes = 5
	}
	if leadMinutes == 0 {
		return "0,30 * * * *"
	}
	return fmt.Sprintf("%d,%d * * * *", 30-leadMinutes, 60-leadMinutes)
}
