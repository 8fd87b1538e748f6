package tasks

import (
	"context"

	"github.com/gradecast/gradecast/internal/downloader"
	"github.com/gradecast/gradecast/internal/scheduler"
)

// RegisterDownloadTask schedules the periodic download queue drain. The
// queue itself guarantees only one drain runs at once, so an overlapping
// tick is harmless.
func RegisterDownloadTask(sched *scheduler.Scheduler, queue *downloader.Queue) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "download-drain",
		Name:        "Download Queue Drain",
		Description: "Downloads pending missing songs in urgency order",
		Cron:        "*/5 * * * *",
		Func: func(ctx context.Context) error {
			queue.Drain(ctx)
			return nil
		},
	})
}
