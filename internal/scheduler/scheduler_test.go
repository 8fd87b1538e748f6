package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradecast/gradecast/internal/testutil"
)

func newScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(testutil.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestRegisterTask(t *testing.T) {
	s := newScheduler(t)

	err := s.RegisterTask(TaskConfig{
		ID:   "grade-build",
		Name: "Grade Block Build",
		Cron: "25,55 * * * *",
		Func: func(context.Context) error { return nil },
	})
	require.NoError(t, err)

	tasks := s.ListTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "grade-build", tasks[0].ID)
	assert.Equal(t, "25,55 * * * *", tasks[0].Cron)
	assert.Nil(t, tasks[0].LastRun)
	assert.False(t, tasks[0].Running)
}

func TestRegisterTaskDuplicateID(t *testing.T) {
	s := newScheduler(t)

	cfg := TaskConfig{
		ID:   "scrape",
		Name: "Scrape",
		Cron: "*/10 * * * *",
		Func: func(context.Context) error { return nil },
	}
	require.NoError(t, s.RegisterTask(cfg))
	assert.Error(t, s.RegisterTask(cfg))
}

func TestRegisterTaskBadCron(t *testing.T) {
	s := newScheduler(t)

	err := s.RegisterTask(TaskConfig{
		ID:   "bad",
		Name: "Bad",
		Cron: "not a cron",
		Func: func(context.Context) error { return nil },
	})
	assert.Error(t, err)
}

func TestRunNow(t *testing.T) {
	s := newScheduler(t)

	var runs atomic.Int32
	done := make(chan struct{})
	err := s.RegisterTask(TaskConfig{
		ID:   "once",
		Name: "Once",
		Cron: "0 0 1 1 *",
		Func: func(context.Context) error {
			runs.Add(1)
			close(done)
			return nil
		},
	})
	require.NoError(t, err)

	require.NoError(t, s.RunNow("once"))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
	assert.Equal(t, int32(1), runs.Load())

	assert.Error(t, s.RunNow("unknown"))
}

func TestRunOnStart(t *testing.T) {
	s := newScheduler(t)

	done := make(chan struct{})
	err := s.RegisterTask(TaskConfig{
		ID:         "startup",
		Name:       "Startup",
		Cron:       "0 0 1 1 *",
		RunOnStart: true,
		Func: func(context.Context) error {
			close(done)
			return nil
		},
	})
	require.NoError(t, err)

	s.Start()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunOnStart task never ran")
	}
}

func TestLastRunRecorded(t *testing.T) {
	s := newScheduler(t)

	done := make(chan struct{})
	err := s.RegisterTask(TaskConfig{
		ID:   "tracked",
		Name: "Tracked",
		Cron: "0 0 1 1 *",
		Func: func(context.Context) error {
			close(done)
			return nil
		},
	})
	require.NoError(t, err)
	require.NoError(t, s.RunNow("tracked"))
	<-done

	// lastRun is written after Func returns.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if info := s.ListTasks()[0]; info.LastRun != nil {
			assert.False(t, info.Running)
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("lastRun never recorded")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
