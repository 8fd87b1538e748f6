package grade

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gradecast/gradecast/internal/testutil"
)

type captureHub struct {
	mu     sync.Mutex
	events []string
}

func (h *captureHub) Broadcast(msgType string, _ interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, msgType)
	return nil
}

func (h *captureHub) has(msgType string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.events {
		if e == msgType {
			return true
		}
	}
	return false
}

func newServiceEnv(t *testing.T) (*Service, *generatorEnv, *captureHub) {
	t.Helper()
	cfg := baseConfig()
	env := newGeneratorEnv(t, cfg, &fakeChecker{all: true})
	env.seedStation(t, "bh", "pop", false,
		[2]string{"Djavan", "Oceano"}, [2]string{"Ana Carolina", "Garganta"},
		[2]string{"Skank", "Vou Deixar"})
	env.seedDefaultSequence(t, "bh")

	hub := &captureHub{}
	writer := NewMergeWriter(t.TempDir())
	svc := NewService(cfg, env.store, env.gen, writer, hub, testutil.NopLogger())
	return svc, env, hub
}

func TestBuildBlockAtMergesLine(t *testing.T) {
	svc, _, hub := newServiceEnv(t)
	ctx := context.Background()

	res, err := svc.BuildBlockAt(ctx, friday, BlockTime{Hour: 9, Minute: 30})
	if err != nil {
		t.Fatal(err)
	}

	lines, err := svc.ReadDay(time.Friday)
	if err != nil {
		t.Fatal(err)
	}
	if lines["09:30"] != res.Line {
		t.Fatalf("file line %q, result line %q", lines["09:30"], res.Line)
	}
	if len(lines) != 1 {
		t.Fatalf("merge wrote %d lines, want 1", len(lines))
	}
	if !hub.has(EventBlockBuilt) {
		t.Fatal("block built event not broadcast")
	}

	history, err := svc.History(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Block != "09:30" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestBuildBlockAtPreservesOtherLines(t *testing.T) {
	svc, _, _ := newServiceEnv(t)
	ctx := context.Background()

	if _, err := svc.BuildBlockAt(ctx, friday, BlockTime{Hour: 9}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.BuildBlockAt(ctx, friday, BlockTime{Hour: 14}); err != nil {
		t.Fatal(err)
	}

	lines, err := svc.ReadDay(time.Friday)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines["09:00"] == "" || lines["14:00"] == "" {
		t.Fatalf("a block line went missing: %v", lines)
	}
}

func TestBuildUpcoming(t *testing.T) {
	svc, _, _ := newServiceEnv(t)
	ctx := context.Background()

	// 09:24 with a 5 minute lead targets the 09:30 block.
	now := time.Date(2026, 8, 28, 9, 24, 0, 0, time.UTC)
	res, err := svc.BuildUpcoming(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if res == nil || res.Time.Key() != "09:30" {
		t.Fatalf("unexpected block: %+v", res)
	}

	// Firing again inside the same lead window is a no-op.
	again, err := svc.BuildUpcoming(ctx, now.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if again != nil {
		t.Fatalf("duplicate trigger rebuilt the block: %+v", again)
	}
}

func TestBuildUpcomingMidnightRollover(t *testing.T) {
	svc, _, _ := newServiceEnv(t)

	// 23:40 on Friday with a 5 minute lead targets Saturday 00:00.
	now := time.Date(2026, 8, 28, 23, 40, 0, 0, time.UTC)
	res, err := svc.BuildUpcoming(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if res == nil || res.Time.Key() != "00:00" {
		t.Fatalf("unexpected block: %+v", res)
	}

	// The line landed in Saturday's file, not Friday's.
	satLines, err := svc.ReadDay(time.Saturday)
	if err != nil {
		t.Fatal(err)
	}
	if satLines["00:00"] == "" {
		t.Fatal("block missing from the next day's file")
	}
	if _, err := os.Stat(svc.FilePath(time.Friday)); !os.IsNotExist(err) {
		t.Fatal("rollover block written to the current day's file")
	}
}

func TestServiceBuildFullDay(t *testing.T) {
	svc, _, hub := newServiceEnv(t)

	res, err := svc.BuildFullDay(context.Background(), friday)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Blocks) != 48 {
		t.Fatalf("built %d blocks", len(res.Blocks))
	}

	lines, err := svc.ReadDay(time.Friday)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 48 {
		t.Fatalf("file has %d lines, want 48", len(lines))
	}
	if !hub.has(EventFullDayStarted) || !hub.has(EventFullDayCompleted) {
		t.Fatal("full day events not broadcast")
	}
}
