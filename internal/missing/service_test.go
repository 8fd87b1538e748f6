package missing

import (
	"context"
	"testing"

	"github.com/gradecast/gradecast/internal/database"
	"github.com/gradecast/gradecast/internal/ranking"
	"github.com/gradecast/gradecast/internal/testutil"
)

type captureEnqueuer struct {
	songs []*database.MissingSong
}

func (e *captureEnqueuer) Enqueue(song *database.MissingSong) {
	e.songs = append(e.songs, song)
}

func newService(t *testing.T) (*Service, *database.Store, *captureEnqueuer) {
	t.Helper()
	tdb := testutil.NewTestDB(t)
	svc := NewService(tdb.Store, ranking.NewService(tdb.Store, testutil.NopLogger()), testutil.NopLogger())
	enq := &captureEnqueuer{}
	svc.SetEnqueuer(enq)
	return svc, tdb.Store, enq
}

func TestReport(t *testing.T) {
	svc, store, enq := newService(t)
	ctx := context.Background()

	if err := svc.Report(ctx, "Oceano", "Djavan", "bh"); err != nil {
		t.Fatal(err)
	}

	song, err := store.GetMissingBySong(ctx, "Djavan", "Oceano")
	if err != nil {
		t.Fatal(err)
	}
	if song.Status != database.MissingStatusMissing || song.StationID != "bh" {
		t.Fatalf("unexpected record: %+v", song)
	}
	if song.ID == "" {
		t.Fatal("missing song got no id")
	}
	if len(enq.songs) != 1 || enq.songs[0].ID != song.ID {
		t.Fatalf("song not handed to the queue: %+v", enq.songs)
	}
}

func TestReportDeduplicates(t *testing.T) {
	svc, store, enq := newService(t)
	ctx := context.Background()

	if err := svc.Report(ctx, "Oceano", "Djavan", "bh"); err != nil {
		t.Fatal(err)
	}
	// Accent and case variants hit the same record.
	if err := svc.Report(ctx, "OCEANO", "DJAVAN", "band"); err != nil {
		t.Fatal(err)
	}

	songs, err := store.ListMissing(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(songs) != 1 {
		t.Fatalf("got %d records, want 1", len(songs))
	}
	if songs[0].StationID != "bh" {
		t.Fatalf("duplicate report replaced the original: %+v", songs[0])
	}
	if len(enq.songs) != 1 {
		t.Fatalf("duplicate report reached the queue: %d", len(enq.songs))
	}
}

func TestReportRejectsBlankSong(t *testing.T) {
	svc, _, _ := newService(t)
	if err := svc.Report(context.Background(), "", "Djavan", "bh"); err == nil {
		t.Fatal("expected an error for a blank title")
	}
	if err := svc.Report(context.Background(), "Oceano", "", "bh"); err == nil {
		t.Fatal("expected an error for a blank artist")
	}
}

func TestUrgencyScoring(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	err := store.UpsertStation(ctx, database.Station{
		ID: "vip", Name: "VIP", URL: "http://vip.example", Enabled: true, PrioritizeDownloads: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = store.UpsertStation(ctx, database.Station{
		ID: "bh", Name: "BH", URL: "http://bh.example", Enabled: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Top of the ranking: position 0.
	for i := 0; i < 5; i++ {
		if err := store.IncrementRanking(ctx, "Oceano", "Djavan", "pop"); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.IncrementRanking(ctx, "Garganta", "Ana Carolina", "pop"); err != nil {
		t.Fatal(err)
	}

	t.Run("RankedWithBoost", func(t *testing.T) {
		if err := svc.Report(ctx, "Oceano", "Djavan", "vip"); err != nil {
			t.Fatal(err)
		}
		song, err := store.GetMissingBySong(ctx, "Djavan", "Oceano")
		if err != nil {
			t.Fatal(err)
		}
		if song.Urgency != 150 {
			t.Fatalf("urgency = %d, want 150", song.Urgency)
		}
	})

	t.Run("RankedOnly", func(t *testing.T) {
		if err := svc.Report(ctx, "Garganta", "Ana Carolina", "bh"); err != nil {
			t.Fatal(err)
		}
		song, err := store.GetMissingBySong(ctx, "Ana Carolina", "Garganta")
		if err != nil {
			t.Fatal(err)
		}
		if song.Urgency != 49 {
			t.Fatalf("urgency = %d, want 49", song.Urgency)
		}
	})

	t.Run("Unranked", func(t *testing.T) {
		if err := svc.Report(ctx, "Sorte Grande", "Ivete Sangalo", "bh"); err != nil {
			t.Fatal(err)
		}
		song, err := store.GetMissingBySong(ctx, "Ivete Sangalo", "Sorte Grande")
		if err != nil {
			t.Fatal(err)
		}
		if song.Urgency != 0 {
			t.Fatalf("urgency = %d, want 0", song.Urgency)
		}
	})
}

func TestUpdateStatusValidation(t *testing.T) {
	svc, _, _ := newService(t)
	if err := svc.UpdateStatus(context.Background(), "x", "torrenting"); err == nil {
		t.Fatal("expected an error for an unknown status")
	}
	if err := svc.UpdateStatus(context.Background(), "x", database.MissingStatusDownloaded); err != nil {
		t.Fatal(err)
	}
}

func TestClear(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	if err := svc.Report(ctx, "Oceano", "Djavan", ""); err != nil {
		t.Fatal(err)
	}
	if err := svc.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	songs, err := store.ListMissing(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(songs) != 0 {
		t.Fatalf("clear left %d records", len(songs))
	}
}
