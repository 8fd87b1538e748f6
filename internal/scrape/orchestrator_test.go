package scrape

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gradecast/gradecast/internal/config"
	"github.com/gradecast/gradecast/internal/database"
	"github.com/gradecast/gradecast/internal/pool"
	"github.com/gradecast/gradecast/internal/ranking"
	"github.com/gradecast/gradecast/internal/testutil"
)

type fakeFetcher struct {
	mu      sync.Mutex
	songs   map[string][]Song
	failing map[string]int // station id -> remaining failures
	calls   map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		songs:   make(map[string][]Song),
		failing: make(map[string]int),
		calls:   make(map[string]int),
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, st *database.Station) ([]Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[st.ID]++
	if f.failing[st.ID] > 0 {
		f.failing[st.ID]--
		return nil, errors.New("connection refused")
	}
	return f.songs[st.ID], nil
}

func (f *fakeFetcher) callCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func scrapeEnv(t *testing.T, cfg config.ScrapeConfig, fetcher Fetcher) (*Orchestrator, *database.Store) {
	t.Helper()
	tdb := testutil.NewTestDB(t)
	poolSvc := pool.NewService(tdb.Store, testutil.NopLogger())
	rankingSvc := ranking.NewService(tdb.Store, testutil.NopLogger())
	o := NewOrchestrator(cfg, tdb.Store, poolSvc, rankingSvc, fetcher, nil, testutil.NopLogger())
	return o, tdb.Store
}

func addStation(t *testing.T, store *database.Store, id, style string) {
	t.Helper()
	err := store.UpsertStation(context.Background(), database.Station{
		ID: id, Name: id, URL: "http://" + id + ".example", Enabled: true, Style: style,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRunIngestsPoolAndRanking(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.songs["bh"] = []Song{
		{Title: "Oceano", Artist: "Djavan", NowPlaying: true},
		{Title: "Garganta", Artist: "Ana Carolina"},
		{Title: "Vou Deixar", Artist: "Skank"},
	}

	o, store := scrapeEnv(t, config.ScrapeConfig{BatchSize: 3}, fetcher)
	addStation(t, store, "bh", "pop")

	res, err := o.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Succeeded != 1 || res.Failed != 0 || res.Songs != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}

	ctx := context.Background()
	entries, err := store.ListPoolByStation(ctx, "bh")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("pool has %d entries, want 3", len(entries))
	}

	// Only the now-playing song counts toward the ranking.
	top, err := store.TopRanking(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].Artist != "Djavan" || top[0].PlayCount != 1 {
		t.Fatalf("unexpected ranking: %+v", top)
	}
	if top[0].Style != "pop" {
		t.Fatalf("ranking style = %q, want pop", top[0].Style)
	}
}

func TestRunRetriesFailedStations(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.songs["bh"] = []Song{{Title: "Oceano", Artist: "Djavan", NowPlaying: true}}
	fetcher.failing["bh"] = 1 // fails once, succeeds on the retry pass

	o, store := scrapeEnv(t, config.ScrapeConfig{BatchSize: 3, RetryFailed: true}, fetcher)
	addStation(t, store, "bh", "pop")

	res, err := o.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if fetcher.callCount("bh") != 2 {
		t.Fatalf("station fetched %d times, want 2", fetcher.callCount("bh"))
	}
	if res.Succeeded != 1 || res.Failed != 0 || res.Songs != 1 {
		t.Fatalf("retry pass did not adjust counts: %+v", res)
	}
}

func TestRunCountsPersistentFailure(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.failing["down"] = 10

	o, store := scrapeEnv(t, config.ScrapeConfig{BatchSize: 3, RetryFailed: true}, fetcher)
	addStation(t, store, "down", "")

	res, err := o.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Succeeded != 0 || res.Failed != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRunSkipsDisabledStations(t *testing.T) {
	fetcher := newFakeFetcher()
	o, store := scrapeEnv(t, config.ScrapeConfig{BatchSize: 3}, fetcher)

	err := store.UpsertStation(context.Background(), database.Station{
		ID: "off", Name: "off", URL: "http://off.example", Enabled: false,
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := o.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Stations != 0 {
		t.Fatalf("disabled station included in cycle: %+v", res)
	}
	if fetcher.callCount("off") != 0 {
		t.Fatal("disabled station was fetched")
	}
}

func TestRunSingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fetcher := &blockingFetcher{started: started, release: release}

	o, store := scrapeEnv(t, config.ScrapeConfig{BatchSize: 3}, fetcher)
	addStation(t, store, "bh", "pop")

	done := make(chan struct{})
	go func() {
		o.Run(context.Background())
		close(done)
	}()
	<-started

	if _, err := o.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("concurrent run: err = %v, want ErrAlreadyRunning", err)
	}
	close(release)
	<-done
}

type blockingFetcher struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (f *blockingFetcher) Fetch(context.Context, *database.Station) ([]Song, error) {
	f.once.Do(func() { close(f.started) })
	<-f.release
	return nil, nil
}

func TestParseSong(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		artist string
		title  string
		ok     bool
	}{
		{"Plain", "Djavan - Oceano", "Djavan", "Oceano", true},
		{"ExtraDashStaysInTitle", "Banda X - Ao Vivo - Parte 2", "Banda X", "Ao Vivo - Parte 2", true},
		{"Whitespace", "  Skank  -  Vou Deixar  ", "Skank", "Vou Deixar", true},
		{"NoSeparator", "Intervalo comercial", "", "", false},
		{"EmptyArtist", " - Oceano", "", "", false},
		{"Empty", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			song, ok := parseSong(tt.text)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if song.Artist != tt.artist || song.Title != tt.title {
				t.Fatalf("got %q / %q, want %q / %q", song.Artist, song.Title, tt.artist, tt.title)
			}
		})
	}
}
