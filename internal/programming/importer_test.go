package programming

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gradecast/gradecast/internal/database"
	"github.com/gradecast/gradecast/internal/testutil"
)

const sampleYAML = `
stations:
  - id: bh
    name: Radio BH FM
    url: http://bh.example/player
    now_playing_selector: "#now-playing"
    recent_selector: "ul.recent li"
    style: pop
  - id: clube
    name: Radio Clube
    url: http://clube.example
    regional: true
    enabled: false

sequences:
  - name: PADRAO
    default: true
    tokens: [bh, bh, clube]
  - name: TARDE POP
    weekdays: [1, 2, 3, 4, 5]
    start_time: "14:00"
    end_time: "18:00"
    priority: 10
    tokens: [bh, top50, bh]

fixed_contents:
  - name: Jornal
    filename_template: JORNAL_{DIA}_{HH}H
    day_pattern: WEEKDAYS
    time_slots: ["08:00", "12:00"]
    position_policy: start
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "programming.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParse(t *testing.T) {
	f, err := Parse(writeFile(t, sampleYAML))
	if err != nil {
		t.Fatal(err)
	}

	if len(f.Stations) != 2 || len(f.Sequences) != 2 || len(f.FixedContents) != 1 {
		t.Fatalf("unexpected counts: %d stations, %d sequences, %d fixed",
			len(f.Stations), len(f.Sequences), len(f.FixedContents))
	}
	if f.Stations[0].Enabled != nil {
		t.Fatal("absent enabled flag should stay nil")
	}
	if f.Stations[1].Enabled == nil || *f.Stations[1].Enabled {
		t.Fatal("explicit enabled: false not parsed")
	}
	if !f.Sequences[0].Default || f.Sequences[1].Priority != 10 {
		t.Fatalf("sequences parsed wrong: %+v", f.Sequences)
	}
}

func TestParseValidation(t *testing.T) {
	t.Run("MissingURL", func(t *testing.T) {
		_, err := Parse(writeFile(t, "stations:\n  - id: bh\n    name: BH\n"))
		if err == nil {
			t.Fatal("expected an error for a station without url")
		}
	})

	t.Run("DuplicateID", func(t *testing.T) {
		_, err := Parse(writeFile(t, `
stations:
  - {id: bh, url: http://a.example}
  - {id: bh, url: http://b.example}
`))
		if err == nil {
			t.Fatal("expected an error for duplicate station ids")
		}
	})

	t.Run("TwoDefaults", func(t *testing.T) {
		_, err := Parse(writeFile(t, `
sequences:
  - {name: A, default: true}
  - {name: B, default: true}
`))
		if err == nil {
			t.Fatal("expected an error for two default sequences")
		}
	})
}

func TestImportIfEmpty(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	imp := NewImporter(tdb.Store, testutil.NopLogger())
	ctx := context.Background()
	path := writeFile(t, sampleYAML)

	if err := imp.ImportIfEmpty(ctx, path); err != nil {
		t.Fatal(err)
	}

	stations, err := tdb.Store.ListStations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stations) != 2 {
		t.Fatalf("imported %d stations, want 2", len(stations))
	}

	sequences, err := tdb.Store.ListSequences(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sequences) != 2 {
		t.Fatalf("imported %d sequences, want 2", len(sequences))
	}

	// A populated database is left untouched on the next start.
	err = tdb.Store.UpsertStation(ctx, database.Station{
		ID: "extra", Name: "Extra", URL: "http://extra.example", Enabled: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := imp.ImportIfEmpty(ctx, path); err != nil {
		t.Fatal(err)
	}
	stations, err = tdb.Store.ListStations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stations) != 3 {
		t.Fatalf("second import touched a populated database: %d stations", len(stations))
	}
}

func TestImportIfEmptyMissingFile(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	imp := NewImporter(tdb.Store, testutil.NopLogger())

	err := imp.ImportIfEmpty(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
}
