package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gradecast/gradecast/internal/testutil"
)

func writeSongs(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func newChecker(t *testing.T, dirs ...string) *FilesystemChecker {
	t.Helper()
	return NewFilesystemChecker(Config{SearchPaths: dirs}, testutil.NopLogger())
}

func TestFilesystemChecker(t *testing.T) {
	dir := t.TempDir()
	writeSongs(t, dir,
		"DJAVAN - OCEANO.mp3",
		"Chitãozinho e Xororó - Evidências.flac",
		"notas.txt",
	)
	c := newChecker(t, dir)
	ctx := context.Background()

	tests := []struct {
		name   string
		artist string
		title  string
		want   bool
	}{
		{"ExactName", "Djavan", "Oceano", true},
		{"AccentVariant", "Chitaozinho e Xororo", "Evidencias", true},
		{"Absent", "Skank", "Vou Deixar", false},
		{"NonAudioIgnored", "notas", "txt", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Exists(ctx, tt.artist, tt.title)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("Exists(%q, %q) = %v, want %v", tt.artist, tt.title, got, tt.want)
			}
		})
	}
}

func TestFilesystemCheckerSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "mpb")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeSongs(t, sub, "ANA CAROLINA - GARGANTA.mp3")

	c := newChecker(t, dir)
	ok, err := c.Exists(context.Background(), "Ana Carolina", "Garganta")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("song in a subdirectory not found")
	}
}

func TestFilesystemCheckerCacheAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	writeSongs(t, dir, "SKANK - VOU DEIXAR.mp3")
	c := newChecker(t, dir)
	ctx := context.Background()

	ok, err := c.Exists(ctx, "Djavan", "Oceano")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("absent song reported present")
	}

	// The cached listing hides a file added afterwards until invalidated.
	writeSongs(t, dir, "DJAVAN - OCEANO.mp3")
	ok, err = c.Exists(ctx, "Djavan", "Oceano")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("stale cache unexpectedly refreshed")
	}

	c.Invalidate()
	ok, err = c.Exists(ctx, "Djavan", "Oceano")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("song not found after invalidate")
	}
}

func TestFilesystemCheckerCancelled(t *testing.T) {
	dir := t.TempDir()
	writeSongs(t, dir, "DJAVAN - OCEANO.mp3")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newChecker(t, dir)
	if _, err := c.Exists(ctx, "Djavan", "Oceano"); err == nil {
		t.Fatal("expected a context error")
	}
}

func TestFilesystemCheckerCacheTTL(t *testing.T) {
	dir := t.TempDir()
	c := NewFilesystemChecker(Config{SearchPaths: []string{dir}, CacheTTL: time.Nanosecond}, testutil.NopLogger())
	ctx := context.Background()

	if _, err := c.Exists(ctx, "Djavan", "Oceano"); err != nil {
		t.Fatal(err)
	}
	writeSongs(t, dir, "DJAVAN - OCEANO.mp3")
	time.Sleep(time.Millisecond)

	ok, err := c.Exists(ctx, "Djavan", "Oceano")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expired cache not refreshed")
	}
}

func TestNoopChecker(t *testing.T) {
	ok, err := NoopChecker{}.Exists(context.Background(), "Anyone", "Anything")
	if err != nil || !ok {
		t.Fatalf("got %v, %v", ok, err)
	}
}
