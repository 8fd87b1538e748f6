package grade

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MergeWriter persists generated lines into per-weekday schedule files,
// leaving blocks it did not regenerate untouched.
type MergeWriter struct {
	folder string
}

// NewMergeWriter creates a writer rooted at the output folder.
func NewMergeWriter(folder string) *MergeWriter {
	return &MergeWriter{folder: folder}
}

// FilePath returns the schedule file path for a weekday (e.g. SEX.txt).
func (w *MergeWriter) FilePath(d time.Weekday) string {
	return filepath.Join(w.folder, WeekdayCode(d)+".txt")
}

// Merge writes the given lines (keyed "HH:MM") into the weekday's file.
// Existing lines for other keys are preserved; the result is sorted
// ascending by time key and written atomically. An empty lines map leaves
// the file byte-identical.
func (w *MergeWriter) Merge(d time.Weekday, lines map[string]string) error {
	existing, err := w.Read(d)
	if err != nil {
		return err
	}

	for key, line := range lines {
		existing[key] = line
	}

	keys := make([]string, 0, len(existing))
	for key := range existing {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(existing[key])
		b.WriteString("\n")
	}

	return w.writeAtomic(w.FilePath(d), b.String())
}

// Read parses the weekday's file into a map keyed by the leading "HH:MM"
// token. A missing file yields an empty map. Lines without a valid time
// key are dropped.
func (w *MergeWriter) Read(d time.Weekday) (map[string]string, error) {
	lines := make(map[string]string)

	f, err := os.Open(w.FilePath(d))
	if err != nil {
		if os.IsNotExist(err) {
			return lines, nil
		}
		return nil, fmt.Errorf("read schedule file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		key := timeKeyOf(line)
		if key == "" {
			continue
		}
		lines[key] = line
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read schedule file: %w", err)
	}

	return lines, nil
}

// timeKeyOf extracts the leading "HH:MM" key of a schedule line, or "".
func timeKeyOf(line string) string {
	if len(line) < 5 {
		return ""
	}
	prefix := line[:5]
	if _, err := ParseBlockTime(prefix); err != nil {
		return ""
	}
	return prefix
}

// writeAtomic writes via a temp file and rename so a failed write never
// clobbers the previous schedule.
func (w *MergeWriter) writeAtomic(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create schedule folder: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".grade-*.tmp")
	if err != nil {
		return fmt.Errorf("write schedule file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write schedule file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write schedule file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write schedule file: %w", err)
	}
	return nil
}
