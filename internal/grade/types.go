// Package grade builds the daily broadcast schedule: 48 half-hour blocks
// per weekday, one line per block, consumed by the on-air automation
// software.
package grade

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BlockTime identifies one half-hour block of the grade.
type BlockTime struct {
	Hour   int
	Minute int
}

// ParseBlockTime parses "HH:MM" into a BlockTime.
func ParseBlockTime(s string) (BlockTime, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return BlockTime{}, fmt.Errorf("invalid block time %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return BlockTime{}, fmt.Errorf("invalid block time %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return BlockTime{}, fmt.Errorf("invalid block time %q", s)
	}
	return BlockTime{Hour: hour, Minute: minute}, nil
}

// Key renders the canonical "HH:MM" key.
func (b BlockTime) Key() string {
	return fmt.Sprintf("%02d:%02d", b.Hour, b.Minute)
}

// MinuteOfDay returns minutes since midnight.
func (b BlockTime) MinuteOfDay() int {
	return b.Hour*60 + b.Minute
}

// AllBlockTimes returns the 48 half-hour blocks of a full day in order.
func AllBlockTimes() []BlockTime {
	blocks := make([]BlockTime, 0, 48)
	for hour := 0; hour < 24; hour++ {
		blocks = append(blocks, BlockTime{Hour: hour}, BlockTime{Hour: hour, Minute: 30})
	}
	return blocks
}

// NextBlockTime returns the block boundary at or after now+lead.
func NextBlockTime(now time.Time, lead time.Duration) BlockTime {
	t := now.Add(lead)
	if t.Minute() == 0 || t.Minute() == 30 {
		return BlockTime{Hour: t.Hour(), Minute: t.Minute()}
	}
	if t.Minute() < 30 {
		return BlockTime{Hour: t.Hour(), Minute: 30}
	}
	return BlockTime{Hour: (t.Hour() + 1) % 24}
}

// Decision outcomes recorded per position for observability.
const (
	OutcomeUsed        = "used"
	OutcomeSubstituted = "substituted"
	OutcomeFixed       = "fixed"
	OutcomeMissing     = "missing"
	OutcomeFiller      = "filler"
)

// Decision records what happened at one position of a block.
type Decision struct {
	Position int    `json:"position"`
	Source   string `json:"source"`
	Artist   string `json:"artist,omitempty"`
	Title    string `json:"title,omitempty"`
	Outcome  string `json:"outcome"`
	Tier     int    `json:"tier,omitempty"`
}

// BlockResult is the outcome of generating one block.
type BlockResult struct {
	Time      BlockTime  `json:"time"`
	Program   string     `json:"program"`
	Line      string     `json:"line"`
	Decisions []Decision `json:"decisions"`
	Processed int        `json:"songsProcessed"`
	Found     int        `json:"songsFound"`
	Missing   int        `json:"songsMissing"`
}

// DayResult is the outcome of a full-day build.
type DayResult struct {
	Weekday   time.Weekday   `json:"-"`
	Blocks    []*BlockResult `json:"blocks"`
	Processed int            `json:"songsProcessed"`
	Found     int            `json:"songsFound"`
	Missing   int            `json:"songsMissing"`
}

var weekdayCodes = [7]string{"DOM", "SEG", "TER", "QUA", "QUI", "SEX", "SAB"}

// WeekdayCode returns the 3-letter schedule file code for a weekday.
func WeekdayCode(d time.Weekday) string {
	return weekdayCodes[int(d)]
}
