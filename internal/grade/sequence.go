package grade

import (
	"time"

	"github.com/gradecast/gradecast/internal/database"
)

// ActiveSequence picks the sequence governing a block: the highest-priority
// enabled override whose weekday and time window contain the block time,
// falling back to the default sequence, then nil.
func ActiveSequence(sequences []*database.Sequence, day time.Time, bt BlockTime) *database.Sequence {
	var def *database.Sequence
	var best *database.Sequence

	for _, seq := range sequences {
		if seq.IsDefault {
			if def == nil {
				def = seq
			}
			continue
		}
		if !seq.Enabled {
			continue
		}
		if !weekdayMatches(seq.Weekdays, day.Weekday()) {
			continue
		}
		if !windowContains(seq.StartTime, seq.EndTime, bt) {
			continue
		}
		if best == nil || seq.Priority > best.Priority {
			best = seq
		}
	}

	if best != nil {
		return best
	}
	return def
}

func weekdayMatches(weekdays []int, d time.Weekday) bool {
	if len(weekdays) == 0 {
		return true
	}
	for _, w := range weekdays {
		if w == int(d) {
			return true
		}
	}
	return false
}

// windowContains checks "HH:MM" start/end membership, supporting windows
// that wrap past midnight (e.g. 22:00-02:00). An unset window matches
// every block. Start is inclusive, end exclusive.
func windowContains(start, end string, bt BlockTime) bool {
	if start == "" || end == "" {
		return true
	}
	s, err := ParseBlockTime(start)
	if err != nil {
		return false
	}
	e, err := ParseBlockTime(end)
	if err != nil {
		return false
	}

	m := bt.MinuteOfDay()
	sm, em := s.MinuteOfDay(), e.MinuteOfDay()

	if sm == em {
		return true // degenerate window covers the whole day
	}
	if sm < em {
		return m >= sm && m < em
	}
	return m >= sm || m < em
}

// ResolveFixedContent finds the fixed-content item claiming a time slot for
// the given day, if any. When several enabled items claim the same slot the
// lowest id wins; items are stored id-ordered so the first match is taken.
func ResolveFixedContent(items []*database.FixedContent, day time.Time, bt BlockTime) *database.FixedContent {
	for _, item := range items {
		if !item.Enabled {
			continue
		}
		if !dayPatternMatches(item.DayPattern, day.Weekday()) {
			continue
		}
		for _, slot := range item.TimeSlots {
			st, err := ParseBlockTime(slot)
			if err != nil {
				continue
			}
			if st == bt {
				return item
			}
		}
	}
	return nil
}

// FixedContentByID finds an enabled item by id for `fixo_<id>` source tokens.
func FixedContentByID(items []*database.FixedContent, id int64) *database.FixedContent {
	for _, item := range items {
		if item.ID == id && item.Enabled {
			return item
		}
	}
	return nil
}

// EditionNumber is the 1-based index of bt among the item's slots within a
// day, used for the {ED} template placeholder.
func EditionNumber(item *database.FixedContent, bt BlockTime) int {
	edition := 1
	for _, slot := range item.TimeSlots {
		st, err := ParseBlockTime(slot)
		if err != nil {
			continue
		}
		if st == bt {
			return edition
		}
		if st.MinuteOfDay() < bt.MinuteOfDay() {
			edition++
		}
	}
	return edition
}

func dayPatternMatches(pattern string, d time.Weekday) bool {
	switch pattern {
	case "WEEKDAYS":
		return d >= time.Monday && d <= time.Friday
	case "WEEKEND":
		return d == time.Saturday || d == time.Sunday
	default: // "ALL"
		return true
	}
}
