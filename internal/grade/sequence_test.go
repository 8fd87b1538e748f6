package grade

import (
	"testing"
	"time"

	"github.com/gradecast/gradecast/internal/database"
)

// 2026-08-28 is a Friday, 2026-08-29 a Saturday.
var (
	friday   = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
)

func TestActiveSequence(t *testing.T) {
	def := &database.Sequence{ID: 1, Name: "PADRAO", IsDefault: true, Enabled: true, Tokens: []string{"bh", "clube"}}
	morning := &database.Sequence{
		ID: 2, Name: "MANHA", Enabled: true, Priority: 5,
		Weekdays: []int{1, 2, 3, 4, 5}, StartTime: "06:00", EndTime: "10:00",
	}
	morningHigh := &database.Sequence{
		ID: 3, Name: "MANHA VIP", Enabled: true, Priority: 10,
		Weekdays: []int{5}, StartTime: "06:00", EndTime: "10:00",
	}
	disabled := &database.Sequence{
		ID: 4, Name: "OFF", Enabled: false, Priority: 99,
		StartTime: "06:00", EndTime: "10:00",
	}
	sequences := []*database.Sequence{def, morning, morningHigh, disabled}

	t.Run("HighestPriorityOverrideWins", func(t *testing.T) {
		got := ActiveSequence(sequences, friday, BlockTime{Hour: 8})
		if got == nil || got.Name != "MANHA VIP" {
			t.Fatalf("expected MANHA VIP, got %+v", got)
		}
	})

	t.Run("FallsBackToDefault", func(t *testing.T) {
		got := ActiveSequence(sequences, friday, BlockTime{Hour: 15})
		if got == nil || !got.IsDefault {
			t.Fatalf("expected default sequence, got %+v", got)
		}
	})

	t.Run("WeekdayFiltered", func(t *testing.T) {
		got := ActiveSequence(sequences, saturday, BlockTime{Hour: 8})
		if got == nil || !got.IsDefault {
			t.Fatalf("saturday should fall back to default, got %+v", got)
		}
	})

	t.Run("DisabledIgnored", func(t *testing.T) {
		got := ActiveSequence([]*database.Sequence{def, disabled}, friday, BlockTime{Hour: 8})
		if got == nil || !got.IsDefault {
			t.Fatalf("disabled override must not win, got %+v", got)
		}
	})

	t.Run("NoSequences", func(t *testing.T) {
		if got := ActiveSequence(nil, friday, BlockTime{Hour: 8}); got != nil {
			t.Fatalf("expected nil, got %+v", got)
		}
	})
}

func TestWindowContains(t *testing.T) {
	cases := []struct {
		start, end string
		bt         BlockTime
		want       bool
	}{
		{"06:00", "10:00", BlockTime{Hour: 6}, true},
		{"06:00", "10:00", BlockTime{Hour: 9, Minute: 30}, true},
		{"06:00", "10:00", BlockTime{Hour: 10}, false}, // end exclusive
		{"22:00", "02:00", BlockTime{Hour: 23}, true},  // wraps midnight
		{"22:00", "02:00", BlockTime{Hour: 1, Minute: 30}, true},
		{"22:00", "02:00", BlockTime{Hour: 12}, false},
		{"", "", BlockTime{Hour: 12}, true},          // unset matches all
		{"08:00", "08:00", BlockTime{Hour: 3}, true}, // degenerate covers day
	}
	for _, tc := range cases {
		if got := windowContains(tc.start, tc.end, tc.bt); got != tc.want {
			t.Errorf("windowContains(%q, %q, %s) = %v, want %v", tc.start, tc.end, tc.bt.Key(), got, tc.want)
		}
	}
}

func TestResolveFixedContent(t *testing.T) {
	jornal := &database.FixedContent{
		ID: 1, Name: "Jornal", FilenameTemplate: "JORNAL_{DIA}_{HH}H",
		DayPattern: "WEEKDAYS", TimeSlots: []string{"07:00", "12:00"}, PositionPolicy: "start", Enabled: true,
	}
	esporte := &database.FixedContent{
		ID: 2, Name: "Esporte", FilenameTemplate: "ESPORTE_{DD}",
		DayPattern: "ALL", TimeSlots: []string{"07:00"}, PositionPolicy: "end", Enabled: true,
	}
	items := []*database.FixedContent{jornal, esporte}

	t.Run("LowestIDWinsOnConflict", func(t *testing.T) {
		got := ResolveFixedContent(items, friday, BlockTime{Hour: 7})
		if got == nil || got.ID != 1 {
			t.Fatalf("expected item 1, got %+v", got)
		}
	})

	t.Run("DayPatternFilters", func(t *testing.T) {
		got := ResolveFixedContent(items, saturday, BlockTime{Hour: 7})
		if got == nil || got.ID != 2 {
			t.Fatalf("weekday-only item must not match saturday, got %+v", got)
		}
	})

	t.Run("NoClaim", func(t *testing.T) {
		if got := ResolveFixedContent(items, friday, BlockTime{Hour: 15}); got != nil {
			t.Fatalf("expected nil, got %+v", got)
		}
	})
}

func TestEditionNumber(t *testing.T) {
	item := &database.FixedContent{TimeSlots: []string{"07:00", "12:00", "18:00"}}
	if got := EditionNumber(item, BlockTime{Hour: 7}); got != 1 {
		t.Fatalf("expected edition 1, got %d", got)
	}
	if got := EditionNumber(item, BlockTime{Hour: 12}); got != 2 {
		t.Fatalf("expected edition 2, got %d", got)
	}
	if got := EditionNumber(item, BlockTime{Hour: 18}); got != 3 {
		t.Fatalf("expected edition 3, got %d", got)
	}
}
