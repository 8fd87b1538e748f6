package grade

import (
	"fmt"
	"strings"
	"time"

	"github.com/gradecast/gradecast/internal/songtext"
)

// tokenSeparator joins block tokens; "vht" is the automation software's
// transition cue between tracks.
const tokenSeparator = ",vht,"

// MusicToken renders a song as a quoted sanitized filename token.
func MusicToken(artist, title string) string {
	return `"` + songtext.SanitizeFilename(artist, title) + `"`
}

// BuildLine assembles one schedule line: `HH:MM (ID=<PROGRAM>) tok1,vht,tok2`.
// Filler and fixed tokens stay unquoted; an empty token list yields the
// header only.
func BuildLine(bt BlockTime, program string, tokens []string) string {
	header := fmt.Sprintf("%s (ID=%s)", bt.Key(), program)
	if len(tokens) == 0 {
		return header
	}
	return header + " " + strings.Join(tokens, tokenSeparator)
}

// RenderTemplate fills the fixed-content filename placeholders:
// {HH} block hour, {DIA} weekday code, {DD} day of month, {ED} edition
// (1-based slot index within the day).
func RenderTemplate(template string, bt BlockTime, day time.Time, edition int) string {
	r := strings.NewReplacer(
		"{HH}", fmt.Sprintf("%02d", bt.Hour),
		"{DIA}", WeekdayCode(day.Weekday()),
		"{DD}", fmt.Sprintf("%02d", day.Day()),
		"{ED}", fmt.Sprintf("%d", edition),
	)
	return r.Replace(template)
}

// spliceFixed inserts a fixed-content token into the music token list at
// the item's position policy.
func spliceFixed(tokens []string, fixed string, policy string) []string {
	switch policy {
	case "end":
		return append(tokens, fixed)
	case "middle":
		mid := len(tokens) / 2
		out := make([]string, 0, len(tokens)+1)
		out = append(out, tokens[:mid]...)
		out = append(out, fixed)
		return append(out, tokens[mid:]...)
	default: // "start"
		return append([]string{fixed}, tokens...)
	}
}
