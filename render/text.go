package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// Ellipsis marks a truncated label
const Ellipsis = "..."

// FormatTime renders d as HH:MM:SS rounded to the nearest second.
// Negative durations render as zero.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

// Remaining is duration minus position, floored at zero
func Remaining(position, duration time.Duration) time.Duration {
	if rem := duration - position; rem > 0 {
		return rem
	}
	return 0
}

// Truncate shortens s to budget cells, ending in an ellipsis when cut.
// Labels that fit are returned unchanged.
func Truncate(s string, budget int) string {
	if ansi.PrintableRuneWidth(s) <= budget {
		return s
	}
	return truncate.StringWithTail(s, uint(budget), Ellipsis)
}

// Wrap truncates label to budget then breaks it into lines no wider than
// width, preferring word boundaries and hard-breaking long words.
func Wrap(label string, budget, width int) []string {
	label = strings.TrimSpace(Truncate(label, budget))
	if label == "" {
		return nil
	}
	wrapped := wrap.String(wordwrap.String(label, width), width)

	var lines []string
	for _, line := range strings.Split(wrapped, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
