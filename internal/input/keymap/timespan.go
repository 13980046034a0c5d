package keymap

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Timeouts are stored as constant-format time spans,
// "[-][d.]hh:mm:ss[.fffffff]", with 100ns ticks in the fraction.

const (
	tick         = 100 * time.Nanosecond
	ticksPerSec  = int64(time.Second / tick)
	ticksPerMin  = 60 * ticksPerSec
	ticksPerHour = 60 * ticksPerMin
	ticksPerDay  = 24 * ticksPerHour
)

var timeSpanPattern = regexp.MustCompile(`^(-)?(?:(\d+)\.)?(\d{1,2}):(\d{1,2}):(\d{1,2})(?:\.(\d{1,7}))?$`)

// formatTimeSpan renders d as a time span. Sub-tick precision is truncated.
func formatTimeSpan(d time.Duration) string {
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}

	ticks := int64(d / tick)
	days := ticks / ticksPerDay
	ticks %= ticksPerDay
	hours := ticks / ticksPerHour
	ticks %= ticksPerHour
	minutes := ticks / ticksPerMin
	ticks %= ticksPerMin
	seconds := ticks / ticksPerSec
	fraction := ticks % ticksPerSec

	if days > 0 {
		fmt.Fprintf(&b, "%d.", days)
	}
	fmt.Fprintf(&b, "%02d:%02d:%02d", hours, minutes, seconds)
	if fraction != 0 {
		fmt.Fprintf(&b, ".%07d", fraction)
	}
	return b.String()
}

// parseTimeSpan parses a time span produced by formatTimeSpan.
func parseTimeSpan(s string) (time.Duration, error) {
	m := timeSpanPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, s)
	}

	field := func(v string) int64 {
		if v == "" {
			return 0
		}
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}

	days, hours, minutes, seconds := field(m[2]), field(m[3]), field(m[4]), field(m[5])
	if hours > 23 || minutes > 59 || seconds > 59 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidTimeout, s)
	}
	fraction := field(m[6] + strings.Repeat("0", 7-len(m[6])))

	ticks := days*ticksPerDay + hours*ticksPerHour + minutes*ticksPerMin + seconds*ticksPerSec + fraction
	d := time.Duration(ticks) * tick
	if m[1] == "-" {
		d = -d
	}
	return d, nil
}
