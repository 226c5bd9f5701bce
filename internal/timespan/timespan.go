// Package timespan parses the compact time-window strings used throughout
// triage configuration, such as "30m", "2h", "3d", and "1w".
//
// The supported units are minutes, hours, days, and weeks. Parsing happens
// at construction time, before any task is processed, so a malformed window
// surfaces immediately instead of mid-run.
package timespan

import (
	"fmt"
	"strconv"
	"time"
)

// Forever is a window longer than any elapsed time the engine will observe.
// It is used where a predicate should only pass when no matching activity
// exists at all.
const Forever = time.Duration(1<<63 - 1)

var unitToDuration = map[byte]time.Duration{
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
}

// Parse converts a window string such as "2h" or "3w" into a duration.
func Parse(window string) (time.Duration, error) {
	if len(window) < 2 {
		return 0, fmt.Errorf("parse time window %q: too short", window)
	}
	unit := window[len(window)-1]
	base, ok := unitToDuration[unit]
	if !ok {
		return 0, fmt.Errorf("parse time window %q: unknown unit %q", window, string(unit))
	}
	multiple, err := strconv.Atoi(window[:len(window)-1])
	if err != nil {
		return 0, fmt.Errorf("parse time window %q: %w", window, err)
	}
	if multiple < 0 {
		return 0, fmt.Errorf("parse time window %q: negative multiple", window)
	}
	return time.Duration(multiple) * base, nil
}

// MustParse is Parse for hard-coded windows in rule definitions. It panics
// on malformed input.
func MustParse(window string) time.Duration {
	d, err := Parse(window)
	if err != nil {
		panic(err)
	}
	return d
}
