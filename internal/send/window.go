// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package send

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// ParseWindow parses "<N>h" or "<N>d" (case-insensitive, N > 0).
func ParseWindow(s string) (time.Duration, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if len(v) >= 2 {
		n, err := strconv.Atoi(v[:len(v)-1])
		if err == nil && n > 0 {
			switch v[len(v)-1] {
			case 'h':
				return time.Duration(n) * time.Hour, nil
			case 'd':
				return time.Duration(n) * day, nil
			}
		}
	}
	return 0, fmt.Errorf("invalid window format: %q; use a format like '24h' or '1d'", v)
}

// ComputeWindow returns the send window of length dur ending at or before
// now in loc. Whole-day windows end at local midnight; other windows end
// at the top of the current hour. Every trigger inside the same hour (or
// day) therefore produces the same window.
func ComputeWindow(now time.Time, loc *time.Location, dur time.Duration) (start, end time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	n := now.In(loc)
	if dur > 0 && dur%day == 0 {
		end = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
		return end.AddDate(0, 0, -int(dur/day)), end
	}
	end = time.Date(n.Year(), n.Month(), n.Day(), n.Hour(), 0, 0, 0, loc)
	return end.Add(-dur), end
}
