package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reservasRegex  = regexp.MustCompile(`(?i)fecha:\s*(.+?)\s+hora:\s*(.+)$`)
	timeRangeRegex = regexp.MustCompile(`(?i)^\s*(\d{1,2}):(\d{2})\s*(AM|PM)?\s*-\s*(\d{1,2}):(\d{2})\s*(AM|PM)?\s*$`)
)

// dateLayouts covers the date spellings observed in order properties over the
// product's history. Tried in order; all days resolve to UTC midnight.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	// RFC3339 values occasionally slip in; only the day matters.
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		y, m, d := t.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date format")
}

// parseTimeRange parses "H:MM AM/PM - H:MM AM/PM" into offsets from midnight.
//
// Meridiem markers are captured per endpoint before any stripping, so ranges
// that cross noon keep both sides correct. An endpoint without its own marker
// inherits the other side's; when neither side has one the clock is read as
// 24-hour.
func parseTimeRange(raw string) (from, to time.Duration, err error) {
	m := timeRangeRegex.FindStringSubmatch(raw)
	if m == nil {
		return 0, 0, fmt.Errorf("not an H:MM - H:MM range")
	}

	mer1 := strings.ToUpper(m[3])
	mer2 := strings.ToUpper(m[6])
	if mer1 == "" {
		mer1 = mer2
	}
	if mer2 == "" {
		mer2 = mer1
	}

	from, err = clockOffset(m[1], m[2], mer1)
	if err != nil {
		return 0, 0, err
	}
	to, err = clockOffset(m[4], m[5], mer2)
	if err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

func clockOffset(hourStr, minStr, meridiem string) (time.Duration, error) {
	hour, _ := strconv.Atoi(hourStr)
	min, _ := strconv.Atoi(minStr)

	if min > 59 {
		return 0, fmt.Errorf("minute %d out of range", min)
	}

	switch meridiem {
	case "AM":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("hour %d out of range for AM", hour)
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("hour %d out of range for PM", hour)
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return 0, fmt.Errorf("hour %d out of range", hour)
		}
	}

	return time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute, nil
}
