package pdf

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDate parses a PDF date string, format "D:YYYYMMDDHHmmSSOHH'mm'".
// Every field past the year is optional and
// defaults per ISO 32000: month/day default to 1, time fields to 0, and an
// absent timezone means UTC. A stray trailing apostrophe some producers
// leave on the minute field is tolerated.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimPrefix(s, "D:")
	s = strings.TrimSuffix(s, "'")
	if len(s) < 4 {
		return time.Time{}, false
	}

	year, ok := parseDigits(s, 0, 4)
	if !ok {
		return time.Time{}, false
	}
	month := parseDigitsDefault(s, 4, 6, 1)
	day := parseDigitsDefault(s, 6, 8, 1)
	hour := parseDigitsDefault(s, 8, 10, 0)
	minute := parseDigitsDefault(s, 10, 12, 0)
	second := parseDigitsDefault(s, 12, 14, 0)

	loc := time.UTC
	if len(s) > 14 {
		sign := s[14]
		if sign == '+' || sign == '-' {
			tzHour := parseDigitsDefault(s, 15, 17, 0)
			tzMin := 0
			if len(s) >= 20 && s[17] == '\'' {
				tzMin = parseDigitsDefault(s, 18, 20, 0)
			}
			offset := tzHour*3600 + tzMin*60
			if sign == '-' {
				offset = -offset
			}
			loc = time.FixedZone("", offset)
		}
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, loc), true
}

func parseDigits(s string, start, end int) (int, bool) {
	if len(s) < end {
		return 0, false
	}
	v, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseDigitsDefault(s string, start, end, def int) int {
	if v, ok := parseDigits(s, start, end); ok {
		return v
	}
	return def
}

// FormatDate renders t in PDF date form, the inverse of ParseDate.
func FormatDate(t time.Time) string {
	_, offset := t.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	tzHour := offset / 3600
	tzMin := (offset % 3600) / 60

	return fmt.Sprintf("D:%04d%02d%02d%02d%02d%02d%s%02d'%02d'",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), sign, tzHour, tzMin)
}
