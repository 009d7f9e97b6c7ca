package profile

import (
	"strconv"
	"strings"
	"time"
)

// minMonthYear is the smallest year accepted in the month.year form.
// Records with a hidden year arrive as day.month and would otherwise
// be read as a month in a tiny year.
const minMonthYear = 1900

// ParseBirthDate parses "day.month.year" or "month.year" (day defaults to 1).
// Returns false for anything else, including impossible calendar dates.
func ParseBirthDate(s string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), ".")

	var day, month, year int
	var err error
	switch len(parts) {
	case 3:
		if day, err = strconv.Atoi(parts[0]); err != nil {
			return time.Time{}, false
		}
		if month, err = strconv.Atoi(parts[1]); err != nil {
			return time.Time{}, false
		}
		if year, err = strconv.Atoi(parts[2]); err != nil {
			return time.Time{}, false
		}
	case 2:
		day = 1
		if month, err = strconv.Atoi(parts[0]); err != nil {
			return time.Time{}, false
		}
		if year, err = strconv.Atoi(parts[1]); err != nil {
			return time.Time{}, false
		}
		if year < minMonthYear {
			return time.Time{}, false
		}
	default:
		return time.Time{}, false
	}

	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	birth := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises overflow (31.02 -> 03.03); reject instead.
	if birth.Day() != day || int(birth.Month()) != month {
		return time.Time{}, false
	}
	return birth, true
}

// AgeAt returns the number of full years between birth and now.
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}
