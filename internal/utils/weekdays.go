package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/hsplan/internal/constants"
)

// WeekdayBit returns the mask bit for a weekday, Monday=bit0 .. Sunday=bit6.
func WeekdayBit(wd time.Weekday) int {
	// time.Weekday is Sunday=0; ISO weekday is Monday=1..Sunday=7
	iso := int(wd)
	if iso == 0 {
		iso = 7
	}
	return 1 << (iso - 1)
}

// MaskAllows reports whether the date's weekday is permitted by mask.
func MaskAllows(mask int, date time.Time) bool {
	return mask&WeekdayBit(date.Weekday()) != 0
}

var weekdayNames = map[string]time.Weekday{
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
}

// ParseWeekdayMask parses a comma-separated list of weekdays into a mask.
// Accepts day names, ISO numbers (1=Monday..7=Sunday) and the shorthands
// "weekdays", "weekends" and "all".
func ParseWeekdayMask(s string) (int, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "weekdays":
		return constants.WeekdaysMask, nil
	case "weekends":
		return constants.WeekendMask, nil
	case "all", "daily":
		return constants.AllDaysMask, nil
	case "", "none":
		return 0, nil
	}

	mask := 0
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if wd, ok := weekdayNames[part]; ok {
			mask |= WeekdayBit(wd)
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 1 || num > 7 {
			return 0, fmt.Errorf("invalid weekday: %s", part)
		}
		mask |= 1 << (num - 1)
	}
	return mask, nil
}

// FormatWeekdayMask renders a mask as a comma-separated list of short day names.
func FormatWeekdayMask(mask int) string {
	switch mask & constants.AllDaysMask {
	case 0:
		return "none"
	case constants.AllDaysMask:
		return "daily"
	case constants.WeekdaysMask:
		return "weekdays"
	case constants.WeekendMask:
		return "weekends"
	}

	order := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
	var days []string
	for _, wd := range order {
		if mask&WeekdayBit(wd) != 0 {
			days = append(days, wd.String()[:3])
		}
	}
	return strings.Join(days, ",")
}
