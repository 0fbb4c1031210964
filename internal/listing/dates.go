package listing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	unknownMonth   = "00"
	assembleLayout = "02/01/2006 15:04:05"
)

//months maps the 3-letter month abbreviations of ls output, English and Portuguese, to 2-digit months.
var months = map[string]string{
	"Jan": "01",
	"Feb": "02", "Fev": "02",
	"Mar": "03",
	"Apr": "04", "Abr": "04",
	"May": "05", "Mai": "05",
	"Jun": "06",
	"Jul": "07",
	"Aug": "08", "Ago": "08",
	"Sep": "09", "Set": "09",
	"Oct": "10", "Out": "10",
	"Nov": "11",
	"Dec": "12", "Dez": "12",
}

//resolveMonth returns "00" for an unknown abbreviation instead of failing.
func resolveMonth(abbr string) (string, bool) {
	m, ok := months[abbr]
	if !ok {
		return unknownMonth, false
	}
	return m, true
}

//assembleDate builds the modification time of a row from its day, month and year-or-time fields.
//A "HH:MM" value means the current year, a year value means midnight.
func assembleDate(day, month, yearOrTime string, now time.Time) (time.Time, error) {
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q", day)
	}

	mm, _ := resolveMonth(month)

	var year, clock string
	if strings.Contains(yearOrTime, ":") {
		year = strconv.Itoa(now.Year())
		clock = yearOrTime + ":00"
	} else {
		year = yearOrTime
		clock = "00:00:00"
	}

	s := fmt.Sprintf("%02d/%s/%s %s", d, mm, year, clock)
	t, err := time.ParseInLocation(assembleLayout, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot assemble date from %q: %w", s, err)
	}
	return t, nil
}
