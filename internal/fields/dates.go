package fields

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateOrder tags how a pattern's numeric groups map to date components.
type dateOrder int

const (
	orderDayFirst  dateOrder = iota // dd mm yyyy, the pt-BR default
	orderYearFirst                  // yyyy mm dd (ISO)
	orderWrittenPT                  // dd <month name> yyyy
)

// dateRules are tried in order; within a rule, the first match that forms
// a real calendar date wins. Optional trailing groups capture a time of
// day. Four-digit-year shapes come first so two-digit patterns never eat
// a century.
type dateRule struct {
	name  string
	order dateOrder
	re    *regexp.Regexp
}

var dateRules = []dateRule{
	{name: "iso", order: orderYearFirst, re: regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})(?:[T\s](\d{1,2}):(\d{2})(?::(\d{2}))?)?`)},
	{name: "slash_dmy", order: orderDayFirst, re: regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?)?`)},
	{name: "dash_dmy", order: orderDayFirst, re: regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4})(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?)?`)},
	{name: "dot_dmy", order: orderDayFirst, re: regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?)?`)},
	{name: "written_pt", order: orderWrittenPT, re: regexp.MustCompile(`(?i)\b(\d{1,2})\s+de\s+([\p{L}]+)\s+de\s+(\d{4})\b`)},
	{name: "slash_dmy_short", order: orderDayFirst, re: regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2})\b(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?)?`)},
}

// ptMonths maps Portuguese month names to numbers, with the accent-less
// spellings OCR tends to produce.
var ptMonths = map[string]int{
	"janeiro": 1, "fevereiro": 2, "marco": 3, "março": 3, "abril": 4,
	"maio": 5, "junho": 6, "julho": 7, "agosto": 8, "setembro": 9,
	"outubro": 10, "novembro": 11, "dezembro": 12,
}

// parseDate scans text with the ordered date rules. The boolean reports
// whether a real date was found; when nothing matches, the fallback
// timestamp is returned with found=false and the caller records a
// diagnostic.
func parseDate(text string, fallback time.Time) (time.Time, bool) {
	for _, rule := range dateRules {
		for _, m := range rule.re.FindAllStringSubmatch(text, -1) {
			if ts, ok := buildDate(rule, m); ok {
				return ts, true
			}
		}
	}
	return fallback, false
}

func buildDate(rule dateRule, m []string) (time.Time, bool) {
	var day, month, year int
	switch rule.order {
	case orderYearFirst:
		year = atoi(m[1])
		month = atoi(m[2])
		day = atoi(m[3])
	case orderWrittenPT:
		day = atoi(m[1])
		var ok bool
		month, ok = ptMonths[strings.ToLower(m[2])]
		if !ok {
			return time.Time{}, false
		}
		year = atoi(m[3])
	default:
		day = atoi(m[1])
		month = atoi(m[2])
		year = atoi(m[3])
	}
	if year < 100 {
		year += 2000
	}
	// A month over 12 next to a day under 13 reads as a month-first
	// locale; swap rather than reject.
	if month > 12 && day <= 12 {
		day, month = month, day
	}

	hour, minute, second := 0, 0, 0
	if len(m) > 4 && m[4] != "" {
		hour = atoi(m[4])
		minute = atoi(m[5])
		if m[6] != "" {
			second = atoi(m[6])
		}
	}
	if hour > 23 || minute > 59 || second > 59 {
		hour, minute, second = 0, 0, 0
	}

	if year < 2000 || year > 2100 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	ts := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local)
	// time.Date normalizes overflow (Feb 30 becomes Mar 2); a shifted
	// day means the components were not a real date.
	if ts.Day() != day || ts.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return ts, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
