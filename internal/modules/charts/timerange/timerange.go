// Package timerange converts relative time-frame tags and explicit ranges into
// concrete date strings anchored at a caller-supplied reference time.
package timerange

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/chartpresets/internal/modules/charts/domain"
)

// Format is an output date layout.
type Format string

const (
	FormatCompact Format = "YYYYMMDD"
	FormatISO     Format = "YYYY-MM-DD"
	FormatMonth   Format = "YYYYMM"
	FormatYear    Format = "YYYY"
)

var layouts = map[Format]string{
	FormatCompact: "20060102",
	FormatISO:     "2006-01-02",
	FormatMonth:   "200601",
	FormatYear:    "2006",
}

// Earliest is the lower bound used for the "ALL" tag.
var Earliest = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

var relativeTag = regexp.MustCompile(`^(\d{1,3})([DWMyY])$`)

// Range is a resolved date range. The zero Range means "no range".
type Range struct {
	From string
	To   string
}

// IsZero reports whether the range is empty.
func (r Range) IsZero() bool {
	return r.From == "" && r.To == ""
}

// Resolve returns [from, to] for a time option. Unrecognized or missing values
// resolve to ("", "") rather than an error.
func Resolve(choice domain.OptionChoice, ref time.Time, format Format) (string, string) {
	r := ResolveRange(choice, ref, format)
	return r.From, r.To
}

// ResolveRange is Resolve returning a Range.
func ResolveRange(choice domain.OptionChoice, ref time.Time, format Format) Range {
	layout, ok := layouts[format]
	if !ok {
		return Range{}
	}

	if choice.Range != nil {
		from, okFrom := parseDate(choice.Range.From)
		to, okTo := parseDate(choice.Range.To)
		if !okFrom || !okTo || to.Before(from) {
			return Range{}
		}
		return Range{From: from.Format(layout), To: to.Format(layout)}
	}

	from, ok := lookback(strings.TrimSpace(choice.Value), ref)
	if !ok {
		return Range{}
	}
	return Range{From: from.Format(layout), To: ref.Format(layout)}
}

// lookback computes the start date for a tag. Month and year steps go through
// time.AddDate so the calendar fields are decremented, not a fixed day count.
func lookback(tag string, ref time.Time) (time.Time, bool) {
	switch strings.ToUpper(tag) {
	case "":
		return time.Time{}, false
	case "YTD":
		return time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location()), true
	case "ALL", "MAX":
		return Earliest.In(ref.Location()), true
	case "ANNUAL":
		return ref.AddDate(-10, 0, 0), true
	case "QUARTERLY":
		return ref.AddDate(-3, 0, 0), true
	}

	m := relativeTag.FindStringSubmatch(tag)
	if m == nil {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return time.Time{}, false
	}

	switch m[2] {
	case "D":
		return ref.AddDate(0, 0, -n), true
	case "W":
		return ref.AddDate(0, 0, -7*n), true
	case "M":
		return ref.AddDate(0, -n, 0), true
	case "y", "Y":
		return ref.AddDate(-n, 0, 0), true
	}
	return time.Time{}, false
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "20060102"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
