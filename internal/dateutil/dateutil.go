// Package dateutil formats and parses clinic dates in the facility timezone
// using Indonesian month names.
package dateutil

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const DefaultTimezone = "Asia/Jakarta"

// DateLayout is the layout of the date portion used for comparisons and queries.
const DateLayout = "2006-01-02"

type Style string

const (
	Short    Style = "short"
	Long     Style = "long"
	DateTime Style = "datetime"
	Time     Style = "time"
)

var months = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var jakarta = mustLoad(DefaultTimezone)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

// Location returns the facility timezone.
func Location() *time.Location {
	return jakarta
}

// LoadLocation resolves a timezone name, embedded tzdata included.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	return time.LoadLocation(name)
}

// FormatDate renders t in Asia/Jakarta. Unknown styles fall back to Short.
func FormatDate(t time.Time, style Style) string {
	t = t.In(jakarta)
	switch style {
	case Long:
		return fmt.Sprintf("%d %s %d", t.Day(), months[t.Month()-1], t.Year())
	case DateTime:
		return t.Format("02/01/2006, 15.04")
	case Time:
		return t.Format("15.04")
	default:
		return t.Format("02/01/2006")
	}
}

// FormatDateString parses s with ParseDate and formats it.
func FormatDateString(s string, style Style) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return FormatDate(t, style), nil
}

// CalculateAge returns whole years elapsed between birth and now, both taken
// in the facility timezone.
func CalculateAge(birth, now time.Time) int {
	birth = birth.In(jakarta)
	now = now.In(jakarta)

	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// CurrentDateTime renders now as an ISO timestamp with the +07:00 offset.
func CurrentDateTime(now time.Time) string {
	return now.In(jakarta).Format("2006-01-02T15:04:05-07:00")
}

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

// ParseDate accepts ISO dates and date-times. Values without an offset are
// read as Asia/Jakarta wall time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, jakarta); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// DateKey is the YYYY-MM-DD date portion of t in Asia/Jakarta.
func DateKey(t time.Time) string {
	return t.In(jakarta).Format(DateLayout)
}

// InRange reports whether the date portion of t lies in [start, end].
// start and end are YYYY-MM-DD; an empty bound is open.
func InRange(t time.Time, start, end string) bool {
	key := DateKey(t)
	if start != "" && key < start {
		return false
	}
	if end != "" && key > end {
		return false
	}
	return true
}
