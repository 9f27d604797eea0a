// Package calendarday models timezone-naive calendar days. It is the only
// place where YYYY-MM-DD strings are converted to and from day values.
package calendarday

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const layout = "2006-01-02"

var (
	// ErrInvalidDay reports a string that is not a real YYYY-MM-DD calendar date.
	ErrInvalidDay = errors.New("invalid calendar day")
	// ErrInvalidRange reports a range whose start is after its end.
	ErrInvalidRange = errors.New("invalid day range")
)

// Day is a calendar date without time-of-day or offset.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// New builds a Day and normalises overflowing fields the way time.Date does.
func New(year int, month time.Month, day int) Day {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime takes the wall-clock date of t as-is, without converting zones.
func FromTime(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// Today returns the current day according to now, in now's own location.
func Today(now func() time.Time) Day {
	if now == nil {
		now = time.Now
	}
	return FromTime(now())
}

// Parse reads a YYYY-MM-DD string by splitting its numeric parts.
func Parse(s string) (Day, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return Day{}, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		for _, r := range p {
			if r < '0' || r > '9' {
				return Day{}, fmt.Errorf("%w: %q", ErrInvalidDay, s)
			}
		}
		nums[i], _ = strconv.Atoi(p)
	}
	d := Day{Year: nums[0], Month: time.Month(nums[1]), Day: nums[2]}
	if d.Month < time.January || d.Month > time.December || d.Day < 1 || d.Day > daysIn(d.Year, d.Month) {
		return Day{}, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	return d, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Day {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Format renders d as YYYY-MM-DD. It is the exact inverse of Parse.
func Format(d Day) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Day) String() string {
	return Format(d)
}

// IsZero reports whether d is the zero value.
func (d Day) IsZero() bool {
	return d == Day{}
}

// Time returns midnight UTC of d. Only arithmetic uses it; it is never formatted.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Compare returns -1, 0 or 1 following calendar order.
func Compare(a, b Day) int {
	switch {
	case a.Year != b.Year:
		return sign(a.Year - b.Year)
	case a.Month != b.Month:
		return sign(int(a.Month) - int(b.Month))
	default:
		return sign(a.Day - b.Day)
	}
}

// Same reports whether a and b denote the same calendar day.
func Same(a, b Day) bool {
	return a == b
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool {
	return Compare(d, other) < 0
}

// After reports whether d is strictly later than other.
func (d Day) After(other Day) bool {
	return Compare(d, other) > 0
}

// AddDays returns the day n days after d (n may be negative).
func AddDays(d Day, n int) Day {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// AddMonths moves d by n months, clamping the day to the target month length.
func AddMonths(d Day, n int) Day {
	total := int(d.Month) - 1 + n
	year := d.Year + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)
	day := d.Day
	if limit := daysIn(year, month); day > limit {
		day = limit
	}
	return Day{Year: year, Month: month, Day: day}
}

// Diff returns the number of days from a to b.
func Diff(a, b Day) int {
	return int(b.Time().Sub(a.Time()).Hours() / 24)
}

// Min returns the earlier of a and b.
func Min(a, b Day) Day {
	if a.After(b) {
		return b
	}
	return a
}

// Max returns the later of a and b.
func Max(a, b Day) Day {
	if a.Before(b) {
		return b
	}
	return a
}

// MarshalJSON encodes the day as a YYYY-MM-DD string.
func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Format(d) + `"`), nil
}

// UnmarshalJSON decodes a YYYY-MM-DD string.
func (d *Day) UnmarshalJSON(data []byte) error {
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDay, string(data))
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler; yaml.v3 and form binding use it.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(Format(d)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner. DATE columns arrive as time.Time from lib/pq and
// as text from sqlite; both keep their wall-clock date.
func (d *Day) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = FromTime(v)
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	case nil:
		*d = Day{}
		return nil
	default:
		return fmt.Errorf("%w: unsupported column type %T", ErrInvalidDay, src)
	}
}

// Value implements driver.Valuer.
func (d Day) Value() (driver.Value, error) {
	return Format(d), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
