package core

import "time"

const (
	// TimestampLayout renders expense stamps as "full weekday: day - 24h:minute".
	TimestampLayout = "Monday: 2 - 15:04"
	// MonthLayout renders month keys as "full month name + 4-digit year".
	MonthLayout = "January 2006"
)

// Calendar supplies the current time and the display formats used for
// expense stamps and month names.
type Calendar interface {
	Now() time.Time
	FormatTimestamp(t time.Time) string
	FormatMonth(t time.Time) string
}

// SystemCalendar reads the wall clock in a fixed location.
type SystemCalendar struct {
	Location *time.Location
}

// NewSystemCalendar returns a calendar in loc, or in time.Local when loc is nil.
func NewSystemCalendar(loc *time.Location) SystemCalendar {
	if loc == nil {
		loc = time.Local
	}
	return SystemCalendar{Location: loc}
}

func (c SystemCalendar) Now() time.Time {
	return time.Now().In(c.location())
}

func (c SystemCalendar) FormatTimestamp(t time.Time) string {
	return t.In(c.location()).Format(TimestampLayout)
}

func (c SystemCalendar) FormatMonth(t time.Time) string {
	return t.In(c.location()).Format(MonthLayout)
}

func (c SystemCalendar) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// FixedCalendar always reports the same instant. Useful for tests and for
// replaying a session deterministically.
type FixedCalendar struct {
	At time.Time
}

func (c FixedCalendar) Now() time.Time { return c.At }

func (c FixedCalendar) FormatTimestamp(t time.Time) string {
	return t.In(c.At.Location()).Format(TimestampLayout)
}

func (c FixedCalendar) FormatMonth(t time.Time) string {
	return t.In(c.At.Location()).Format(MonthLayout)
}
