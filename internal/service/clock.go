package service

import (
	"time"

	"hubcoin/internal/domain"
)

// Clock decides what "today" means for the daily claim counter
type Clock struct {
	now func() time.Time
	loc *time.Location
}

// NewClock returns a wall clock reporting dates in loc (UTC when nil)
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{now: time.Now, loc: loc}
}

// FixedClock always reports t. Used by tests and dry runs.
func FixedClock(t time.Time) Clock {
	return Clock{now: func() time.Time { return t }, loc: t.Location()}
}

func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now().UTC()
	}
	return c.now()
}

// Today returns the current date in the clock's location as YYYY-MM-DD
func (c Clock) Today() string {
	loc := c.loc
	if loc == nil {
		loc = time.UTC
	}
	return c.Now().In(loc).Format(domain.DateLayout)
}
