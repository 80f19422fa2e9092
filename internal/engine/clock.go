package engine

import "time"

// DateLayout is the calendar date format stored in History.
const DateLayout = "2006-01-02"

// Clock supplies the wall-clock time used for the daily gate.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local system time.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Today returns the clock's current calendar date in its own location.
func Today(c Clock) string {
	return c.Now().Format(DateLayout)
}
