package clock

import "time"

// Clock supplies the current time to services that need "today" for overdue
// and next-due computations. Pure functions receive it as a parameter so
// tests can pin the date.
type Clock interface {
	Now() time.Time
}

// System reads the real wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always reports the same instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// At returns a Fixed clock pinned to t.
func At(t time.Time) Fixed { return Fixed{T: t} }
