package clock

import "time"

// Clock abstracts wall time so services and the timer engine can be tested
// against a fixed or advancing fake.
type Clock interface {
	Now() time.Time
	// Today returns the current calendar date as "YYYY-MM-DD" in UTC.
	Today() string
}

// Real is the wall clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

func (Real) Today() string { return time.Now().UTC().Format(time.DateOnly) }

// Fake is a settable clock for tests.
type Fake struct {
	Current time.Time
}

func NewFake(t time.Time) *Fake { return &Fake{Current: t} }

func (f *Fake) Now() time.Time { return f.Current }

func (f *Fake) Today() string { return f.Current.UTC().Format(time.DateOnly) }

// Advance moves the fake clock forward.
func (f *Fake) Advance(d time.Duration) { f.Current = f.Current.Add(d) }
