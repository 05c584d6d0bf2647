package services

import "time"

// Clock supplies the current instant to every deadline and advance-notice
// decision.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
