package service

import "time"

type Clock interface{ Now() time.Time }

// SystemClock is the production clock; tests inject a fixed one.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
