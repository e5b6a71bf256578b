package helpers

import (
	"time"

	"golang.org/x/time/rate"
)

// NewOnceAMinute returns a rate.Sometimes that runs at most once per minute.
func NewOnceAMinute() *rate.Sometimes {
	return &rate.Sometimes{
		Interval: time.Minute,
	}
}
