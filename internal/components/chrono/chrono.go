package chrono

import (
	"context"
	"time"
)

type API interface {
	Now() time.Time
	Location() *time.Location
}

type StandardImpl struct {
	location *time.Location
}

// NewStandardImpl loads the given IANA zone, an empty name means UTC.
func NewStandardImpl(zone string) (StandardImpl, error) {
	location, err := time.LoadLocation(zone)
	if err != nil {
		return StandardImpl{}, err
	}
	return StandardImpl{location: location}, nil
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

// SleepAPI is the interface anything that needs to pause between provider calls should use.
//
// note: fault injection point
type SleepAPI interface {
	// Sleep blocks for the given duration or until the context is cancelled.
	Sleep(ctx context.Context, d time.Duration) error
}

type StandardSleep struct{}

func (StandardSleep) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
