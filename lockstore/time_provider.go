package lockstore

import "time"

type TimeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (rtp *realTimeProvider) Now() time.Time {
	return time.Now()
}
