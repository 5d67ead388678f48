package gateway

import "time"

// Trace identifies one request for log, metric and backend correlation.
type Trace struct {
	ID    string
	Start time.Time
}

func (t Trace) elapsed() time.Duration {
	return time.Since(t.Start)
}
