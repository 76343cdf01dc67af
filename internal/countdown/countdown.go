// Package countdown computes the time left until the wedding and keeps a
// live value refreshed about once per second.
package countdown

import "time"

const (
	msPerDay    = 86400000
	msPerHour   = 3600000
	msPerMinute = 60000
	msPerSecond = 1000
)

// State is the remaining time split into whole units.
type State struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// Compute decomposes max(0, target-now) into days, hours, minutes and seconds.
func Compute(target, now time.Time) State {
	ms := target.Sub(now).Milliseconds()
	if ms < 0 {
		ms = 0
	}
	var s State
	s.Days, ms = ms/msPerDay, ms%msPerDay
	s.Hours, ms = ms/msPerHour, ms%msPerHour
	s.Minutes, ms = ms/msPerMinute, ms%msPerMinute
	s.Seconds = ms / msPerSecond
	return s
}

// TotalSeconds folds the state back into seconds.
func (s State) TotalSeconds() int64 {
	return s.Days*86400 + s.Hours*3600 + s.Minutes*60 + s.Seconds
}

// Zero reports whether the target has been reached.
func (s State) Zero() bool {
	return s == State{}
}
