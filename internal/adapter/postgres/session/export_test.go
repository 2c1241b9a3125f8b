package session

import "time"

// SetClock replaces the repository clock in tests.
func (r *Repo) SetClock(now func() time.Time) { r.nowFn = now }
