package addinsync

import "sync/atomic"

// RunStats accumulates run-wide counters. Created fresh per run, mutated by
// every stage, read once at the end.
type RunStats struct {
	GroupsFound   atomic.Int64
	UsersToAdd    atomic.Int64
	UsersToRemove atomic.Int64
	Installs      atomic.Int64
	Removes       atomic.Int64
	Errors        atomic.Int64
}
