package sweep

import (
	"fmt"
	"sync/atomic"
)

// Counters is the process-wide tally of traversal progress. Increments are
// atomic so a future concurrent traversal keeps the totals exact; nothing
// ever decrements or resets them mid-run.
type Counters struct {
	SitesTotal     atomic.Int64
	SitesProcessed atomic.Int64
	ListsProcessed atomic.Int64
	Qualifying     atomic.Int64
	ActedOn        atomic.Int64
	Failures       atomic.Int64
}

// Summary is a point-in-time read of the counters, taken once at the end
// of a run.
type Summary struct {
	SitesTotal     int64
	SitesProcessed int64
	ListsProcessed int64
	Qualifying     int64
	ActedOn        int64
	Failures       int64
}

// Snapshot reads all counters.
func (c *Counters) Snapshot() Summary {
	return Summary{
		SitesTotal:     c.SitesTotal.Load(),
		SitesProcessed: c.SitesProcessed.Load(),
		ListsProcessed: c.ListsProcessed.Load(),
		Qualifying:     c.Qualifying.Load(),
		ActedOn:        c.ActedOn.Load(),
		Failures:       c.Failures.Load(),
	}
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"sites %d/%d, lists %d, qualifying %d, acted on %d, failures %d",
		s.SitesProcessed, s.SitesTotal, s.ListsProcessed, s.Qualifying, s.ActedOn, s.Failures,
	)
}
