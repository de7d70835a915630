package throttle

import (
	"context"
	"log/slog"
	"time"

	"github.com/minhvo/spsweep/internal/sweep/metrics"
)

// Pacer applies configured fixed delays between successive operations.
// SharePoint throttling is tenant-wide, so the sweep deliberately spaces
// its own requests out instead of racing the limiter.
type Pacer struct {
	itemDelay time.Duration
	listDelay time.Duration
	siteDelay time.Duration

	log   *slog.Logger
	sleep SleepFunc
}

// NewPacer creates a pacer with independent item, list and site delays.
// A zero delay disables pacing at that level.
func NewPacer(item, list, site time.Duration, log *slog.Logger) *Pacer {
	if log == nil {
		log = slog.Default()
	}
	return &Pacer{
		itemDelay: item,
		listDelay: list,
		siteDelay: site,
		log:       log,
		sleep:     ctxSleep,
	}
}

// WithSleep replaces the sleep function. Used by tests.
func (p *Pacer) WithSleep(fn SleepFunc) *Pacer {
	p.sleep = fn
	return p
}

// BetweenItems paces before the next item in a list.
func (p *Pacer) BetweenItems(ctx context.Context) error {
	return p.pace(ctx, p.itemDelay, "item")
}

// BetweenLists paces before the next list in a site.
func (p *Pacer) BetweenLists(ctx context.Context) error {
	return p.pace(ctx, p.listDelay, "list")
}

// BetweenSites paces before the next site.
func (p *Pacer) BetweenSites(ctx context.Context) error {
	return p.pace(ctx, p.siteDelay, "site")
}

// pace suspends for d. A zero duration is a complete no-op: no sleep, no
// log entry.
func (p *Pacer) pace(ctx context.Context, d time.Duration, level string) error {
	if d <= 0 {
		return nil
	}
	p.log.Debug("pacing before next "+level, "delay", d)
	metrics.PacingWaitSeconds.WithLabelValues(level).Add(d.Seconds())
	return p.sleep(ctx, d)
}
