// Package sweep drives the site → list → item traversal for both
// maintenance variants, wrapping every remote call in the throttle layer
// and degrading all remote failures to skip-and-continue.
package sweep

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/minhvo/spsweep/internal/core/domain"
	"github.com/minhvo/spsweep/internal/sweep/metrics"
	"github.com/minhvo/spsweep/internal/throttle"
)

// Connector opens site sessions.
type Connector interface {
	Connect(ctx context.Context, siteURL string) (Session, error)
}

// Session is the exclusive connection to one site. The traverser owns one
// at a time and always releases it before moving to the next site.
type Session interface {
	Lists(ctx context.Context) ([]domain.ListRef, error)
	Label(ctx context.Context, listTitle string) (*domain.Label, error)
	ResetLabel(ctx context.Context, listTitle string) error
	ApplyLabel(ctx context.Context, listTitle, name string) error
	Items(ctx context.Context, listTitle string) ([]domain.Item, error)
	UnlockItem(ctx context.Context, listTitle string, itemID int) (bool, error)
	Disconnect()
}

// ListProcessor is the per-list work unit of one sweep variant.
type ListProcessor interface {
	Mode() domain.SweepMode
	ProcessList(ctx context.Context, sess Session, list domain.ListRef) error
}

// FailureRecorder receives every skipped unit, for the audit store and the
// failed-site queue. Recording must never abort the run; implementations
// swallow their own errors.
type FailureRecorder interface {
	Record(ctx context.Context, f domain.RunFailure)
}

// Traverser runs the nested site → list loop.
type Traverser struct {
	connector Connector
	processor ListProcessor
	policy    *throttle.Policy
	pacer     *throttle.Pacer
	counters  *Counters
	failures  FailureRecorder
	log       *slog.Logger
	progress  func(done, total int)
}

// NewTraverser wires a traversal. failures may be nil.
func NewTraverser(
	connector Connector,
	processor ListProcessor,
	policy *throttle.Policy,
	pacer *throttle.Pacer,
	counters *Counters,
	failures FailureRecorder,
	log *slog.Logger,
) *Traverser {
	if log == nil {
		log = slog.Default()
	}
	return &Traverser{
		connector: connector,
		processor: processor,
		policy:    policy,
		pacer:     pacer,
		counters:  counters,
		failures:  failures,
		log:       log,
	}
}

// WithProgress registers a callback invoked after each site, for CLI
// progress display.
func (t *Traverser) WithProgress(fn func(done, total int)) *Traverser {
	t.progress = fn
	return t
}

// Run processes every site in input order. Remote failures never abort
// the run; each is logged, counted and converted into a skip at its own
// nesting level. Cancellation is honored at the top of each iteration,
// never mid-call.
func (t *Traverser) Run(ctx context.Context, sites []string) Summary {
	t.counters.SitesTotal.Add(int64(len(sites)))
	mode := string(t.processor.Mode())

	for i, siteURL := range sites {
		if ctx.Err() != nil {
			t.log.Warn("run cancelled", "sites_remaining", len(sites)-i)
			break
		}

		t.log.Info("processing site", "site", siteURL, "position", i+1, "total", len(sites))
		if t.processSite(ctx, siteURL) {
			t.counters.SitesProcessed.Add(1)
			metrics.SitesProcessed.WithLabelValues(mode).Inc()
		}

		if t.progress != nil {
			t.progress(i+1, len(sites))
		}

		// No trailing delay after the final site.
		if i < len(sites)-1 {
			if err := t.pacer.BetweenSites(ctx); err != nil {
				break
			}
		}
	}

	return t.counters.Snapshot()
}

// processSite runs one site's window: connect, enumerate, per-list work,
// disconnect. Returns true when the site counts as processed.
func (t *Traverser) processSite(ctx context.Context, siteURL string) bool {
	sess, err := throttle.Execute(ctx, t.policy, "connect site",
		func(ctx context.Context) (Session, error) {
			return t.connector.Connect(ctx, siteURL)
		})
	if err != nil {
		t.skipSite(ctx, siteURL, "failed to connect to site", err)
		return false
	}
	defer sess.Disconnect()

	lists, err := throttle.Execute(ctx, t.policy, "enumerate lists",
		func(ctx context.Context) ([]domain.ListRef, error) {
			return sess.Lists(ctx)
		})
	if err != nil {
		t.skipSite(ctx, siteURL, "failed to enumerate lists", err)
		return false
	}

	mode := string(t.processor.Mode())
	for i, list := range lists {
		if ctx.Err() != nil {
			return false
		}

		if err := t.processor.ProcessList(ctx, sess, list); err != nil {
			t.skipList(ctx, list, err)
		} else {
			t.counters.ListsProcessed.Add(1)
			metrics.ListsProcessed.WithLabelValues(mode).Inc()
		}

		// No trailing delay after the final list.
		if i < len(lists)-1 {
			if err := t.pacer.BetweenLists(ctx); err != nil {
				return false
			}
		}
	}
	return true
}

func (t *Traverser) skipSite(ctx context.Context, siteURL, msg string, err error) {
	t.log.Error(msg+", skipping site", "site", siteURL, "error", err)
	t.counters.Failures.Add(1)
	metrics.UnitsSkipped.WithLabelValues("site").Inc()
	t.record(ctx, domain.RunFailure{
		SiteURL:   siteURL,
		Error:     err.Error(),
		CreatedAt: time.Now(),
	})
}

func (t *Traverser) skipList(ctx context.Context, list domain.ListRef, err error) {
	var partial *domain.PartialMutationError
	if errors.As(err, &partial) {
		// Reset succeeded but reapply did not: the list is label-less
		// and a later run will not re-detect it. Never report this as
		// an ordinary skip.
		t.log.Error("list left without its label after partial mutation",
			"site", list.SiteURL, "list", list.Title, "label", partial.Label, "error", err)
	} else {
		t.log.Error("failed to process list, skipping",
			"site", list.SiteURL, "list", list.Title, "error", err)
	}
	t.counters.Failures.Add(1)
	metrics.UnitsSkipped.WithLabelValues("list").Inc()
	t.record(ctx, domain.RunFailure{
		SiteURL:   list.SiteURL,
		ListTitle: list.Title,
		Error:     err.Error(),
		CreatedAt: time.Now(),
	})
}

func (t *Traverser) record(ctx context.Context, f domain.RunFailure) {
	if t.failures == nil {
		return
	}
	t.failures.Record(ctx, f)
}
