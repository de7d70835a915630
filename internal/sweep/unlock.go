package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/minhvo/spsweep/internal/core/domain"
	"github.com/minhvo/spsweep/internal/sweep/metrics"
	"github.com/minhvo/spsweep/internal/throttle"
)

// UnlockSweeper detects items locked as records and, in unlock mode,
// clears the lock. One bad item never aborts its list.
type UnlockSweeper struct {
	policy   *throttle.Policy
	pacer    *throttle.Pacer
	counters *Counters
	failures FailureRecorder
	apply    bool
	log      *slog.Logger
}

// NewUnlockSweeper creates the unlock variant. apply=false is report-only.
// failures may be nil.
func NewUnlockSweeper(policy *throttle.Policy, pacer *throttle.Pacer, counters *Counters, failures FailureRecorder, apply bool, log *slog.Logger) *UnlockSweeper {
	if log == nil {
		log = slog.Default()
	}
	return &UnlockSweeper{
		policy:   policy,
		pacer:    pacer,
		counters: counters,
		failures: failures,
		apply:    apply,
		log:      log,
	}
}

func (s *UnlockSweeper) Mode() domain.SweepMode { return domain.ModeUnlock }

// ProcessList fetches the list's items once (a snapshot in page order) and
// inspects each in turn, pacing between items but not after the last one.
func (s *UnlockSweeper) ProcessList(ctx context.Context, sess Session, list domain.ListRef) error {
	items, err := throttle.Execute(ctx, s.policy, "list items",
		func(ctx context.Context) ([]domain.Item, error) {
			return sess.Items(ctx, list.Title)
		})
	if err != nil {
		return err
	}

	for i, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.processItem(ctx, sess, list, item)

		if i < len(items)-1 {
			if err := s.pacer.BetweenItems(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// processItem classifies one item's compliance flag and unlocks it when
// locked. Failures are degraded to a logged skip of this item only.
func (s *UnlockSweeper) processItem(ctx context.Context, sess Session, list domain.ListRef, item domain.Item) {
	switch domain.ClassifyFlag(item.ComplianceFlag) {
	case domain.LockStateLocked:
		// handled below
	case domain.LockStateUnknown:
		s.log.Warn("unknown compliance flag, not acting",
			"site", list.SiteURL, "list", list.Title,
			"item", item.DisplayName, "flag", *item.ComplianceFlag)
		return
	default:
		return
	}

	s.counters.Qualifying.Add(1)

	if !s.apply {
		s.log.Info("item is locked as a record (report-only)",
			"site", list.SiteURL, "list", list.Title, "item", item.DisplayName)
		return
	}

	unlocked, err := throttle.Execute(ctx, s.policy, "unlock item",
		func(ctx context.Context) (bool, error) {
			return sess.UnlockItem(ctx, list.Title, item.ID)
		})
	if err != nil {
		s.log.Error("failed to unlock item, skipping",
			"site", list.SiteURL, "list", list.Title, "item", item.DisplayName, "error", err)
		s.counters.Failures.Add(1)
		metrics.UnitsSkipped.WithLabelValues("item").Inc()
		if s.failures != nil {
			s.failures.Record(ctx, domain.RunFailure{
				SiteURL:   list.SiteURL,
				ListTitle: list.Title,
				ItemID:    item.ID,
				Error:     err.Error(),
				CreatedAt: time.Now(),
			})
		}
		return
	}

	if !unlocked {
		s.log.Warn("unlock reported no change",
			"site", list.SiteURL, "list", list.Title, "item", item.DisplayName)
		return
	}

	s.counters.ActedOn.Add(1)
	metrics.ItemsActedOn.WithLabelValues(string(domain.ModeUnlock)).Inc()
	s.log.Info("item unlocked",
		"site", list.SiteURL, "list", list.Title, "item", item.DisplayName)
}
