package sweep

import (
	"context"
	"log/slog"

	"github.com/minhvo/spsweep/internal/core/domain"
	"github.com/minhvo/spsweep/internal/sweep/metrics"
	"github.com/minhvo/spsweep/internal/throttle"
)

// LabelSweeper detects retention labels on lists and, in reset mode,
// resets and reapplies them. Report-only mode detects and logs without
// mutating.
type LabelSweeper struct {
	policy   *throttle.Policy
	counters *Counters
	target   string
	apply    bool
	log      *slog.Logger
}

// NewLabelSweeper creates the label variant. target filters qualification
// by name prefix; empty matches any present label. apply=false is
// report-only.
func NewLabelSweeper(policy *throttle.Policy, counters *Counters, target string, apply bool, log *slog.Logger) *LabelSweeper {
	if log == nil {
		log = slog.Default()
	}
	return &LabelSweeper{
		policy:   policy,
		counters: counters,
		target:   target,
		apply:    apply,
		log:      log,
	}
}

func (s *LabelSweeper) Mode() domain.SweepMode { return domain.ModeLabels }

// ProcessList inspects one list's label and acts on it when it qualifies.
// Reset and reapply each go through the retry policy independently; a
// reapply failure after a successful reset is returned as a
// PartialMutationError so the traverser can surface the degraded state.
func (s *LabelSweeper) ProcessList(ctx context.Context, sess Session, list domain.ListRef) error {
	label, err := throttle.Execute(ctx, s.policy, "get label",
		func(ctx context.Context) (*domain.Label, error) {
			return sess.Label(ctx, list.Title)
		})
	if err != nil {
		return err
	}

	if label == nil {
		s.log.Debug("no label set, skipping", "site", list.SiteURL, "list", list.Title)
		return nil
	}
	if !label.Matches(s.target) {
		s.log.Debug("label does not match target, skipping",
			"site", list.SiteURL, "list", list.Title, "label", label.Name, "target", s.target)
		return nil
	}

	s.counters.Qualifying.Add(1)

	if !s.apply {
		s.log.Info("label qualifies for reset (report-only)",
			"site", list.SiteURL, "list", list.Title, "label", label.Name)
		return nil
	}

	if err := throttle.Do(ctx, s.policy, "reset label", func(ctx context.Context) error {
		return sess.ResetLabel(ctx, list.Title)
	}); err != nil {
		return err
	}

	if err := throttle.Do(ctx, s.policy, "apply label", func(ctx context.Context) error {
		return sess.ApplyLabel(ctx, list.Title, label.Name)
	}); err != nil {
		return &domain.PartialMutationError{ListTitle: list.Title, Label: label.Name, Err: err}
	}

	s.counters.ActedOn.Add(1)
	metrics.ItemsActedOn.WithLabelValues(string(domain.ModeLabels)).Inc()
	s.log.Info("label reset and reapplied",
		"site", list.SiteURL, "list", list.Title, "label", label.Name)
	return nil
}
