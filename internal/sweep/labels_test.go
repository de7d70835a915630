package sweep

import (
	"context"
	"errors"
	"testing"

	"github.com/minhvo/spsweep/internal/core/domain"
)

func TestLabelMatches_PrefixRule(t *testing.T) {
	tests := []struct {
		target string
		label  string
		want   bool
	}{
		{"Record", "Record (Retain 1yr)", true},
		{"Record", "Record", true},
		{"Record", "Other", false},
		{"", "Anything", true},
		{"Record (Retain 1yr)", "Record", false},
	}
	for _, tt := range tests {
		got := domain.Label{Name: tt.label}.Matches(tt.target)
		if got != tt.want {
			t.Errorf("Label(%q).Matches(%q) = %v, want %v", tt.label, tt.target, got, tt.want)
		}
	}
}

func TestLabelSweeper_ReportOnlyNeverMutates(t *testing.T) {
	sess := &fakeSession{
		labels: map[string]*domain.Label{"Docs": {Name: "Record (Retain 1yr)"}},
	}
	counters := &Counters{}
	s := NewLabelSweeper(testPolicy(), counters, "Record", false, testLogger())

	err := s.ProcessList(context.Background(), sess, domain.ListRef{SiteURL: "s", Title: "Docs"})
	if err != nil {
		t.Fatalf("ProcessList failed: %v", err)
	}

	if len(sess.calls) != 0 {
		t.Errorf("mutations in report-only mode: %v", sess.calls)
	}
	if counters.Qualifying.Load() != 1 {
		t.Errorf("Qualifying = %d, want 1 (detection still counts)", counters.Qualifying.Load())
	}
	if counters.ActedOn.Load() != 0 {
		t.Errorf("ActedOn = %d, want 0", counters.ActedOn.Load())
	}
}

func TestLabelSweeper_ResetThenReapplyInOrder(t *testing.T) {
	sess := &fakeSession{
		labels: map[string]*domain.Label{"Docs": {Name: "Record (Retain 1yr)"}},
	}
	counters := &Counters{}
	s := NewLabelSweeper(testPolicy(), counters, "Record", true, testLogger())

	if err := s.ProcessList(context.Background(), sess, domain.ListRef{SiteURL: "s", Title: "Docs"}); err != nil {
		t.Fatalf("ProcessList failed: %v", err)
	}

	want := []string{"reset:Docs", "apply:Docs:Record (Retain 1yr)"}
	if len(sess.calls) != 2 || sess.calls[0] != want[0] || sess.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", sess.calls, want)
	}
	if counters.ActedOn.Load() != 1 {
		t.Errorf("ActedOn = %d, want 1", counters.ActedOn.Load())
	}
}

func TestLabelSweeper_NonMatchingLabelSkipped(t *testing.T) {
	sess := &fakeSession{
		labels: map[string]*domain.Label{"Docs": {Name: "Other"}},
	}
	counters := &Counters{}
	s := NewLabelSweeper(testPolicy(), counters, "Record", true, testLogger())

	if err := s.ProcessList(context.Background(), sess, domain.ListRef{SiteURL: "s", Title: "Docs"}); err != nil {
		t.Fatalf("ProcessList failed: %v", err)
	}
	if len(sess.calls) != 0 {
		t.Errorf("calls = %v, want none", sess.calls)
	}
	if counters.Qualifying.Load() != 0 {
		t.Errorf("Qualifying = %d, want 0", counters.Qualifying.Load())
	}
}

func TestLabelSweeper_ReapplyFailureIsPartialMutation(t *testing.T) {
	sess := &fakeSession{
		labels:   map[string]*domain.Label{"Docs": {Name: "Record"}},
		applyErr: map[string]error{"Docs": remoteErr("apply label", 500)},
	}
	counters := &Counters{}
	s := NewLabelSweeper(testPolicy(), counters, "", true, testLogger())

	err := s.ProcessList(context.Background(), sess, domain.ListRef{SiteURL: "s", Title: "Docs"})

	var partial *domain.PartialMutationError
	if !errors.As(err, &partial) {
		t.Fatalf("error = %v, want PartialMutationError", err)
	}
	if partial.Label != "Record" || partial.ListTitle != "Docs" {
		t.Errorf("partial = %+v, want label Record on list Docs", partial)
	}
	if len(sess.calls) != 1 || sess.calls[0] != "reset:Docs" {
		t.Errorf("calls = %v, want the reset to have happened", sess.calls)
	}
	if counters.ActedOn.Load() != 0 {
		t.Errorf("ActedOn = %d, want 0 for a partial mutation", counters.ActedOn.Load())
	}
}
