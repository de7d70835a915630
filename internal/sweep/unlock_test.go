package sweep

import (
	"context"
	"testing"

	"github.com/minhvo/spsweep/internal/core/domain"
)

func TestClassifyFlag(t *testing.T) {
	tests := []struct {
		name string
		flag *int
		want domain.LockState
	}{
		{"locked", domain.Flag(7), domain.LockStateLocked},
		{"locked legacy", domain.Flag(519), domain.LockStateLocked},
		{"already unlocked", domain.Flag(771), domain.LockStateUnlocked},
		{"absent", nil, domain.LockStateNone},
		{"zero", domain.Flag(0), domain.LockStateNone},
		{"unknown", domain.Flag(42), domain.LockStateUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.ClassifyFlag(tt.flag); got != tt.want {
				t.Errorf("ClassifyFlag = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnlockSweeper_UnlocksOnlyLockedItems(t *testing.T) {
	sess := &fakeSession{
		items: map[string][]domain.Item{
			"Docs": {
				{ID: 1, DisplayName: "locked.docx", ComplianceFlag: domain.Flag(7)},
				{ID: 2, DisplayName: "legacy.docx", ComplianceFlag: domain.Flag(519)},
				{ID: 3, DisplayName: "open.docx", ComplianceFlag: domain.Flag(771)},
				{ID: 4, DisplayName: "plain.docx"},
				{ID: 5, DisplayName: "odd.docx", ComplianceFlag: domain.Flag(42)},
			},
		},
	}
	counters := &Counters{}
	s := NewUnlockSweeper(testPolicy(), noPacer(), counters, nil, true, testLogger())

	if err := s.ProcessList(context.Background(), sess, domain.ListRef{SiteURL: "s", Title: "Docs"}); err != nil {
		t.Fatalf("ProcessList failed: %v", err)
	}

	want := []string{"unlock:Docs:1", "unlock:Docs:2"}
	if len(sess.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", sess.calls, want)
	}
	for i := range want {
		if sess.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, sess.calls[i], want[i])
		}
	}
	if counters.Qualifying.Load() != 2 {
		t.Errorf("Qualifying = %d, want 2", counters.Qualifying.Load())
	}
	if counters.ActedOn.Load() != 2 {
		t.Errorf("ActedOn = %d, want 2", counters.ActedOn.Load())
	}
}

func TestUnlockSweeper_ReportOnlyNeverMutates(t *testing.T) {
	sess := &fakeSession{
		items: map[string][]domain.Item{
			"Docs": {{ID: 1, DisplayName: "locked.docx", ComplianceFlag: domain.Flag(7)}},
		},
	}
	counters := &Counters{}
	s := NewUnlockSweeper(testPolicy(), noPacer(), counters, nil, false, testLogger())

	if err := s.ProcessList(context.Background(), sess, domain.ListRef{SiteURL: "s", Title: "Docs"}); err != nil {
		t.Fatalf("ProcessList failed: %v", err)
	}
	if len(sess.calls) != 0 {
		t.Errorf("mutations in report-only mode: %v", sess.calls)
	}
	if counters.Qualifying.Load() != 1 {
		t.Errorf("Qualifying = %d, want 1", counters.Qualifying.Load())
	}
}

func TestUnlockSweeper_BadItemSkipsItemOnly(t *testing.T) {
	sess := &fakeSession{
		items: map[string][]domain.Item{
			"Docs": {
				{ID: 1, DisplayName: "bad.docx", ComplianceFlag: domain.Flag(7)},
				{ID: 2, DisplayName: "good.docx", ComplianceFlag: domain.Flag(7)},
			},
		},
		unlockErr: map[int]error{1: remoteErr("unlock item", 500)},
	}
	counters := &Counters{}
	failures := &recordingFailures{}
	s := NewUnlockSweeper(testPolicy(), noPacer(), counters, failures, true, testLogger())

	if err := s.ProcessList(context.Background(), sess, domain.ListRef{SiteURL: "s", Title: "Docs"}); err != nil {
		t.Fatalf("ProcessList failed: %v (item errors must not fail the list)", err)
	}

	if len(sess.calls) != 1 || sess.calls[0] != "unlock:Docs:2" {
		t.Errorf("calls = %v, want the second item still unlocked", sess.calls)
	}
	if counters.Failures.Load() != 1 {
		t.Errorf("Failures = %d, want 1", counters.Failures.Load())
	}
	if len(failures.records) != 1 || failures.records[0].ItemID != 1 {
		t.Errorf("failure records = %+v, want one for item 1", failures.records)
	}
}
