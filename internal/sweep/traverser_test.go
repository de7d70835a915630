package sweep

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/minhvo/spsweep/internal/core/domain"
	"github.com/minhvo/spsweep/internal/throttle"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPolicy() *throttle.Policy {
	// One attempt and a recorded (not slept) backoff keep tests instant.
	return throttle.NewPolicy(1, time.Millisecond, testLogger()).
		WithSleep(func(context.Context, time.Duration) error { return nil })
}

func noPacer() *throttle.Pacer {
	return throttle.NewPacer(0, 0, 0, testLogger())
}

// fakeSession implements Session in memory and records mutations.
type fakeSession struct {
	lists    []domain.ListRef
	listsErr error

	labels   map[string]*domain.Label
	labelErr map[string]error
	resetErr map[string]error
	applyErr map[string]error

	items     map[string][]domain.Item
	itemsErr  map[string]error
	unlockErr map[int]error

	calls        []string
	disconnected bool
}

func (f *fakeSession) Lists(context.Context) ([]domain.ListRef, error) {
	return f.lists, f.listsErr
}

func (f *fakeSession) Label(_ context.Context, title string) (*domain.Label, error) {
	if err := f.labelErr[title]; err != nil {
		return nil, err
	}
	return f.labels[title], nil
}

func (f *fakeSession) ResetLabel(_ context.Context, title string) error {
	if err := f.resetErr[title]; err != nil {
		return err
	}
	f.calls = append(f.calls, "reset:"+title)
	return nil
}

func (f *fakeSession) ApplyLabel(_ context.Context, title, name string) error {
	if err := f.applyErr[title]; err != nil {
		return err
	}
	f.calls = append(f.calls, "apply:"+title+":"+name)
	return nil
}

func (f *fakeSession) Items(_ context.Context, title string) ([]domain.Item, error) {
	if err := f.itemsErr[title]; err != nil {
		return nil, err
	}
	return f.items[title], nil
}

func (f *fakeSession) UnlockItem(_ context.Context, title string, itemID int) (bool, error) {
	if err := f.unlockErr[itemID]; err != nil {
		return false, err
	}
	f.calls = append(f.calls, fmt.Sprintf("unlock:%s:%d", title, itemID))
	return true, nil
}

func (f *fakeSession) Disconnect() { f.disconnected = true }

// fakeConnector hands out per-site sessions and fails configured sites.
type fakeConnector struct {
	sessions   map[string]*fakeSession
	connectErr map[string]error
	attempted  []string
}

func (f *fakeConnector) Connect(_ context.Context, siteURL string) (Session, error) {
	f.attempted = append(f.attempted, siteURL)
	if err := f.connectErr[siteURL]; err != nil {
		return nil, err
	}
	sess, ok := f.sessions[siteURL]
	if !ok {
		sess = &fakeSession{}
		f.sessions[siteURL] = sess
	}
	return sess, nil
}

// recordingFailures collects RunFailure records.
type recordingFailures struct {
	records []domain.RunFailure
}

func (r *recordingFailures) Record(_ context.Context, f domain.RunFailure) {
	r.records = append(r.records, f)
}

func remoteErr(op string, status int) error {
	return &domain.RemoteError{Op: op, StatusCode: status}
}

func TestRun_BadSiteDoesNotAbortRun(t *testing.T) {
	conn := &fakeConnector{
		sessions: map[string]*fakeSession{
			"https://tenant/sites/a": {},
			"https://tenant/sites/c": {},
		},
		connectErr: map[string]error{
			"https://tenant/sites/b": remoteErr("connect site", 403),
		},
	}
	counters := &Counters{}
	failures := &recordingFailures{}
	tr := NewTraverser(conn,
		NewLabelSweeper(testPolicy(), counters, "", false, testLogger()),
		testPolicy(), noPacer(), counters, failures, testLogger())

	summary := tr.Run(context.Background(), []string{
		"https://tenant/sites/a",
		"https://tenant/sites/b",
		"https://tenant/sites/c",
	})

	if summary.SitesProcessed != 2 {
		t.Errorf("SitesProcessed = %d, want 2", summary.SitesProcessed)
	}
	if summary.SitesTotal != 3 {
		t.Errorf("SitesTotal = %d, want 3", summary.SitesTotal)
	}
	if len(conn.attempted) != 3 {
		t.Errorf("attempted %d sites, want 3 (site after the bad one must still run)", len(conn.attempted))
	}
	if len(failures.records) != 1 || failures.records[0].SiteURL != "https://tenant/sites/b" {
		t.Errorf("failure records = %+v, want one for site b", failures.records)
	}
}

func TestRun_BadListSkipsListOnly(t *testing.T) {
	sess := &fakeSession{
		lists: []domain.ListRef{
			{SiteURL: "s", Title: "Good"},
			{SiteURL: "s", Title: "Bad"},
			{SiteURL: "s", Title: "AlsoGood"},
		},
		labels: map[string]*domain.Label{
			"Good":     {Name: "Record"},
			"AlsoGood": {Name: "Record"},
		},
		labelErr: map[string]error{"Bad": remoteErr("get label", 500)},
	}
	conn := &fakeConnector{sessions: map[string]*fakeSession{"s": sess}}
	counters := &Counters{}
	tr := NewTraverser(conn,
		NewLabelSweeper(testPolicy(), counters, "", false, testLogger()),
		testPolicy(), noPacer(), counters, nil, testLogger())

	summary := tr.Run(context.Background(), []string{"s"})

	if summary.ListsProcessed != 2 {
		t.Errorf("ListsProcessed = %d, want 2", summary.ListsProcessed)
	}
	if summary.SitesProcessed != 1 {
		t.Errorf("SitesProcessed = %d, want 1 (a bad list does not fail the site)", summary.SitesProcessed)
	}
	if summary.Failures != 1 {
		t.Errorf("Failures = %d, want 1", summary.Failures)
	}
}

func TestRun_EnumerationFailureSkipsSite(t *testing.T) {
	sess := &fakeSession{listsErr: remoteErr("enumerate lists", 500)}
	conn := &fakeConnector{sessions: map[string]*fakeSession{"s": sess}}
	counters := &Counters{}
	tr := NewTraverser(conn,
		NewLabelSweeper(testPolicy(), counters, "", false, testLogger()),
		testPolicy(), noPacer(), counters, nil, testLogger())

	summary := tr.Run(context.Background(), []string{"s"})

	if summary.SitesProcessed != 0 {
		t.Errorf("SitesProcessed = %d, want 0", summary.SitesProcessed)
	}
	if !sess.disconnected {
		t.Error("session must be released on the enumeration error path")
	}
}

func TestRun_PacingSkipsTrailingDelays(t *testing.T) {
	sessA := &fakeSession{lists: []domain.ListRef{{SiteURL: "a", Title: "L1"}, {SiteURL: "a", Title: "L2"}}}
	sessB := &fakeSession{lists: []domain.ListRef{{SiteURL: "b", Title: "L1"}}}
	conn := &fakeConnector{sessions: map[string]*fakeSession{"a": sessA, "b": sessB}}

	var waits []time.Duration
	pacer := throttle.NewPacer(0, 2*time.Second, 30*time.Second, testLogger()).
		WithSleep(func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		})

	counters := &Counters{}
	tr := NewTraverser(conn,
		NewLabelSweeper(testPolicy(), counters, "", false, testLogger()),
		testPolicy(), pacer, counters, nil, testLogger())
	tr.Run(context.Background(), []string{"a", "b"})

	// Site a: one list-gap wait. Between a and b: one site wait. Site b has
	// a single list, no list wait, and no wait after the final site.
	want := []time.Duration{2 * time.Second, 30 * time.Second}
	if len(waits) != len(want) {
		t.Fatalf("waits = %v, want %v", waits, want)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Errorf("wait %d = %v, want %v", i, waits[i], want[i])
		}
	}
}

func TestRun_CancellationStopsAtSiteBoundary(t *testing.T) {
	conn := &fakeConnector{sessions: map[string]*fakeSession{"a": {}, "b": {}}}
	counters := &Counters{}
	tr := NewTraverser(conn,
		NewLabelSweeper(testPolicy(), counters, "", false, testLogger()),
		testPolicy(), noPacer(), counters, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	tr.WithProgress(func(done, total int) {
		if done == 1 {
			cancel()
		}
	})

	summary := tr.Run(ctx, []string{"a", "b", "c"})

	if len(conn.attempted) != 1 {
		t.Errorf("attempted %d sites after cancel, want 1", len(conn.attempted))
	}
	if summary.SitesProcessed != 1 {
		t.Errorf("SitesProcessed = %d, want 1", summary.SitesProcessed)
	}
}
