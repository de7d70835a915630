// Package control wires configuration, adapters and the sweep core into a
// runnable application.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/minhvo/spsweep/internal/core/config"
	"github.com/minhvo/spsweep/internal/core/domain"
	redisclient "github.com/minhvo/spsweep/internal/infra/redis"
	"github.com/minhvo/spsweep/internal/infra/sharepoint"
	"github.com/minhvo/spsweep/internal/infra/storage"
	"github.com/minhvo/spsweep/internal/infra/storage/memory"
	"github.com/minhvo/spsweep/internal/infra/storage/postgres"
	"github.com/minhvo/spsweep/internal/sweep"
	"github.com/minhvo/spsweep/internal/throttle"
)

// App holds the long-lived dependencies of a sweep run.
type App struct {
	cfg         *config.AppConfig
	log         *slog.Logger
	runRepo     storage.RunRepository
	db          *postgres.DB
	redisClient *redisclient.Client
	spClient    *sharepoint.Client
	server      *Server
}

// NewApp initializes storage, the optional failed-site queue and the
// SharePoint client. Persistence falls back to memory when no database is
// configured.
func NewApp(cfg *config.AppConfig, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	app := &App{cfg: cfg, log: log}

	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
		app.db = db
		app.runRepo = postgres.NewRunRepo(db)
		log.Info("Using PostgreSQL audit store")
	} else {
		app.runRepo = memory.NewRunRepo()
		log.Info("Using in-memory audit store")
	}

	if cfg.Redis.URL != "" {
		rc, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		app.redisClient = rc
		log.Info("Failed-site queue enabled")
	}

	app.spClient = sharepoint.NewClient(cfg.SharePoint, cfg.Sites.IgnoreLists, log)

	if cfg.Server.Port > 0 {
		app.server = NewServer(cfg.Server.Port)
	}

	return app, nil
}

// Close releases all connections.
func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
}

// RunRepo exposes the audit store, for the status command.
func (a *App) RunRepo() storage.RunRepository { return a.runRepo }

// FailedSites exposes the failed-site queue, nil when disabled.
func (a *App) FailedSites() *redisclient.Client { return a.redisClient }

// RunSweep executes one full traversal in the given mode and persists the
// run record. The returned summary reflects the counters at completion.
// Only a missing/unreadable site list is a hard failure; every remote
// error has already been degraded to a logged skip by the time this
// returns.
func (a *App) RunSweep(ctx context.Context, mode domain.SweepMode, apply bool, progress func(done, total int)) (sweep.Summary, error) {
	sites, err := sweep.ReadSiteFile(a.cfg.Sites.File)
	if err != nil {
		return sweep.Summary{}, err
	}

	if a.server != nil {
		a.server.Start(a.log)
		defer a.server.Stop()
	}

	runID := uuid.NewString()
	counters := &sweep.Counters{}
	policy := throttle.NewPolicy(a.cfg.Retry.MaxAttempts, a.cfg.Retry.BaseDelay(), a.log)
	pacer := throttle.NewPacer(
		a.cfg.Pacing.ItemDelay(),
		a.cfg.Pacing.ListDelay(),
		a.cfg.Pacing.SiteDelay(),
		a.log,
	)

	recorder := &failureRecorder{
		runID: runID,
		mode:  mode,
		repo:  a.runRepo,
		queue: a.redisClient,
		log:   a.log,
	}

	var processor sweep.ListProcessor
	switch mode {
	case domain.ModeLabels:
		processor = sweep.NewLabelSweeper(policy, counters, a.cfg.Labels.Target, apply, a.log)
	case domain.ModeUnlock:
		processor = sweep.NewUnlockSweeper(policy, pacer, counters, recorder, apply, a.log)
	default:
		return sweep.Summary{}, fmt.Errorf("unknown sweep mode %q", mode)
	}

	traverser := sweep.NewTraverser(
		spConnector{client: a.spClient},
		processor, policy, pacer, counters, recorder, a.log,
	)
	if progress != nil {
		traverser.WithProgress(progress)
	}

	a.log.Info("starting sweep",
		"mode", mode, "apply", apply, "run_id", runID, "sites", len(sites))
	startedAt := time.Now()
	summary := traverser.Run(ctx, sites)
	finishedAt := time.Now()

	run := &domain.Run{
		ID:             runID,
		Mode:           mode,
		ReportOnly:     !apply,
		SitesTotal:     summary.SitesTotal,
		SitesProcessed: summary.SitesProcessed,
		ListsProcessed: summary.ListsProcessed,
		Qualifying:     summary.Qualifying,
		ActedOn:        summary.ActedOn,
		Failures:       summary.Failures,
		StartedAt:      startedAt,
		FinishedAt:     finishedAt,
	}
	if err := a.runRepo.SaveRun(ctx, run); err != nil {
		// The audit record is best-effort; the summary still reaches the
		// user through the log.
		a.log.Warn("failed to persist run record", "run_id", runID, "error", err)
	}

	a.log.Info("sweep finished",
		"mode", mode, "run_id", runID,
		"duration", finishedAt.Sub(startedAt).Round(time.Second),
		"summary", summary.String())

	return summary, nil
}

// spConnector adapts the SharePoint client to the traversal's Connector.
type spConnector struct {
	client *sharepoint.Client
}

func (c spConnector) Connect(ctx context.Context, siteURL string) (sweep.Session, error) {
	sess, err := c.client.Connect(ctx, siteURL)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// failureRecorder fans skipped units out to the audit store and, for
// site-level failures, the redis re-run queue. Recording failures must
// never abort the run, so its own errors are only warned about.
type failureRecorder struct {
	runID string
	mode  domain.SweepMode
	repo  storage.RunRepository
	queue *redisclient.Client
	log   *slog.Logger
}

func (r *failureRecorder) Record(ctx context.Context, f domain.RunFailure) {
	f.RunID = r.runID
	if err := r.repo.RecordFailure(ctx, &f); err != nil {
		r.log.Warn("failed to record failure in audit store", "error", err)
	}

	siteLevel := f.ListTitle == "" && f.ItemID == 0
	if siteLevel && r.queue != nil {
		if err := r.queue.PushSite(ctx, string(r.mode), f.SiteURL); err != nil {
			r.log.Warn("failed to queue failed site", "site", f.SiteURL, "error", err)
		}
	}
}
