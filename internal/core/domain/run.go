package domain

import "time"

// SweepMode identifies which maintenance action a run performs.
type SweepMode string

const (
	ModeLabels SweepMode = "labels"
	ModeUnlock SweepMode = "unlock"
)

// Run is one persisted sweep execution, written to the audit store when a
// run finishes.
type Run struct {
	ID             string    `json:"id"`
	Mode           SweepMode `json:"mode"`
	ReportOnly     bool      `json:"report_only"`
	SitesTotal     int64     `json:"sites_total"`
	SitesProcessed int64     `json:"sites_processed"`
	ListsProcessed int64     `json:"lists_processed"`
	Qualifying     int64     `json:"qualifying"`
	ActedOn        int64     `json:"acted_on"`
	Failures       int64     `json:"failures"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// RunFailure records one skipped unit (site, list or item) within a run.
type RunFailure struct {
	RunID     string    `json:"run_id"`
	SiteURL   string    `json:"site_url"`
	ListTitle string    `json:"list_title,omitempty"`
	ItemID    int       `json:"item_id,omitempty"`
	Error     string    `json:"error_msg"`
	CreatedAt time.Time `json:"created_at"`
}
