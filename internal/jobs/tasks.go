// Package jobs runs the background side of the engine: warming the
// statement cache and re-running diagnostics after ledger mutations.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/contaflow/contaflow/internal/ledger"
	"github.com/contaflow/contaflow/internal/ledger/api"
	"github.com/contaflow/contaflow/internal/ledger/diagnostics"
	"github.com/contaflow/contaflow/internal/ledger/reports"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsRefresh rebuilds the derived statements of one company.
	TaskReportsRefresh = "reports:refresh"
)

// ReportsRefreshPayload identifies the company whose statements are
// rebuilt.
type ReportsRefreshPayload struct {
	CompanyID uuid.UUID `json:"companyId"`
}

// NewReportsRefreshTask constructs an Asynq task.
func NewReportsRefreshTask(payload ReportsRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsRefresh, data), nil
}

// Refresher rebuilds statement bundles into the cache and surfaces
// diagnostic findings in the worker log.
type Refresher struct {
	logger *slog.Logger
	repo   ledger.Repository
	codes  reports.Codes
	cache  *api.Cache
}

// NewRefresher constructs a Refresher.
func NewRefresher(logger *slog.Logger, repo ledger.Repository, codes reports.Codes, cache *api.Cache) *Refresher {
	return &Refresher{logger: logger, repo: repo, codes: codes, cache: cache}
}

// HandleReportsRefresh processes TaskReportsRefresh tasks.
func (r *Refresher) HandleReportsRefresh(ctx context.Context, t *asynq.Task) error {
	var payload ReportsRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	company, err := r.repo.GetCompany(ctx, payload.CompanyID)
	if err != nil {
		return err
	}

	key, err := r.cache.BuildKey(ctx, "reports", company.ID.String(), "bundle")
	if err != nil {
		return err
	}
	var vm reports.BundleViewModel
	err = r.cache.FetchJSON(ctx, key, &vm, func(ctx context.Context) (any, error) {
		chart := ledger.NewChart(company.Accounts)
		bundle, err := reports.BuildBundle(ctx, chart, company.Entries, r.codes)
		if err != nil {
			return nil, err
		}
		return reports.NewBundleViewModel(
			company.Name,
			company.FiscalYearStart.Format("2006"),
			ledger.Closed(company.Entries),
			bundle,
		), nil
	})
	if err != nil {
		return err
	}

	report := diagnostics.Run(company, r.codes)
	for _, finding := range report.Findings {
		r.logger.Warn("diagnostic finding",
			slog.String("company", company.Name),
			slog.String("check", string(finding.Check)),
			slog.String("severity", string(finding.Severity)),
			slog.String("message", finding.Message))
	}
	r.logger.Info("reports refreshed",
		slog.String("company", company.Name),
		slog.Bool("healthy", report.Healthy()))
	return nil
}

// Client submits jobs to the queue. It satisfies the HTTP layer's
// refresh scheduling interface.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueReportsRefresh enqueues a statement refresh for one company.
func (c *Client) EnqueueReportsRefresh(ctx context.Context, companyID uuid.UUID) error {
	task, err := NewReportsRefreshTask(ReportsRefreshPayload{CompanyID: companyID})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
