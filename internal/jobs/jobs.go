// Package jobs runs the periodic discovery, validation and news jobs.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"starrail-backend/internal/codes"
	"starrail-backend/internal/components/assert"
	"starrail-backend/internal/components/chrono"
	"starrail-backend/internal/components/telemetry"
	"starrail-backend/internal/news"
	"starrail-backend/internal/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("starrail.internal.jobs")

const (
	report_job_skipped   = "job.skipped"
	report_job_failed    = "job.failed"
	report_job_error_log = "job.error_log"
)

const (
	JobDiscover = "discover"
	JobValidate = "validate"
	JobNews     = "news"
)

// ErrSkipped is returned by a run that did not start because the job (or the
// job it excludes) was still running.
var ErrSkipped = errors.New("job skipped: another run is in progress")

// ErrPanicked wraps a panic raised while a job was running.
var ErrPanicked = errors.New("job panicked")

type DiscoverAPI interface {
	DiscoverNewCodes(ctx context.Context) ([]codes.CodeRecord, error)
}

type RedeemAPI interface {
	AttemptRedemption(ctx context.Context, records []codes.CodeRecord) (codes.RedeemResult, error)
}

type ValidateAPI interface {
	RevalidateActiveCodes(ctx context.Context) (codes.ValidationResult, error)
}

type PollAPI interface {
	Poll(ctx context.Context) (news.PollResult, error)
}

// ErrorLogAPI persists failed runs.
//
// note: fault injection point
type ErrorLogAPI interface {
	RecordError(ctx context.Context, entry store.ErrorEntry) (int64, error)
}

type Schedule struct {
	Discover string `json:"discover"`
	Validate string `json:"validate"`
	News     string `json:"news"`
}

var DefaultSchedule = Schedule{
	Discover: "* * * * *",
	Validate: "*/30 * * * *",
	News:     "*/15 * * * *",
}

type Dependencies struct {
	Discover DiscoverAPI
	Redeem   RedeemAPI
	Validate ValidateAPI
	News     PollAPI
	ErrorLog ErrorLogAPI
	Time     chrono.API
	Tel      telemetry.API
}

type Scheduler struct {
	deps Dependencies
	tel  telemetry.API

	// codesLock is held by discovery and validation so they never overlap,
	// both submit codes to the same account.
	codesLock sync.Mutex
	running   map[string]*atomic.Bool
}

func NewScheduler(deps Dependencies) *Scheduler {
	assert.NotNil(deps.Discover)
	assert.NotNil(deps.Redeem)
	assert.NotNil(deps.Validate)
	assert.NotNil(deps.News)
	assert.NotNil(deps.ErrorLog)
	assert.NotNil(deps.Time)
	assert.NotNil(deps.Tel)

	return &Scheduler{
		deps: deps,
		tel:  telemetry.NewScopedAPI("jobs", deps.Tel),
		running: map[string]*atomic.Bool{
			JobDiscover: {},
			JobValidate: {},
			JobNews:     {},
		},
	}
}

// Register adds every job to the cron, empty fields in `schedule` fall back
// to DefaultSchedule. Runs started by the cron use `ctx`.
func (s *Scheduler) Register(ctx context.Context, cron chrono.CronAPI, schedule Schedule) error {
	if schedule.Discover == "" {
		schedule.Discover = DefaultSchedule.Discover
	}
	if schedule.Validate == "" {
		schedule.Validate = DefaultSchedule.Validate
	}
	if schedule.News == "" {
		schedule.News = DefaultSchedule.News
	}

	jobs := []struct {
		spec string
		run  func(context.Context) error
	}{
		{spec: schedule.Discover, run: s.RunDiscovery},
		{spec: schedule.Validate, run: s.RunValidation},
		{spec: schedule.News, run: s.RunNews},
	}
	for _, job := range jobs {
		run := job.run
		err := cron.Cron(job.spec, func() {
			if ctx.Err() != nil {
				return
			}
			run(ctx)
		})
		if err != nil {
			return fmt.Errorf("register %q: %w", job.spec, err)
		}
	}
	return nil
}

// run executes fn unless the job is already running. When `exclusive` is set
// the shared codes lock must also be free.
func (s *Scheduler) run(ctx context.Context, name string, exclusive bool, fn func(ctx context.Context) error) error {
	flight := s.running[name]
	if !flight.CompareAndSwap(false, true) {
		s.tel.ReportWarning(report_job_skipped, name, "previous run still in progress")
		return ErrSkipped
	}
	defer flight.Store(false)

	if exclusive {
		if !s.codesLock.TryLock() {
			s.tel.ReportWarning(report_job_skipped, name, "codes are being processed by another job")
			return ErrSkipped
		}
		defer s.codesLock.Unlock()
	}

	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, name)
	defer span.End()
	span.SetAttributes(attribute.String("run_id", runID))
	slog.DebugContext(ctx, "job started", "job", name, "run_id", runID)

	stack, err := call(ctx, fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.tel.ReportBroken(report_job_failed, name, runID, err)
		s.persist(ctx, name, runID, stack, err)
		return err
	}
	slog.DebugContext(ctx, "job finished", "job", name, "run_id", runID)
	return nil
}

// call runs fn, turning a panic into an ErrPanicked error along with the
// stack it was raised on.
func call(ctx context.Context, fn func(ctx context.Context) error) (stack string, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack = string(debug.Stack())
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()
	return "", fn(ctx)
}

func (s *Scheduler) persist(ctx context.Context, name, runID, stack string, err error) {
	_, logErr := s.deps.ErrorLog.RecordError(context.WithoutCancel(ctx), store.ErrorEntry{
		Name:      name,
		Message:   fmt.Sprintf("%s (run %s)", err.Error(), runID),
		Stack:     stack,
		CreatedAt: s.deps.Time.Now(),
	})
	if logErr != nil {
		s.tel.ReportBroken(report_job_error_log, logErr)
	}
}

// RunDiscovery discovers new codes and immediately tries to redeem them.
func (s *Scheduler) RunDiscovery(ctx context.Context) error {
	return s.run(ctx, JobDiscover, true, func(ctx context.Context) error {
		fresh, err := s.deps.Discover.DiscoverNewCodes(ctx)
		if err != nil {
			return err
		}
		if len(fresh) == 0 {
			return nil
		}
		slog.InfoContext(ctx, "discovered new codes", "count", len(fresh))
		_, err = s.deps.Redeem.AttemptRedemption(ctx, fresh)
		return err
	})
}

func (s *Scheduler) RunValidation(ctx context.Context) error {
	return s.run(ctx, JobValidate, true, func(ctx context.Context) error {
		result, err := s.deps.Validate.RevalidateActiveCodes(ctx)
		if err != nil {
			return err
		}
		if len(result.InactiveCodes) > 0 {
			slog.InfoContext(ctx, "deactivated codes", "codes", result.InactiveCodes)
		}
		return nil
	})
}

func (s *Scheduler) RunNews(ctx context.Context) error {
	return s.run(ctx, JobNews, false, func(ctx context.Context) error {
		_, err := s.deps.News.Poll(ctx)
		return err
	})
}
