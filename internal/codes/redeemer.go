package codes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"starrail-backend/internal/components/assert"
	"starrail-backend/internal/components/chrono"
	"starrail-backend/internal/components/telemetry"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_redeemer_redeem = "redeemer.redeem"
	report_redeemer_notify = "redeemer.notify"
)

const DefaultRedeemBackoff = time.Second * 10

type RedeemerOptions struct {
	// Backoff is the pause after every attempt, defaults to DefaultRedeemBackoff.
	Backoff time.Duration
}

// Attempt is a single code sent to the provider and what came of it.
type Attempt struct {
	Code    string
	Outcome Outcome
	Message string
}

type RedeemResult struct {
	// Skipped is true when no account is configured.
	Skipped  bool
	Attempts []Attempt
}

// Codes returns the codes whose attempt ended with the given outcome.
func (r RedeemResult) Codes(outcome Outcome) []string {
	var out []string
	for _, a := range r.Attempts {
		if a.Outcome == outcome {
			out = append(out, a.Code)
		}
	}
	return out
}

type Redeemer struct {
	client  RedeemAPI
	notify  NotifyAPI
	sleep   chrono.SleepAPI
	tel     telemetry.API
	backoff time.Duration
}

// NewRedeemer creates a Redeemer, `notify` may be nil in which case successful
// redemptions are only logged.
func NewRedeemer(client RedeemAPI, notify NotifyAPI, sleep chrono.SleepAPI, tel telemetry.API, opts RedeemerOptions) Redeemer {
	assert.NotNil(client)
	assert.NotNil(sleep)
	assert.NotNil(tel)

	backoff := opts.Backoff
	if backoff == 0 {
		backoff = DefaultRedeemBackoff
	}
	return Redeemer{
		client:  client,
		notify:  notify,
		sleep:   sleep,
		tel:     telemetry.NewScopedAPI("codes", tel),
		backoff: backoff,
	}
}

// AttemptRedemption redeems the given codes one after the other on the
// configured account. It never modifies persisted state.
//
// An invalid account or a provider response it does not understand aborts the
// whole run, leaving the remaining codes unattempted.
func (r Redeemer) AttemptRedemption(ctx context.Context, records []CodeRecord) (RedeemResult, error) {
	ctx, span := tracer.Start(ctx, "AttemptRedemption")
	defer span.End()

	if len(records) == 0 {
		r.tel.ReportDebug("no codes to redeem")
		return RedeemResult{}, nil
	}
	if !r.client.HasAccount() {
		r.tel.ReportWarning(report_redeemer_redeem, "no account credentials configured, skipping redemption", len(records))
		return RedeemResult{Skipped: true}, nil
	}

	var result RedeemResult
	for _, rec := range records {
		outcome, res := r.attempt(ctx, span, rec.Code)
		result.Attempts = append(result.Attempts, Attempt{
			Code:    rec.Code,
			Outcome: outcome,
			Message: res.Message,
		})

		var fatal error
		switch outcome {
		case OutcomeTransportFailure:
			r.tel.ReportWarning(report_redeemer_redeem, fmt.Errorf("redeem %s: http status %d", rec.Code, res.HttpStatus))
		case OutcomeAlreadyRedeemed:
			slog.InfoContext(ctx, "code already redeemed, skipping", "code", rec.Code)
		case OutcomeRedeemed:
			slog.InfoContext(ctx, "successfully redeemed code", "code", rec.Code)
			redeemedCounter.Add(ctx, 1)
			r.publish(ctx, rec)
		case OutcomeInvalidAccount:
			fatal = fmt.Errorf("%w: redeem %s: %s", ErrInvalidAccount, rec.Code, res.Message)
		default:
			fatal = providerError(rec.Code, res)
		}

		err := r.sleep.Sleep(ctx, r.backoff)
		if fatal != nil {
			r.tel.ReportBroken(report_redeemer_redeem, fatal)
			span.RecordError(fatal)
			span.SetStatus(otelcodes.Error, fatal.Error())
			return result, fatal
		}
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

func (r Redeemer) attempt(ctx context.Context, span trace.Span, code string) (Outcome, ProviderResponse) {
	res, err := r.client.Redeem(ctx, code)
	if err != nil {
		r.tel.ReportBroken(report_redeemer_redeem, fmt.Errorf("redeem %s: %w", code, err))
		return OutcomeTransportFailure, ProviderResponse{Message: err.Error()}
	}
	outcome := res.Outcome()
	span.AddEvent("attempt", trace.WithAttributes(
		attribute.String("code", code),
		attribute.Int("retcode", res.Retcode),
		attribute.String("outcome", outcome.String()),
	))
	return outcome, res
}

func (r Redeemer) publish(ctx context.Context, rec CodeRecord) {
	if r.notify == nil {
		return
	}
	err := r.notify.Send(ctx, rec)
	if err != nil {
		r.tel.ReportBroken(report_redeemer_notify, fmt.Errorf("notify %s: %w", rec.Code, err))
	}
}
