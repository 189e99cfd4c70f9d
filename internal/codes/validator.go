package codes

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"starrail-backend/internal/components/assert"
	"starrail-backend/internal/components/chrono"
	"starrail-backend/internal/components/telemetry"

	otelcodes "go.opentelemetry.io/otel/codes"
)

const (
	report_validator_revalidate = "validator.revalidate"
)

const DefaultValidateBackoff = time.Second * 15

type ValidatorOptions struct {
	// Backoff is the pause after every checked code, defaults to DefaultValidateBackoff.
	Backoff time.Duration
	// Pinned are codes that are never revalidated, defaults to SentinelCode.
	Pinned []string
}

type ValidationResult struct {
	// Skipped is true when no account is configured.
	Skipped bool
	// ActiveCodes were confirmed to still be valid.
	ActiveCodes []string
	// InactiveCodes were marked inactive during this run.
	InactiveCodes []string
	// UnknownCodes got a provider response that could not be interpreted,
	// their state was left untouched.
	UnknownCodes []string
}

type Validator struct {
	client  RedeemAPI
	store   StoreAPI
	sleep   chrono.SleepAPI
	tel     telemetry.API
	backoff time.Duration
	pinned  []string
}

func NewValidator(client RedeemAPI, store StoreAPI, sleep chrono.SleepAPI, tel telemetry.API, opts ValidatorOptions) Validator {
	assert.NotNil(client)
	assert.NotNil(store)
	assert.NotNil(sleep)
	assert.NotNil(tel)

	backoff := opts.Backoff
	if backoff == 0 {
		backoff = DefaultValidateBackoff
	}
	pinned := opts.Pinned
	if pinned == nil {
		pinned = []string{SentinelCode}
	}
	return Validator{
		client:  client,
		store:   store,
		sleep:   sleep,
		tel:     telemetry.NewScopedAPI("codes", tel),
		backoff: backoff,
		pinned:  pinned,
	}
}

// RevalidateActiveCodes re-submits every active code to the provider and
// marks the ones reported as expired or invalid as inactive. A code is never
// made active again.
func (v Validator) RevalidateActiveCodes(ctx context.Context) (ValidationResult, error) {
	ctx, span := tracer.Start(ctx, "RevalidateActiveCodes")
	defer span.End()

	fail := func(err error) error {
		v.tel.ReportBroken(report_validator_revalidate, err)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	records, err := v.store.ListActiveCodes(ctx)
	if err != nil {
		return ValidationResult{}, fail(fmt.Errorf("%w: list active codes: %w", ErrPersistence, err))
	}
	records = slices.DeleteFunc(records, func(r CodeRecord) bool {
		return slices.Contains(v.pinned, r.Code)
	})
	if len(records) == 0 {
		v.tel.ReportDebug("no active codes to validate")
		return ValidationResult{}, nil
	}
	slog.InfoContext(ctx, "validating active codes", "count", len(records))

	if !v.client.HasAccount() {
		v.tel.ReportWarning(report_validator_revalidate, "no account credentials configured, skipping validation")
		return ValidationResult{Skipped: true}, nil
	}

	result := ValidationResult{
		ActiveCodes:   []string{},
		InactiveCodes: []string{},
	}
	for _, rec := range records {
		res, err := v.client.Redeem(ctx, rec.Code)
		outcome := OutcomeTransportFailure
		if err != nil {
			v.tel.ReportBroken(report_validator_revalidate, fmt.Errorf("validate %s: %w", rec.Code, err))
		} else {
			outcome = res.Outcome()
		}

		switch outcome {
		case OutcomeTransportFailure:
			v.tel.ReportWarning(report_validator_revalidate, fmt.Errorf("validate %s: http status %d", rec.Code, res.HttpStatus))
		case OutcomeInvalidAccount:
			return result, fail(fmt.Errorf("%w: validate %s: %s", ErrInvalidAccount, rec.Code, res.Message))
		case OutcomeAlreadyRedeemed, OutcomeRedeemed:
			result.ActiveCodes = append(result.ActiveCodes, rec.Code)
		case OutcomeExpired, OutcomeInvalidCode:
			slog.WarnContext(ctx, "marking code as inactive", "code", rec.Code, "outcome", outcome.String(), "message", res.Message)
			err := v.store.SetCodeActive(ctx, rec.Code, false)
			if err != nil {
				err = fmt.Errorf("%w: deactivate %s: %w", ErrPersistence, rec.Code, err)
				return result, fail(err)
			}
			deactivatedCounter.Add(ctx, 1)
			result.InactiveCodes = append(result.InactiveCodes, rec.Code)
		case OutcomeCooldown:
			slog.WarnContext(ctx, "code is in cooldown", "code", rec.Code)
		default:
			v.tel.ReportWarning(report_validator_revalidate, providerError(rec.Code, res))
			result.UnknownCodes = append(result.UnknownCodes, rec.Code)
		}

		err = v.sleep.Sleep(ctx, v.backoff)
		if err != nil {
			return result, err
		}
	}

	v.tel.ReportCount(report_validator_revalidate, int64(len(result.InactiveCodes)))
	return result, nil
}
