// Package codes implements the lifecycle of redemption codes: discovering
// them from sources, redeeming them against the configured account and
// revalidating the ones still marked active.
package codes

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("starrail.internal.codes")
var meter = otel.Meter("starrail.internal.codes")

var discoveredCounter, _ = meter.Int64Counter("codes_discovered")
var redeemedCounter, _ = meter.Int64Counter("codes_redeemed")
var deactivatedCounter, _ = meter.Int64Counter("codes_deactivated")

// SentinelCode is a permanent code that never expires and is skipped by revalidation.
const SentinelCode = "STARRAILGIFT"

var (
	ErrInvalidAccount       = errors.New("invalid account credentials")
	ErrUnknownProviderError = errors.New("unknown provider error")
	ErrPersistence          = errors.New("persistence failure")
)

// CodeRecord is a redemption code as persisted in the store.
type CodeRecord struct {
	Code    string
	Rewards []string
	Source  string
	Date    time.Time
	Active  bool
}

// Candidate is a code as reported by a single source before deduplication.
type Candidate struct {
	Code    string
	Rewards []string
	Source  string
}

// SourceAPI is a single origin of candidate codes.
//
// note: fault injection point
type SourceAPI interface {
	Name() string
	// Fetch never fails, a source that cannot be read returns nothing.
	Fetch(ctx context.Context) []Candidate
}

// StoreAPI is the persistence the code lifecycle depends on.
//
// note: fault injection point
type StoreAPI interface {
	CountCodes(ctx context.Context) (int64, error)
	ListCodes(ctx context.Context) ([]CodeRecord, error)
	ListActiveCodes(ctx context.Context) ([]CodeRecord, error)
	// InsertCodes inserts every record whose code is not yet known and
	// returns the ones that were actually inserted. Existing records are
	// never overwritten.
	InsertCodes(ctx context.Context, records []CodeRecord) ([]CodeRecord, error)
	// SetCodeActive fails if the code does not exist.
	SetCodeActive(ctx context.Context, code string, active bool) error
}

// ProviderResponse is what the redemption endpoint answered for a single code.
type ProviderResponse struct {
	HttpStatus int
	Retcode    int
	Message    string
	// Malformed is set when the body carried no retcode (ex. a challenge
	// page), Retcode is meaningless then.
	Malformed bool
}

// RedeemAPI performs a single redemption attempt against the provider.
//
// note: fault injection point
type RedeemAPI interface {
	// HasAccount reports whether account credentials are configured.
	HasAccount() bool
	// Redeem returns an error only if no response could be obtained at all.
	Redeem(ctx context.Context, code string) (ProviderResponse, error)
}

// NotifyAPI publishes a successfully redeemed code.
//
// note: fault injection point
type NotifyAPI interface {
	Send(ctx context.Context, record CodeRecord) error
}
