package codes

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"starrail-backend/internal/components/assert"
	"starrail-backend/internal/components/chrono"
	"starrail-backend/internal/components/telemetry"
	"starrail-backend/lib/textutil"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_aggregator_discover = "aggregator.discover"
	report_aggregator_fetch    = "aggregator.fetch"
)

// DefaultLowPriority are the sources whose reports lose to every other source
// when the same code is reported more than once.
var DefaultLowPriority = []string{"HoyoLab Forum", "Eurogamer", "Prydwen"}

type AggregatorOptions struct {
	// LowPriority overrides DefaultLowPriority when non-nil.
	LowPriority []string
}

type Aggregator struct {
	sources     []SourceAPI
	store       StoreAPI
	time        chrono.API
	tel         telemetry.API
	lowPriority []string
}

func NewAggregator(sources []SourceAPI, store StoreAPI, clock chrono.API, tel telemetry.API, opts AggregatorOptions) Aggregator {
	assert.NotNil(store)
	assert.NotNil(clock)
	assert.NotNil(tel)

	lowPriority := opts.LowPriority
	if lowPriority == nil {
		lowPriority = DefaultLowPriority
	}
	return Aggregator{
		sources:     sources,
		store:       store,
		time:        clock,
		tel:         telemetry.NewScopedAPI("codes", tel),
		lowPriority: lowPriority,
	}
}

// fetchAll runs every source concurrently, the result keeps the order in
// which the sources were configured.
func (a Aggregator) fetchAll(ctx context.Context) []Candidate {
	results := make([][]Candidate, len(a.sources))
	wg := sync.WaitGroup{}
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src SourceAPI) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					a.tel.ReportBroken(report_aggregator_fetch, fmt.Errorf("source panicked: %v", r), src.Name())
				}
			}()
			results[i] = src.Fetch(ctx)
			a.tel.ReportDebug("fetched source", src.Name(), len(results[i]))
		}(i, src)
	}
	wg.Wait()

	var out []Candidate
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

func isUsable(c Candidate) bool {
	if c.Code == "" || len(c.Rewards) == 0 {
		return false
	}
	return !strings.Contains(strings.ToLower(c.Code), "random")
}

// Normalize filters out unusable candidates, moves low priority sources
// behind all others (keeping relative order) and removes duplicate codes
// keeping the first occurrence.
func Normalize(candidates []Candidate, lowPriority []string) []Candidate {
	filtered := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		c.Code = strings.TrimSpace(c.Code)
		if !isUsable(c) {
			continue
		}
		filtered = append(filtered, c)
	}

	slices.SortStableFunc(filtered, func(x, y Candidate) int {
		xl := textutil.MatchName(x.Source, lowPriority)
		yl := textutil.MatchName(y.Source, lowPriority)
		switch {
		case xl == yl:
			return 0
		case xl:
			return 1
		default:
			return -1
		}
	})

	seen := make(map[string]struct{}, len(filtered))
	deduped := make([]Candidate, 0, len(filtered))
	for _, c := range filtered {
		if _, ok := seen[c.Code]; ok {
			continue
		}
		seen[c.Code] = struct{}{}
		deduped = append(deduped, c)
	}
	return deduped
}

// DiscoverNewCodes collects codes from every source and persists the ones that
// were never seen before.
//
// On the very first run (empty store) every code is stored as inactive and
// nothing is returned. Afterwards, unknown codes are stored as active and
// returned.
func (a Aggregator) DiscoverNewCodes(ctx context.Context) ([]CodeRecord, error) {
	ctx, span := tracer.Start(ctx, "DiscoverNewCodes")
	defer span.End()

	candidates := Normalize(a.fetchAll(ctx), a.lowPriority)
	span.SetAttributes(attribute.Int("candidates", len(candidates)))

	count, err := a.store.CountCodes(ctx)
	if err != nil {
		return nil, a.persistenceFailure(span, "count codes", err)
	}
	now := a.time.Now()

	if count == 0 {
		records := make([]CodeRecord, len(candidates))
		for i, c := range candidates {
			records[i] = toRecord(c, now, false)
		}
		inserted, err := a.store.InsertCodes(ctx, records)
		if err != nil {
			return nil, a.persistenceFailure(span, "bootstrap insert", err)
		}
		a.tel.ReportDebug("bootstrapped code store", len(inserted))
		span.AddEvent("bootstrap", trace.WithAttributes(attribute.Int("inserted", len(inserted))))
		return []CodeRecord{}, nil
	}

	known, err := a.store.ListCodes(ctx)
	if err != nil {
		return nil, a.persistenceFailure(span, "list codes", err)
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, k := range known {
		knownSet[k.Code] = struct{}{}
	}

	var fresh []CodeRecord
	for _, c := range candidates {
		if _, ok := knownSet[c.Code]; ok {
			continue
		}
		fresh = append(fresh, toRecord(c, now, true))
	}
	if len(fresh) == 0 {
		return []CodeRecord{}, nil
	}

	inserted, err := a.store.InsertCodes(ctx, fresh)
	if err != nil {
		return nil, a.persistenceFailure(span, "insert codes", err)
	}
	for _, r := range inserted {
		span.AddEvent("new code", trace.WithAttributes(
			attribute.String("code", r.Code),
			attribute.String("source", r.Source),
		))
	}
	discoveredCounter.Add(ctx, int64(len(inserted)))
	a.tel.ReportCount(report_aggregator_discover, int64(len(inserted)))

	if inserted == nil {
		return []CodeRecord{}, nil
	}
	return inserted, nil
}

func (a Aggregator) persistenceFailure(span trace.Span, action string, err error) error {
	err = fmt.Errorf("%w: %s: %w", ErrPersistence, action, err)
	a.tel.ReportBroken(report_aggregator_discover, err)
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	return err
}

func toRecord(c Candidate, date time.Time, active bool) CodeRecord {
	return CodeRecord{
		Code:    c.Code,
		Rewards: c.Rewards,
		Source:  c.Source,
		Date:    date,
		Active:  active,
	}
}
