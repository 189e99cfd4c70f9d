package codes

import (
	"context"
	"testing"
	"time"

	"starrail-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestAggregator(store StoreAPI, sources ...SourceAPI) (Aggregator, *telemetry.Recorder) {
	tel := telemetry.NewRecorder()
	return NewAggregator(sources, store, fixedClock{now: testNow}, tel, AggregatorOptions{}), tel
}

func TestNormalizeFiltering(t *testing.T) {
	input := []Candidate{
		{Code: "", Rewards: []string{"Credit x5000"}, Source: "game8"},
		{Code: "RANDOMCODE12", Rewards: []string{"Credit x5000"}, Source: "game8"},
		{Code: "xxRandomxx", Rewards: []string{"Credit x5000"}, Source: "game8"},
		{Code: "NOREWARDS123", Rewards: nil, Source: "game8"},
		{Code: "  GOODCODE123 ", Rewards: []string{"Credit x5000"}, Source: "game8"},
	}

	out := Normalize(input, DefaultLowPriority)
	require.Len(t, out, 1)
	require.Equal(t, "GOODCODE123", out[0].Code)
}

func TestNormalizePriorityTieBreak(t *testing.T) {
	input := []Candidate{
		{Code: "X", Rewards: []string{"Stellar Jade x10"}, Source: "Prydwen"},
		{Code: "Y", Rewards: []string{"Credit x1"}, Source: "HoyoLab Forum"},
		{Code: "X", Rewards: []string{"Stellar Jade x60"}, Source: "game8"},
		{Code: "Z", Rewards: []string{"Fuel x1"}, Source: "Eurogamer"},
		{Code: "Z", Rewards: []string{"Fuel x2"}, Source: "Polygon"},
	}

	out := Normalize(input, DefaultLowPriority)
	require.Equal(t, []Candidate{
		{Code: "X", Rewards: []string{"Stellar Jade x60"}, Source: "game8"},
		{Code: "Z", Rewards: []string{"Fuel x2"}, Source: "Polygon"},
		{Code: "Y", Rewards: []string{"Credit x1"}, Source: "HoyoLab Forum"},
	}, out)
}

func TestNormalizeKeepsFirstWithinTier(t *testing.T) {
	input := []Candidate{
		{Code: "X", Rewards: []string{"a"}, Source: "game8"},
		{Code: "X", Rewards: []string{"b"}, Source: "Polygon"},
	}
	out := Normalize(input, DefaultLowPriority)
	require.Len(t, out, 1)
	require.Equal(t, "game8", out[0].Source)
}

func TestDiscoverBootstrap(t *testing.T) {
	store := &memStore{}
	agg, _ := newTestAggregator(store,
		fakeSource{name: "game8", candidates: fromSource("game8", "AAA", "BBB")},
		fakeSource{name: "Prydwen", candidates: fromSource("Prydwen", "BBB", "CCC")},
	)

	discovered, err := agg.DiscoverNewCodes(context.Background())
	require.NoError(t, err)
	require.Empty(t, discovered)

	records, err := store.ListCodes(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, r := range records {
		require.False(t, r.Active, r.Code)
		require.Equal(t, testNow, r.Date)
	}
	require.Equal(t, "game8", store.get("BBB").Source)
}

func TestDiscoverSteadyState(t *testing.T) {
	store := &memStore{records: []CodeRecord{
		{Code: "OLD", Rewards: []string{"Credit x1"}, Source: "game8", Active: false},
	}}
	agg, _ := newTestAggregator(store,
		fakeSource{name: "game8", candidates: fromSource("game8", "OLD", "NEW1")},
		fakeSource{name: "Polygon", candidates: fromSource("Polygon", "NEW2", "NEW1")},
	)

	discovered, err := agg.DiscoverNewCodes(context.Background())
	require.NoError(t, err)
	require.Len(t, discovered, 2)
	require.Equal(t, "NEW1", discovered[0].Code)
	require.Equal(t, "game8", discovered[0].Source)
	require.Equal(t, "NEW2", discovered[1].Code)
	for _, r := range discovered {
		require.True(t, r.Active)
	}

	// existing records are never overwritten
	require.False(t, store.get("OLD").Active)
}

func TestDiscoverIdempotent(t *testing.T) {
	store := &memStore{records: []CodeRecord{{Code: "SEED", Rewards: []string{"x"}, Source: "game8"}}}
	agg, _ := newTestAggregator(store,
		fakeSource{name: "game8", candidates: fromSource("game8", "A1", "B2")},
	)

	first, err := agg.DiscoverNewCodes(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := agg.DiscoverNewCodes(context.Background())
	require.NoError(t, err)
	require.Empty(t, second)

	count, err := store.CountCodes(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
}

func TestDiscoverSourceOrderIsDeterministic(t *testing.T) {
	store := &memStore{records: []CodeRecord{{Code: "SEED", Rewards: []string{"x"}, Source: "game8"}}}
	agg, _ := newTestAggregator(store,
		fakeSource{name: "star-rail-fandom", candidates: fromSource("star-rail-fandom", "SAME"), delay: time.Millisecond * 20},
		fakeSource{name: "Polygon", candidates: fromSource("Polygon", "SAME")},
	)

	discovered, err := agg.DiscoverNewCodes(context.Background())
	require.NoError(t, err)
	require.Len(t, discovered, 1)
	require.Equal(t, "star-rail-fandom", discovered[0].Source)
}

func TestDiscoverFailingSourceContributesNothing(t *testing.T) {
	store := &memStore{records: []CodeRecord{{Code: "SEED", Rewards: []string{"x"}, Source: "game8"}}}
	agg, _ := newTestAggregator(store,
		fakeSource{name: "game8"},
		fakeSource{name: "Polygon", candidates: fromSource("Polygon", "P1")},
	)

	discovered, err := agg.DiscoverNewCodes(context.Background())
	require.NoError(t, err)
	require.Len(t, discovered, 1)
	require.Equal(t, "P1", discovered[0].Code)
}
