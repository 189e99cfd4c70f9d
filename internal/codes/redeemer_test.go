package codes

import (
	"context"
	"errors"
	"testing"
	"time"

	"starrail-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func records(codes ...string) []CodeRecord {
	out := make([]CodeRecord, len(codes))
	for i, c := range codes {
		out[i] = CodeRecord{Code: c, Rewards: []string{"Stellar Jade x60"}, Source: "game8", Active: true, Date: testNow}
	}
	return out
}

type redeemerFixture struct {
	provider *scriptedProvider
	notifier *recordingNotifier
	sleep    *recordingSleep
	tel      *telemetry.Recorder
	redeemer Redeemer
}

func newRedeemerFixture(responses map[string]ProviderResponse) redeemerFixture {
	f := redeemerFixture{
		provider: &scriptedProvider{account: true, responses: responses},
		notifier: &recordingNotifier{},
		sleep:    &recordingSleep{},
		tel:      telemetry.NewRecorder(),
	}
	f.redeemer = NewRedeemer(f.provider, f.notifier, f.sleep, f.tel, RedeemerOptions{})
	return f
}

func TestRedeemSuccessNotifies(t *testing.T) {
	f := newRedeemerFixture(nil)

	result, err := f.redeemer.AttemptRedemption(context.Background(), records("A", "B"))
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, result.Codes(OutcomeRedeemed))
	require.Equal(t, []string{"A", "B"}, f.notifier.sent)
	require.Equal(t, []time.Duration{DefaultRedeemBackoff, DefaultRedeemBackoff}, f.sleep.sleeps)
}

func TestRedeemAlreadyRedeemedDoesNotNotify(t *testing.T) {
	f := newRedeemerFixture(map[string]ProviderResponse{
		"A": retcodeResponse(-2017),
	})

	result, err := f.redeemer.AttemptRedemption(context.Background(), records("A"))
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, result.Codes(OutcomeAlreadyRedeemed))
	require.Empty(t, f.notifier.sent)
	require.Equal(t, 1, f.sleep.count())
}

func TestRedeemAbortsOnInvalidAccount(t *testing.T) {
	f := newRedeemerFixture(map[string]ProviderResponse{
		"B": retcodeResponse(-1071),
	})

	result, err := f.redeemer.AttemptRedemption(context.Background(), records("A", "B", "C"))
	require.ErrorIs(t, err, ErrInvalidAccount)
	require.Equal(t, []string{"A", "B"}, f.provider.attempted)
	require.Equal(t, []string{"A"}, result.Codes(OutcomeRedeemed))
	require.Equal(t, []string{"A"}, f.notifier.sent)
	// the pause still happens before surfacing the failure
	require.Equal(t, 2, f.sleep.count())
}

func TestRedeemAbortsOnUnknownRetcode(t *testing.T) {
	f := newRedeemerFixture(map[string]ProviderResponse{
		"A": retcodeResponse(-2001),
	})

	_, err := f.redeemer.AttemptRedemption(context.Background(), records("A", "B"))
	require.ErrorIs(t, err, ErrUnknownProviderError)
	require.Equal(t, []string{"A"}, f.provider.attempted)
	require.NotEmpty(t, f.tel.Reports("broken", report_redeemer_redeem))
}

func TestRedeemTransportFailureContinues(t *testing.T) {
	f := newRedeemerFixture(map[string]ProviderResponse{
		"A": {HttpStatus: 503, Message: "unavailable"},
	})
	f.provider.errs = map[string]error{"B": errors.New("connection reset")}

	result, err := f.redeemer.AttemptRedemption(context.Background(), records("A", "B", "C"))
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, result.Codes(OutcomeTransportFailure))
	require.Equal(t, []string{"C"}, result.Codes(OutcomeRedeemed))
	require.Equal(t, 3, f.sleep.count())
}

func TestRedeemNotificationFailureKeepsOutcome(t *testing.T) {
	f := newRedeemerFixture(nil)
	f.notifier.err = errors.New("webhook down")

	result, err := f.redeemer.AttemptRedemption(context.Background(), records("A", "B"))
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, result.Codes(OutcomeRedeemed))
	require.Len(t, f.tel.Reports("broken", report_redeemer_notify), 2)
}

func TestRedeemWithoutAccountSkips(t *testing.T) {
	f := newRedeemerFixture(nil)
	f.provider.account = false

	result, err := f.redeemer.AttemptRedemption(context.Background(), records("A"))
	require.NoError(t, err)
	require.True(t, result.Skipped)
	require.Empty(t, f.provider.attempted)
	require.Len(t, f.tel.Reports("warning", report_redeemer_redeem), 1)
}

func TestRedeemEmptyInput(t *testing.T) {
	f := newRedeemerFixture(nil)
	f.provider.account = false

	result, err := f.redeemer.AttemptRedemption(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, result.Skipped)
	require.Empty(t, f.tel.Reports("warning", ""))
}

func TestRedeemStopsWhenCancelled(t *testing.T) {
	f := newRedeemerFixture(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.redeemer.AttemptRedemption(ctx, records("A", "B"))
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []string{"A"}, f.provider.attempted)
}

func TestRedeemerNeverMutatesStore(t *testing.T) {
	store := &memStore{records: records("A")}
	f := newRedeemerFixture(map[string]ProviderResponse{"A": retcodeResponse(-2017)})

	_, err := f.redeemer.AttemptRedemption(context.Background(), store.records)
	require.NoError(t, err)
	require.True(t, store.get("A").Active)
}

func TestRedeemMalformedResponseIsNotSuccess(t *testing.T) {
	f := newRedeemerFixture(map[string]ProviderResponse{
		"A": {HttpStatus: 200, Malformed: true},
	})

	result, err := f.redeemer.AttemptRedemption(context.Background(), records("A", "B"))
	require.ErrorIs(t, err, ErrUnknownProviderError)
	require.Contains(t, err.Error(), "no retcode")
	require.Equal(t, []string{"A"}, result.Codes(OutcomeUnknownProviderError))
	require.Empty(t, result.Codes(OutcomeRedeemed))
	require.Empty(t, f.notifier.sent)
	require.Equal(t, []string{"A"}, f.provider.attempted)
}
