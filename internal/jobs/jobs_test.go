package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"starrail-backend/internal/codes"
	"starrail-backend/internal/components/telemetry"
	"starrail-backend/internal/news"
	"starrail-backend/internal/store"

	"github.com/stretchr/testify/require"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time           { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
func (fixedClock) Location() *time.Location { return time.UTC }

type fakeDiscover struct {
	fresh   []codes.CodeRecord
	err     error
	panics  bool
	started chan struct{}
	release chan struct{}
}

func (f *fakeDiscover) DiscoverNewCodes(ctx context.Context) ([]codes.CodeRecord, error) {
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	if f.panics {
		var source codes.SourceAPI
		source.Name()
	}
	return f.fresh, f.err
}

type fakeRedeem struct {
	mutex    sync.Mutex
	received [][]codes.CodeRecord
	err      error
}

func (f *fakeRedeem) AttemptRedemption(ctx context.Context, records []codes.CodeRecord) (codes.RedeemResult, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.received = append(f.received, records)
	return codes.RedeemResult{}, f.err
}

type fakeValidate struct {
	calls int
	err   error
}

func (f *fakeValidate) RevalidateActiveCodes(ctx context.Context) (codes.ValidationResult, error) {
	f.calls++
	return codes.ValidationResult{InactiveCodes: []string{"OLDCODE12345"}}, f.err
}

type fakePoll struct {
	calls int
}

func (f *fakePoll) Poll(ctx context.Context) (news.PollResult, error) {
	f.calls++
	return news.PollResult{}, nil
}

type memErrorLog struct {
	mutex   sync.Mutex
	entries []store.ErrorEntry
}

func (m *memErrorLog) RecordError(ctx context.Context, entry store.ErrorEntry) (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.entries = append(m.entries, entry)
	return int64(len(m.entries)), nil
}

type fixture struct {
	discover *fakeDiscover
	redeem   *fakeRedeem
	validate *fakeValidate
	poll     *fakePoll
	errlog   *memErrorLog
	tel      *telemetry.Recorder
}

func setup() (*Scheduler, fixture) {
	f := fixture{
		discover: &fakeDiscover{},
		redeem:   &fakeRedeem{},
		validate: &fakeValidate{},
		poll:     &fakePoll{},
		errlog:   &memErrorLog{},
		tel:      telemetry.NewRecorder(),
	}
	s := NewScheduler(Dependencies{
		Discover: f.discover,
		Redeem:   f.redeem,
		Validate: f.validate,
		News:     f.poll,
		ErrorLog: f.errlog,
		Time:     fixedClock{},
		Tel:      f.tel,
	})
	return s, f
}

func TestDiscoveryRedeemsNewCodes(t *testing.T) {
	s, f := setup()
	f.discover.fresh = []codes.CodeRecord{{Code: "NEWCODE12345", Rewards: []string{"50 Stellar Jade"}}}

	err := s.RunDiscovery(context.Background())
	require.NoError(t, err)
	require.Equal(t, [][]codes.CodeRecord{f.discover.fresh}, f.redeem.received)
}

func TestDiscoveryWithoutNewCodes(t *testing.T) {
	s, f := setup()

	err := s.RunDiscovery(context.Background())
	require.NoError(t, err)
	require.Empty(t, f.redeem.received)
}

func TestFailuresArePersisted(t *testing.T) {
	s, f := setup()
	f.discover.fresh = []codes.CodeRecord{{Code: "NEWCODE12345"}}
	f.redeem.err = codes.ErrInvalidAccount
	f.validate.err = errors.New("store unavailable")

	err := s.RunDiscovery(context.Background())
	require.ErrorIs(t, err, codes.ErrInvalidAccount)
	err = s.RunValidation(context.Background())
	require.Error(t, err)

	require.Len(t, f.errlog.entries, 2)
	require.Equal(t, JobDiscover, f.errlog.entries[0].Name)
	require.Contains(t, f.errlog.entries[0].Message, codes.ErrInvalidAccount.Error())
	require.Equal(t, JobValidate, f.errlog.entries[1].Name)
	require.Equal(t, fixedClock{}.Now(), f.errlog.entries[1].CreatedAt)
	require.Len(t, f.tel.Reports("broken", report_job_failed), 2)
}

func TestSingleFlightAndSharedLock(t *testing.T) {
	s, f := setup()
	f.discover.started = make(chan struct{})
	f.discover.release = make(chan struct{})

	done := make(chan error)
	go func() {
		done <- s.RunDiscovery(context.Background())
	}()
	<-f.discover.started

	require.ErrorIs(t, s.RunDiscovery(context.Background()), ErrSkipped)
	require.ErrorIs(t, s.RunValidation(context.Background()), ErrSkipped)
	require.Equal(t, 0, f.validate.calls)

	require.NoError(t, s.RunNews(context.Background()))
	require.Equal(t, 1, f.poll.calls)

	close(f.discover.release)
	require.NoError(t, <-done)
	require.Len(t, f.tel.Reports("warning", report_job_skipped), 2)
	require.Empty(t, f.errlog.entries)

	require.NoError(t, s.RunValidation(context.Background()))
	require.Equal(t, 1, f.validate.calls)
}

type fakeCron struct {
	specs     []string
	callbacks []func()
}

func (c *fakeCron) Cron(spec string, callback func()) error {
	if spec == "invalid" {
		return errors.New("invalid spec")
	}
	c.specs = append(c.specs, spec)
	c.callbacks = append(c.callbacks, callback)
	return nil
}

func TestRegister(t *testing.T) {
	s, f := setup()
	cron := &fakeCron{}

	err := s.Register(context.Background(), cron, Schedule{News: "0 * * * *"})
	require.NoError(t, err)
	require.Equal(t, []string{"* * * * *", "*/30 * * * *", "0 * * * *"}, cron.specs)

	for _, cb := range cron.callbacks {
		cb()
	}
	require.Equal(t, 1, f.validate.calls)
	require.Equal(t, 1, f.poll.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cron = &fakeCron{}
	require.NoError(t, s.Register(ctx, cron, Schedule{}))
	cron.callbacks[2]()
	require.Equal(t, 1, f.poll.calls)

	require.Error(t, s.Register(context.Background(), &fakeCron{}, Schedule{Discover: "invalid"}))
}

func TestPanicIsPersisted(t *testing.T) {
	s, f := setup()
	f.discover.panics = true

	err := s.RunDiscovery(context.Background())
	require.ErrorIs(t, err, ErrPanicked)
	require.Contains(t, err.Error(), "nil pointer dereference")
	require.Empty(t, f.redeem.received)

	require.Len(t, f.errlog.entries, 1)
	entry := f.errlog.entries[0]
	require.Equal(t, JobDiscover, entry.Name)
	require.Contains(t, entry.Message, ErrPanicked.Error())
	require.Contains(t, entry.Stack, "DiscoverNewCodes")
	require.Len(t, f.tel.Reports("broken", report_job_failed), 1)

	// the single flight guard and the codes lock are released again
	f.discover.panics = false
	require.NoError(t, s.RunDiscovery(context.Background()))
	require.NoError(t, s.RunValidation(context.Background()))
}
