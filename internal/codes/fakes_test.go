package codes

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

type fakeSource struct {
	name       string
	candidates []Candidate
	delay      time.Duration
}

func (s fakeSource) Name() string { return s.name }

func (s fakeSource) Fetch(ctx context.Context) []Candidate {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.candidates
}

func fromSource(source string, codes ...string) []Candidate {
	out := make([]Candidate, len(codes))
	for i, c := range codes {
		out[i] = Candidate{Code: c, Rewards: []string{"Stellar Jade x60"}, Source: source}
	}
	return out
}

type memStore struct {
	mutex   sync.Mutex
	records []CodeRecord
	failSet bool
}

func (s *memStore) CountCodes(ctx context.Context) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return int64(len(s.records)), nil
}

func (s *memStore) ListCodes(ctx context.Context) ([]CodeRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return slices.Clone(s.records), nil
}

func (s *memStore) ListActiveCodes(ctx context.Context) ([]CodeRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var out []CodeRecord
	for _, r := range s.records {
		if r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) InsertCodes(ctx context.Context, records []CodeRecord) ([]CodeRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var inserted []CodeRecord
	for _, r := range records {
		exists := slices.ContainsFunc(s.records, func(e CodeRecord) bool { return e.Code == r.Code })
		if exists {
			continue
		}
		s.records = append(s.records, r)
		inserted = append(inserted, r)
	}
	return inserted, nil
}

func (s *memStore) SetCodeActive(ctx context.Context, code string, active bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.failSet {
		return fmt.Errorf("disk on fire")
	}
	for i, r := range s.records {
		if r.Code == code {
			s.records[i].Active = active
			return nil
		}
	}
	return fmt.Errorf("code %s does not exist", code)
}

func (s *memStore) get(code string) CodeRecord {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, r := range s.records {
		if r.Code == code {
			return r
		}
	}
	return CodeRecord{}
}

// scriptedProvider answers redemption attempts from a map of code -> response.
type scriptedProvider struct {
	mutex     sync.Mutex
	account   bool
	responses map[string]ProviderResponse
	errs      map[string]error
	attempted []string
}

func (p *scriptedProvider) HasAccount() bool { return p.account }

func (p *scriptedProvider) Redeem(ctx context.Context, code string) (ProviderResponse, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.attempted = append(p.attempted, code)
	if err, ok := p.errs[code]; ok {
		return ProviderResponse{}, err
	}
	res, ok := p.responses[code]
	if !ok {
		return ProviderResponse{HttpStatus: 200, Retcode: 0, Message: "OK"}, nil
	}
	return res, nil
}

func retcodeResponse(retcode int) ProviderResponse {
	return ProviderResponse{HttpStatus: 200, Retcode: retcode, Message: fmt.Sprintf("retcode %d", retcode)}
}

type recordingNotifier struct {
	mutex sync.Mutex
	sent  []string
	err   error
}

func (n *recordingNotifier) Send(ctx context.Context, record CodeRecord) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.sent = append(n.sent, record.Code)
	return n.err
}

type recordingSleep struct {
	mutex  sync.Mutex
	sleeps []time.Duration
}

func (s *recordingSleep) Sleep(ctx context.Context, d time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sleeps = append(s.sleeps, d)
	return ctx.Err()
}

func (s *recordingSleep) count() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.sleeps)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time           { return c.now }
func (c fixedClock) Location() *time.Location { return time.UTC }
