package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"r2d2-service/config"
	"r2d2-service/internal/domain"
	"r2d2-service/internal/mail"
	"r2d2-service/internal/types"

	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeEmailRepo is an in-memory EmailRepository.
type fakeEmailRepo struct {
	mu      sync.Mutex
	clock   *fakeClock
	records map[int64]*domain.EmailRecord
	nextID  int64
	saveErr error
	saves   int
}

func newFakeEmailRepo(clock *fakeClock) *fakeEmailRepo {
	return &fakeEmailRepo{clock: clock, records: map[int64]*domain.EmailRecord{}}
}

func copyRecord(r *domain.EmailRecord) *domain.EmailRecord {
	c := *r
	return &c
}

func (f *fakeEmailRepo) Create(_ context.Context, record *domain.EmailRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	record.ID = f.nextID
	record.CreatedAt = f.clock.Now()
	record.Status = domain.StatusQueued
	record.ErrorMessage = nil
	f.records[record.ID] = copyRecord(record)
	return nil
}

func (f *fakeEmailRepo) GetByID(_ context.Context, id int64) (*domain.EmailRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return copyRecord(r), nil
}

func (f *fakeEmailRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.EmailRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.EmailRecord, 0, len(ids))
	for _, id := range ids {
		if r, ok := f.records[id]; ok {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeEmailRepo) List(_ context.Context, status *domain.EmailStatus) ([]domain.EmailRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.EmailRecord, 0)
	for _, r := range f.records {
		if status == nil || r.Status == *status {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEmailRepo) CountSince(_ context.Context, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.records {
		if r.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeEmailRepo) ClaimForSending(_ context.Context, id int64) (*domain.EmailRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok || r.Status != domain.StatusQueued {
		return nil, types.ErrAlreadyClaimed
	}
	r.Status = domain.StatusSending
	now := f.clock.Now()
	r.UpdatedAt = &now
	return copyRecord(r), nil
}

func (f *fakeEmailRepo) Save(_ context.Context, record *domain.EmailRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	r, ok := f.records[record.ID]
	if !ok {
		return types.ErrNotFound
	}
	r.Status = record.Status
	r.ErrorMessage = record.ErrorMessage
	r.UpdatedAt = record.UpdatedAt
	return nil
}

func (f *fakeEmailRepo) status(id int64) domain.EmailStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[id].Status
}

// fakeTransport records messages and fails according to failOn.
type fakeTransport struct {
	mu     sync.Mutex
	sent   []mail.Message
	calls  int
	failOn map[int]error
	block  bool
	panics bool
}

func (t *fakeTransport) Send(ctx context.Context, msg mail.Message) error {
	t.mu.Lock()
	t.calls++
	call := t.calls
	t.mu.Unlock()

	if t.panics {
		panic("smtp client exploded")
	}
	if t.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err, ok := t.failOn[call]; ok {
		return err
	}
	t.mu.Lock()
	t.sent = append(t.sent, msg)
	t.mu.Unlock()
	return nil
}

type fakeSentCache struct {
	mu  sync.Mutex
	ids []int64
}

func (c *fakeSentCache) AddSentEmail(_ context.Context, id int64, _ time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, id)
	return nil
}

func (c *fakeSentCache) GetSentEmailIDs(_ context.Context, page, pageSize int) ([]int64, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rev := make([]int64, len(c.ids))
	for i, id := range c.ids {
		rev[len(c.ids)-1-i] = id
	}
	start := (page - 1) * pageSize
	if start >= len(rev) {
		return []int64{}, int64(len(rev)), nil
	}
	end := min(start+pageSize, len(rev))
	return rev[start:end], int64(len(rev)), nil
}

type fakeLock struct {
	held     bool
	released int
}

func (l *fakeLock) TryLock(context.Context) (func(), bool, error) {
	if l.held {
		return nil, false, nil
	}
	l.held = true
	return func() {
		l.held = false
		l.released++
	}, true, nil
}

var testSMTP = config.SMTPConfig{
	Host:    "smtp.example.com",
	Port:    587,
	From:    "forms@example.com",
	To:      "office@example.com",
	Timeout: time.Second,
}

type emailFixture struct {
	clock     *fakeClock
	repo      *fakeEmailRepo
	transport *fakeTransport
	cache     *fakeSentCache
	svc       *emailService
}

func newEmailFixture(limit int) *emailFixture {
	clock := newFakeClock()
	repo := newFakeEmailRepo(clock)
	transport := &fakeTransport{failOn: map[int]error{}}
	sentCache := &fakeSentCache{}

	limiter := NewRateLimiter(repo, config.ThrottleConfig{Limit: limit, Window: time.Minute})
	limiter.now = clock.Now

	svc := NewEmailService(repo, sentCache, limiter, transport, testSMTP, zap.NewNop().Sugar()).(*emailService)
	svc.now = clock.Now

	return &emailFixture{clock: clock, repo: repo, transport: transport, cache: sentCache, svc: svc}
}
