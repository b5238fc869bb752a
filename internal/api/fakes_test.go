package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"r2d2-service/internal/domain"
	"r2d2-service/internal/services"
	"r2d2-service/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const testToken = "s3cret"

type fakeEmailService struct {
	mu sync.Mutex

	enqueued    []domain.EmailRecord
	enqueueErr  error
	dispatchErr error
	dispatched  []int64
	dispatchCtx []error
	records     map[int64]domain.EmailRecord
	listErr     error
	listStatus  *domain.EmailStatus
	recent      []domain.EmailRecord
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{records: map[int64]domain.EmailRecord{}}
}

func (f *fakeEmailService) Enqueue(_ context.Context, sender, subject, body, _ string) (*domain.EmailRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enqueueErr != nil {
		return nil, f.enqueueErr
	}
	record := domain.EmailRecord{
		ID:       int64(len(f.enqueued) + 1),
		Sender:   sender,
		Receiver: "office@example.com",
		Subject:  subject,
		Body:     &body,
		Status:   domain.StatusQueued,
	}
	f.enqueued = append(f.enqueued, record)
	f.records[record.ID] = record
	return &record, nil
}

func (f *fakeEmailService) Dispatch(ctx context.Context, record *domain.EmailRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, record.ID)
	f.dispatchCtx = append(f.dispatchCtx, ctx.Err())
	if f.dispatchErr == nil {
		record.Status = domain.StatusSent
	}
	return f.dispatchErr
}

func (f *fakeEmailService) GetEmail(_ context.Context, id int64) (*domain.EmailRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &r, nil
}

func (f *fakeEmailService) ListEmails(_ context.Context, status *domain.EmailStatus) ([]domain.EmailRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listStatus = status
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.EmailRecord, 0, len(f.records))
	for _, r := range f.records {
		if status == nil || r.Status == *status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeEmailService) GetRecentSentEmails(context.Context, int, int) ([]domain.EmailRecord, int64, error) {
	return f.recent, int64(len(f.recent)), nil
}

type fakeFormService struct {
	mu sync.Mutex

	submitted []services.FormInput
	meta      []domain.SubmissionMetadata
	submitErr error
	forms     map[int64]domain.Form
}

func newFakeFormService() *fakeFormService {
	return &fakeFormService{forms: map[int64]domain.Form{}}
}

func (f *fakeFormService) SubmitForm(_ context.Context, input services.FormInput, meta domain.SubmissionMetadata) (*domain.Form, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, input)
	f.meta = append(f.meta, meta)
	form := domain.Form{
		ID:            int64(len(f.forms) + 1),
		FullName:      input.FullName,
		Email:         input.Email,
		Status:        domain.FormStatusNew,
		TermsAccepted: input.TermsAccepted,
		Subject:       input.Subject,
	}
	f.forms[form.ID] = form
	return &form, nil
}

func (f *fakeFormService) ListForms(_ context.Context, status *domain.FormStatus) ([]domain.Form, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Form, 0, len(f.forms))
	for _, form := range f.forms {
		if status == nil || form.Status == *status {
			out = append(out, form)
		}
	}
	return out, nil
}

func (f *fakeFormService) UpdateFormStatus(_ context.Context, id int64, status domain.FormStatus) (*domain.Form, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	form, ok := f.forms[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	form.Status = status
	f.forms[id] = form
	return &form, nil
}

type fakeSweeper struct {
	report services.SweepReport
	err    error
	calls  []string
}

func (f *fakeSweeper) Sweep(_ context.Context, trigger string) (services.SweepReport, error) {
	f.calls = append(f.calls, trigger)
	return f.report, f.err
}

type fakeJobs struct {
	running  bool
	triggers int
}

func (f *fakeJobs) Start(context.Context) error { f.running = true; return nil }
func (f *fakeJobs) Stop() error                 { f.running = false; return nil }
func (f *fakeJobs) IsRunning() bool             { return f.running }
func (f *fakeJobs) Trigger()                    { f.triggers++ }

type fakeVerifier struct {
	valid map[string]bool
	err   error
	calls int
}

func (f *fakeVerifier) Verify(_ context.Context, token, _ string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.valid[token], nil
}

type testServer struct {
	router   *gin.Engine
	emails   *fakeEmailService
	forms    *fakeFormService
	sweeper  *fakeSweeper
	jobs     *fakeJobs
	verifier *fakeVerifier
}

func newTestServer(t *testing.T, health map[string]HealthCheck, limiter *IPRateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		emails:   newFakeEmailService(),
		forms:    newFakeFormService(),
		sweeper:  &fakeSweeper{},
		jobs:     &fakeJobs{running: true},
		verifier: &fakeVerifier{valid: map[string]bool{"good-token": true}},
	}
	log := zap.NewNop()
	h := NewHandler(context.Background(), ts.emails, ts.forms, ts.sweeper, ts.jobs, health, log.Sugar())
	ts.router = NewRouter(h, RouterConfig{
		APIToken:    testToken,
		CORSOrigins: []string{"http://localhost:3000"},
		Debug:       true,
		Captcha:     ts.verifier,
		FormLimiter: limiter,
	}, log)
	return ts
}

func (ts *testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func bearer() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testToken}
}
