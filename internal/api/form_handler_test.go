package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"r2d2-service/internal/api/dto"
	"r2d2-service/internal/domain"
	"r2d2-service/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validForm = `{"full_name":"Jan Jansen","email":"jan@example.com","terms_accepted":true,"subject":"Huurgeschil","meeting_type":"virtual"}`

func captchaHeaders(token string) map[string]string {
	return map[string]string{
		"X-Captcha-Token": token,
		"User-Agent":      "test-agent",
		"Referer":         "https://zaansrecht.example/contact",
		"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
		"X-Real-IP":       "203.0.113.7",
	}
}

func TestCreateFormRejectsBadCaptcha(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	w := ts.do(http.MethodPost, "/forms/zaansrecht", validForm, captchaHeaders("bad-token"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, ts.verifier.calls)
	assert.Empty(t, ts.forms.submitted)
	assert.Zero(t, ts.jobs.triggers)
}

func TestCreateFormCaptchaProviderDown(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	ts.verifier.err = errors.New("provider timeout")

	w := ts.do(http.MethodPost, "/forms/zaansrecht", validForm, captchaHeaders("good-token"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, ts.forms.submitted)
}

func TestCreateForm(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	w := ts.do(http.MethodPost, "/forms/zaansrecht", validForm, captchaHeaders("good-token"))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.FormResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Jan Jansen", resp.FullName)
	assert.Equal(t, domain.FormStatusNew, resp.Status)
	assert.Equal(t, 1, ts.jobs.triggers)

	require.Len(t, ts.forms.meta, 1)
	meta := ts.forms.meta[0]
	assert.Equal(t, "test-agent", meta.UserAgent)
	assert.Equal(t, "https://zaansrecht.example/contact", meta.Referrer)
	assert.Equal(t, []string{"203.0.113.7", "10.0.0.1"}, meta.ForwardedFor)
	assert.Equal(t, "203.0.113.7", meta.RealIP)
	assert.Equal(t, "good-token", meta.CaptchaToken)
}

func TestCreateFormValidation(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	cases := map[string]string{
		"missing name":   `{"email":"jan@example.com","terms_accepted":true}`,
		"bad email":      `{"full_name":"Jan","email":"not-an-email","terms_accepted":true}`,
		"bad meeting":    `{"full_name":"Jan","email":"jan@example.com","terms_accepted":true,"meeting_type":"phone"}`,
		"malformed json": `{"full_name":`,
	}
	for name, body := range cases {
		w := ts.do(http.MethodPost, "/forms/zaansrecht", body, captchaHeaders("good-token"))
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}
	assert.Empty(t, ts.forms.submitted)
}

func TestCreateFormTermsNotAccepted(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	ts.forms.submitErr = types.ErrTermsNotAccepted

	w := ts.do(http.MethodPost, "/forms/zaansrecht", validForm, captchaHeaders("good-token"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, ts.jobs.triggers)
}

func TestCreateFormPerIPLimit(t *testing.T) {
	ts := newTestServer(t, nil, NewIPRateLimiter(0.001, 1))

	w := ts.do(http.MethodPost, "/forms/zaansrecht", validForm, captchaHeaders("good-token"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(http.MethodPost, "/forms/zaansrecht", validForm, captchaHeaders("good-token"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 1, ts.verifier.calls)
}

func TestListForms(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	ts.forms.forms[1] = domain.Form{ID: 1, Status: domain.FormStatusNew}
	ts.forms.forms[2] = domain.Form{ID: 2, Status: domain.FormStatusArchived}

	w := ts.do(http.MethodGet, "/forms/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodGet, "/forms/?status=ARCHIVED", "", bearer())
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.FormListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Forms, 1)
	assert.Equal(t, int64(2), resp.Forms[0].ID)

	w = ts.do(http.MethodGet, "/forms/?status=DONE", "", bearer())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateFormStatus(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	ts.forms.forms[1] = domain.Form{ID: 1, Status: domain.FormStatusNew}

	w := ts.do(http.MethodPut, "/forms/1/status", `{"new_status":"IN_PROGRESS"}`, bearer())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.FormStatusInProgress, ts.forms.forms[1].Status)

	w = ts.do(http.MethodPut, "/forms/42/status", `{"new_status":"COMPLETED"}`, bearer())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPut, "/forms/1/status", `{"new_status":"DONE"}`, bearer())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPut, "/forms/1/status", `{"new_status":"COMPLETED"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
