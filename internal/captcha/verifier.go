package captcha

import (
	"context"
	"fmt"

	"r2d2-service/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Verifier asks the CAPTCHA provider whether a client token is valid.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
}

type httpVerifier struct {
	client *resty.Client
	secret string
	url    string
	log    *zap.SugaredLogger
}

// NewVerifier speaks the siteverify protocol shared by reCAPTCHA, hCaptcha and Turnstile.
func NewVerifier(cfg config.CaptchaConfig, log *zap.SugaredLogger) Verifier {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	return &httpVerifier{
		client: client,
		secret: cfg.Secret,
		url:    cfg.VerifyURL,
		log:    log,
	}
}

func (v *httpVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if token == "" {
		return false, nil
	}

	form := map[string]string{
		"secret":   v.secret,
		"response": token,
	}
	if remoteIP != "" {
		form["remoteip"] = remoteIP
	}

	var result verifyResponse
	resp, err := v.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&result).
		Post(v.url)
	if err != nil {
		return false, fmt.Errorf("captcha verification request failed: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("captcha verification returned %s", resp.Status())
	}

	if !result.Success {
		v.log.Warnw("CAPTCHA rejected", "errorCodes", result.ErrorCodes, "remoteIP", remoteIP)
	}
	return result.Success, nil
}
