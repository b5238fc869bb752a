package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"r2d2-service/internal/captcha"
	"r2d2-service/internal/domain"
	"r2d2-service/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader    = "X-Request-ID"
	captchaTokenHeader = "X-Captcha-Token"
	captchaTokenKey    = "captchaToken"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequireToken accepts only "Authorization: Bearer <token>" with the configured token.
func RequireToken(token string) gin.HandlerFunc {
	expected := []byte("Bearer " + token)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader("Authorization"))
		if token == "" || subtle.ConstantTimeCompare(got, expected) != 1 {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": types.ErrUnauthorized.Error()})
			return
		}
		c.Next()
	}
}

// RequireCaptcha rejects the request before any handler work unless the provider accepts
// the token from the X-Captcha-Token header.
func RequireCaptcha(verifier captcha.Verifier, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(captchaTokenHeader)
		ok, err := verifier.Verify(c.Request.Context(), token, realIP(c))
		if err != nil {
			log.Errorw("CAPTCHA provider unavailable", "error", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "captcha verification unavailable"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": types.ErrCaptchaFailed.Error()})
			return
		}
		c.Set(captchaTokenKey, token)
		c.Next()
	}
}

type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter is a token bucket per client IP for public endpoints.
type IPRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*ipLimiterEntry
	rate    rate.Limit
	burst   int
	maxAge  time.Duration
	now     func() time.Time
}

func NewIPRateLimiter(perSecond float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		entries: make(map[string]*ipLimiterEntry),
		rate:    rate.Limit(perSecond),
		burst:   burst,
		maxAge:  10 * time.Minute,
		now:     time.Now,
	}
}

func (l *IPRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[ip]
	if !ok {
		l.evictLocked(now)
		e = &ipLimiterEntry{limiter: rate.NewLimiter(l.rate, l.burst), lastSeen: now}
		l.entries[ip] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *IPRateLimiter) evictLocked(now time.Time) {
	for ip, e := range l.entries {
		if now.Sub(e.lastSeen) > l.maxAge {
			delete(l.entries, ip)
		}
	}
}

func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

func realIP(c *gin.Context) string {
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func parseForwardedFor(header string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(header, ",") {
		if ip := strings.TrimSpace(part); ip != "" {
			out = append(out, ip)
		}
	}
	return out
}

func submissionMetadata(c *gin.Context) domain.SubmissionMetadata {
	return domain.SubmissionMetadata{
		UserAgent:    c.Request.UserAgent(),
		Referrer:     c.Request.Referer(),
		ForwardedFor: parseForwardedFor(c.GetHeader("X-Forwarded-For")),
		RealIP:       realIP(c),
		CaptchaToken: c.GetString(captchaTokenKey),
	}
}
