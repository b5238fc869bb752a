package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at process start and shared read-only by every component.
type Config struct {
	ServerPort    string
	Debug         bool
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	APIToken      string
	CORSOrigins   []string

	Captcha  CaptchaConfig
	SMTP     SMTPConfig
	Throttle ThrottleConfig
	Sweep    SweepConfig
	FormRate FormRateConfig
}

type CaptchaConfig struct {
	Secret    string
	VerifyURL string
	Timeout   time.Duration
}

// SMTPConfig describes the outbound submission channel. From and To are fixed per
// deployment; users never pick the destination.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
	Timeout  time.Duration
}

// ThrottleConfig caps send attempts to Limit per rolling Window.
type ThrottleConfig struct {
	Limit  int
	Window time.Duration
}

type SweepConfig struct {
	Interval time.Duration
	LockTTL  time.Duration
}

type FormRateConfig struct {
	PerSecond float64
	Burst     int
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		Debug:         getEnvAsBool("DEBUG", false),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		APIToken:      getEnv("API_TOKEN", ""),
		CORSOrigins:   getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		Captcha: CaptchaConfig{
			Secret:    getEnv("CAPTCHA_SECRET", ""),
			VerifyURL: getEnv("CAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
			Timeout:   getEnvAsDuration("CAPTCHA_TIMEOUT", 10*time.Second),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("FROM_EMAIL", ""),
			To:       getEnv("TO_EMAIL", ""),
			Timeout:  getEnvAsDuration("SMTP_TIMEOUT", 30*time.Second),
		},
		Throttle: ThrottleConfig{
			Limit:  getEnvAsInt("THROTTLE_LIMIT", 3),
			Window: getEnvAsDuration("THROTTLE_WINDOW", time.Minute),
		},
		Sweep: SweepConfig{
			Interval: getEnvAsDuration("SWEEP_INTERVAL", time.Minute),
			LockTTL:  getEnvAsDuration("SWEEP_LOCK_TTL", 5*time.Minute),
		},
		FormRate: FormRateConfig{
			PerSecond: getEnvAsFloat("FORM_RATE_PER_SECOND", 1),
			Burst:     getEnvAsInt("FORM_RATE_BURST", 5),
		},
	}
}

// Validate reports every missing or nonsensical setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.APIToken == "" {
		errs = append(errs, errors.New("API_TOKEN is required"))
	}
	if c.SMTP.Host == "" {
		errs = append(errs, errors.New("SMTP_HOST is required"))
	}
	if c.SMTP.To == "" {
		errs = append(errs, errors.New("TO_EMAIL is required"))
	}
	if c.Throttle.Limit <= 0 {
		errs = append(errs, errors.New("THROTTLE_LIMIT must be positive"))
	}
	if c.Throttle.Window <= 0 {
		errs = append(errs, errors.New("THROTTLE_WINDOW must be positive"))
	}
	if c.Sweep.Interval <= 0 {
		errs = append(errs, errors.New("SWEEP_INTERVAL must be positive"))
	}
	if c.Sweep.LockTTL <= 0 {
		errs = append(errs, errors.New("SWEEP_LOCK_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	values := strings.Split(value, ",")
	for i, v := range values {
		values[i] = strings.TrimSpace(v)
	}
	return values
}
