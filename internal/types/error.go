package types

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrRateLimitExceeded is retryable: the record stays QUEUED for the next sweep.
	ErrRateLimitExceeded = errors.New("email send rate limit exceeded")
	// ErrAlreadyClaimed means another dispatcher moved the record out of QUEUED first.
	ErrAlreadyClaimed   = errors.New("email record is no longer queued")
	ErrUnauthorized     = errors.New("invalid API token")
	ErrCaptchaFailed    = errors.New("captcha verification failed")
	ErrSweepInProgress  = errors.New("a queue sweep is already running")
	ErrTermsNotAccepted = errors.New("terms must be accepted")
)

// SendFailure is terminal for one record. The record has already been persisted as FAILED.
type SendFailure struct {
	RecordID int64
	Err      error
}

func (e *SendFailure) Error() string {
	return fmt.Sprintf("failed to send email %d: %v", e.RecordID, e.Err)
}

func (e *SendFailure) Unwrap() error { return e.Err }

// DatabaseError wraps a persistence failure with the operation that hit it.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

func NewDatabaseError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return &DatabaseError{Op: op, Err: err}
}
