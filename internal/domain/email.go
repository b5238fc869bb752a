package domain

import (
	"fmt"
	"time"
)

type EmailStatus string

const (
	StatusQueued  EmailStatus = "QUEUED"
	StatusSending EmailStatus = "SENDING"
	StatusSent    EmailStatus = "SENT"
	StatusFailed  EmailStatus = "FAILED"
)

// ParseEmailStatus accepts only the four current states. The legacy PENDING value is rejected.
func ParseEmailStatus(s string) (EmailStatus, error) {
	switch st := EmailStatus(s); st {
	case StatusQueued, StatusSending, StatusSent, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown email status %q", s)
}

func (s EmailStatus) IsTerminal() bool {
	return s == StatusSent || s == StatusFailed
}

// EmailRecord is one send attempt and its outcome. Rows are never deleted.
type EmailRecord struct {
	ID           int64       `json:"id" db:"id"`
	Sender       string      `json:"sender" db:"sender"`
	Receiver     string      `json:"receiver" db:"receiver"`
	Subject      string      `json:"subject" db:"subject"`
	Body         *string     `json:"body" db:"body"`
	Status       EmailStatus `json:"status" db:"status"`
	ErrorMessage *string     `json:"error_message" db:"error_message"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    *time.Time  `json:"updated_at" db:"updated_at"`
}

// BodyText returns the body or "" when none was stored.
func (r *EmailRecord) BodyText() string {
	if r.Body == nil {
		return ""
	}
	return *r.Body
}
