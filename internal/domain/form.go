package domain

import (
	"fmt"
	"time"
)

type FormStatus string

const (
	FormStatusNew        FormStatus = "NEW"
	FormStatusInProgress FormStatus = "IN_PROGRESS"
	FormStatusCompleted  FormStatus = "COMPLETED"
	FormStatusArchived   FormStatus = "ARCHIVED"
)

func ParseFormStatus(s string) (FormStatus, error) {
	switch st := FormStatus(s); st {
	case FormStatusNew, FormStatusInProgress, FormStatusCompleted, FormStatusArchived:
		return st, nil
	}
	return "", fmt.Errorf("unknown form status %q", s)
}

type MeetingType string

const (
	MeetingInPerson MeetingType = "in_person"
	MeetingVirtual  MeetingType = "virtual"
)

// Form is a Zaansrecht contact form submission.
type Form struct {
	ID              int64      `json:"id" db:"id"`
	FullName        string     `json:"full_name" db:"full_name"`
	Email           string     `json:"email" db:"email"`
	Status          FormStatus `json:"status" db:"status"`
	TermsAccepted   bool       `json:"terms_accepted" db:"terms_accepted"`
	Telephone       *string    `json:"telephone" db:"telephone"`
	Description     *string    `json:"description" db:"description"`
	Subject         *string    `json:"subject" db:"subject"`
	MeetingDatetime *time.Time `json:"meeting_datetime" db:"meeting_datetime"`
	MeetingType     *string    `json:"meeting_type" db:"meeting_type"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at" db:"updated_at"`
}

// SubmissionMetadata is what the HTTP layer knows about the submitting client.
type SubmissionMetadata struct {
	UserAgent    string
	Referrer     string
	ForwardedFor []string
	RealIP       string
	CaptchaToken string
}

// FormSubmissionLog keeps request metadata of a form submission for abuse review.
type FormSubmissionLog struct {
	ID           int64     `json:"id" db:"id"`
	FormID       int64     `json:"form_id" db:"form_id"`
	UserAgent    string    `json:"user_agent" db:"user_agent"`
	Referrer     string    `json:"referrer" db:"referrer"`
	ForwardedFor []string  `json:"x_forwarded_for" db:"x_forwarded_for"`
	RealIP       string    `json:"real_ip" db:"real_ip"`
	CaptchaToken string    `json:"captcha_token" db:"captcha_token"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

const captchaTokenKeep = 16

// ShortenCaptchaToken keeps only a prefix of the token; the full value is a credential.
func ShortenCaptchaToken(token string) string {
	if len(token) <= captchaTokenKeep {
		return token
	}
	return token[:captchaTokenKeep] + "..."
}
