package dto

import (
	"time"

	"r2d2-service/internal/domain"
)

type SendEmailRequest struct {
	Sender  string `json:"sender" form:"sender" binding:"required,max=320"`
	Subject string `json:"subject" form:"subject" binding:"required,max=998"`
	Message string `json:"message" form:"message"`
}

type EmailQueuedResponse struct {
	Status  string             `json:"status"`
	EmailID int64              `json:"email_id"`
	State   domain.EmailStatus `json:"email_status,omitempty"`
	Detail  string             `json:"detail,omitempty"`
}

type EmailResponse struct {
	ID           int64              `json:"id"`
	Sender       string             `json:"sender"`
	Receiver     string             `json:"receiver"`
	Subject      string             `json:"subject"`
	Body         *string            `json:"body"`
	Status       domain.EmailStatus `json:"status"`
	ErrorMessage *string            `json:"error_message"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    *time.Time         `json:"updated_at"`
}

type SentEmailsResponse struct {
	SentEmails []EmailResponse `json:"sent_emails"`
}

type AllEmailsResponse struct {
	AllEmails []EmailResponse `json:"all_emails"`
}

type EmailStatusResponse struct {
	EmailID int64              `json:"email_id"`
	Status  domain.EmailStatus `json:"status"`
}

type RecentSentEmailsResponse struct {
	Emails []EmailResponse `json:"emails"`
	Total  int64           `json:"total"`
}

type JobResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func ToEmailResponse(r domain.EmailRecord) EmailResponse {
	return EmailResponse{
		ID:           r.ID,
		Sender:       r.Sender,
		Receiver:     r.Receiver,
		Subject:      r.Subject,
		Body:         r.Body,
		Status:       r.Status,
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func ToEmailResponseList(records []domain.EmailRecord) []EmailResponse {
	out := make([]EmailResponse, len(records))
	for i, r := range records {
		out[i] = ToEmailResponse(r)
	}
	return out
}
