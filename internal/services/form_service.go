package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"r2d2-service/internal/domain"
	"r2d2-service/internal/metrics"
	"r2d2-service/internal/repository"
	"r2d2-service/internal/types"

	"go.uber.org/zap"
)

// FormInput is a validated Zaansrecht form as submitted by a visitor.
type FormInput struct {
	FullName        string
	Email           string
	TermsAccepted   bool
	Telephone       *string
	Description     *string
	Subject         *string
	MeetingDatetime *time.Time
	MeetingType     *string
}

type FormService interface {
	// SubmitForm persists the form with its submission log and queues a notification email.
	SubmitForm(ctx context.Context, input FormInput, meta domain.SubmissionMetadata) (*domain.Form, error)
	ListForms(ctx context.Context, status *domain.FormStatus) ([]domain.Form, error)
	UpdateFormStatus(ctx context.Context, id int64, status domain.FormStatus) (*domain.Form, error)
}

// Enqueuer is the part of the email service the form side may touch.
type Enqueuer interface {
	Enqueue(ctx context.Context, sender, subject, body, source string) (*domain.EmailRecord, error)
}

type formService struct {
	repo   repository.FormRepository
	emails Enqueuer
	log    *zap.SugaredLogger
}

func NewFormService(repo repository.FormRepository, emails Enqueuer, log *zap.SugaredLogger) FormService {
	return &formService{repo: repo, emails: emails, log: log}
}

func (s *formService) SubmitForm(ctx context.Context, input FormInput, meta domain.SubmissionMetadata) (*domain.Form, error) {
	if !input.TermsAccepted {
		metrics.FormSubmissions.WithLabelValues("rejected").Inc()
		return nil, types.ErrTermsNotAccepted
	}

	form := &domain.Form{
		FullName:        input.FullName,
		Email:           input.Email,
		Status:          domain.FormStatusNew,
		TermsAccepted:   input.TermsAccepted,
		Telephone:       input.Telephone,
		Description:     input.Description,
		Subject:         input.Subject,
		MeetingDatetime: input.MeetingDatetime,
		MeetingType:     input.MeetingType,
	}
	submissionLog := &domain.FormSubmissionLog{
		UserAgent:    meta.UserAgent,
		Referrer:     meta.Referrer,
		ForwardedFor: meta.ForwardedFor,
		RealIP:       meta.RealIP,
		CaptchaToken: domain.ShortenCaptchaToken(meta.CaptchaToken),
	}

	if err := s.repo.CreateWithLog(ctx, form, submissionLog); err != nil {
		metrics.FormSubmissions.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.FormSubmissions.WithLabelValues("created").Inc()
	s.log.Infow("Created Zaansrecht form", "formID", form.ID, "realIP", meta.RealIP)

	s.notify(ctx, form)
	return form, nil
}

// notify never fails the submission; the form is already committed.
func (s *formService) notify(ctx context.Context, form *domain.Form) {
	subject, body := notificationFor(form)
	record, err := s.emails.Enqueue(context.WithoutCancel(ctx), form.Email, subject, body, "form")
	if err != nil {
		s.log.Errorw("Failed to queue form notification email", "formID", form.ID, "error", err)
		return
	}
	s.log.Infow("Queued notification email for form", "formID", form.ID, "emailID", record.ID)
}

func notificationFor(form *domain.Form) (string, string) {
	from := form.FullName
	if form.Subject != nil && *form.Subject != "" {
		from = *form.Subject
	}
	subject := "New Zaansrecht Form Submission from " + from

	if form.Description != nil && *form.Description != "" {
		return subject, fmt.Sprintf("Description: %s\n", *form.Description)
	}

	var b strings.Builder
	b.WriteString("A new Zaansrecht form has been submitted.\n\nDetails:\n")
	fmt.Fprintf(&b, "Name: %s\n", form.FullName)
	fmt.Fprintf(&b, "Email: %s\n", form.Email)
	if form.Telephone != nil {
		fmt.Fprintf(&b, "Telephone: %s\n", *form.Telephone)
	}
	if form.MeetingDatetime != nil {
		fmt.Fprintf(&b, "Meeting: %s", form.MeetingDatetime.Format(time.RFC1123))
		if form.MeetingType != nil {
			fmt.Fprintf(&b, " (%s)", *form.MeetingType)
		}
		b.WriteString("\n")
	}
	return subject, b.String()
}

func (s *formService) ListForms(ctx context.Context, status *domain.FormStatus) ([]domain.Form, error) {
	forms, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	s.log.Debugw("Listed forms", "count", len(forms))
	return forms, nil
}

func (s *formService) UpdateFormStatus(ctx context.Context, id int64, status domain.FormStatus) (*domain.Form, error) {
	form, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.log.Infow("Updated form status", "formID", id, "status", status)
	return form, nil
}
