package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"r2d2-service/config"
	"r2d2-service/internal/cache"
	"r2d2-service/internal/domain"
	"r2d2-service/internal/mail"
	"r2d2-service/internal/metrics"
	"r2d2-service/internal/repository"
	"r2d2-service/internal/types"

	"go.uber.org/zap"
)

const finalizeTimeout = 10 * time.Second

type EmailService interface {
	// Enqueue stores a QUEUED record addressed to the configured receiver.
	Enqueue(ctx context.Context, sender, subject, body, source string) (*domain.EmailRecord, error)
	// Dispatch makes one send attempt for a QUEUED record and persists SENT or FAILED.
	Dispatch(ctx context.Context, record *domain.EmailRecord) error
	GetEmail(ctx context.Context, id int64) (*domain.EmailRecord, error)
	ListEmails(ctx context.Context, status *domain.EmailStatus) ([]domain.EmailRecord, error)
	// GetRecentSentEmails pages SENT records newest first using the redis index.
	GetRecentSentEmails(ctx context.Context, page, pageSize int) ([]domain.EmailRecord, int64, error)
}

type emailService struct {
	repo      repository.EmailRepository
	cache     cache.SentEmailCache
	limiter   *RateLimiter
	transport mail.Transport
	smtp      config.SMTPConfig
	log       *zap.SugaredLogger
	now       func() time.Time
}

// NewEmailService wires the store, limiter and transport. sentCache may be nil.
func NewEmailService(
	repo repository.EmailRepository,
	sentCache cache.SentEmailCache,
	limiter *RateLimiter,
	transport mail.Transport,
	smtp config.SMTPConfig,
	log *zap.SugaredLogger,
) EmailService {
	return &emailService{
		repo:      repo,
		cache:     sentCache,
		limiter:   limiter,
		transport: transport,
		smtp:      smtp,
		log:       log,
		now:       time.Now,
	}
}

func (s *emailService) Enqueue(ctx context.Context, sender, subject, body, source string) (*domain.EmailRecord, error) {
	record := &domain.EmailRecord{
		Sender:   sender,
		Receiver: s.smtp.To,
		Subject:  subject,
		Status:   domain.StatusQueued,
	}
	if body != "" {
		record.Body = &body
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	metrics.EmailsEnqueued.WithLabelValues(source).Inc()
	s.log.Infow("Email queued", "emailID", record.ID, "sender", sender, "source", source)
	return record, nil
}

func (s *emailService) Dispatch(ctx context.Context, record *domain.EmailRecord) error {
	// a caller that went away leaves the record QUEUED for the next sweep
	if err := ctx.Err(); err != nil {
		return err
	}

	allowed, err := s.limiter.Allow(ctx)
	if err != nil {
		metrics.EmailDispatches.WithLabelValues("error").Inc()
		return err
	}
	if !allowed {
		metrics.EmailDispatches.WithLabelValues("rate_limited").Inc()
		s.log.Debugw("Throttle reached, leaving email queued", "emailID", record.ID)
		return types.ErrRateLimitExceeded
	}

	claimed, err := s.repo.ClaimForSending(ctx, record.ID)
	if err != nil {
		if errors.Is(err, types.ErrAlreadyClaimed) {
			metrics.EmailDispatches.WithLabelValues("skipped").Inc()
		} else {
			metrics.EmailDispatches.WithLabelValues("error").Inc()
		}
		return err
	}
	*record = *claimed

	return s.deliver(ctx, record)
}

func (s *emailService) deliver(ctx context.Context, record *domain.EmailRecord) (err error) {
	var sendErr error
	defer func() {
		if r := recover(); r != nil {
			sendErr = fmt.Errorf("mail transport panicked: %v", r)
		}
		err = s.finalize(ctx, record, sendErr)
	}()

	sendCtx, cancel := context.WithTimeout(ctx, s.smtp.Timeout)
	defer cancel()

	s.log.Infow("Sending email", "emailID", record.ID, "to", record.Receiver)
	sendErr = s.transport.Send(sendCtx, s.compose(record))
	return nil
}

// finalize writes the terminal state. It must not observe the caller's cancellation,
// otherwise the record would stay SENDING.
func (s *emailService) finalize(ctx context.Context, record *domain.EmailRecord, sendErr error) error {
	now := s.now()
	record.UpdatedAt = &now
	if sendErr == nil {
		record.Status = domain.StatusSent
		record.ErrorMessage = nil
	} else {
		msg := sendErr.Error()
		record.Status = domain.StatusFailed
		record.ErrorMessage = &msg
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	if err := s.repo.Save(saveCtx, record); err != nil {
		metrics.EmailDispatches.WithLabelValues("error").Inc()
		s.log.Errorw("Failed to persist email outcome, record left in SENDING",
			"emailID", record.ID, "status", record.Status, "error", err)
		if sendErr != nil {
			return errors.Join(&types.SendFailure{RecordID: record.ID, Err: sendErr}, err)
		}
		return err
	}

	if sendErr != nil {
		metrics.EmailDispatches.WithLabelValues("failed").Inc()
		s.log.Errorw("Failed to send email", "emailID", record.ID, "error", sendErr)
		return &types.SendFailure{RecordID: record.ID, Err: sendErr}
	}

	metrics.EmailDispatches.WithLabelValues("sent").Inc()
	s.log.Infow("Email sent", "emailID", record.ID)
	if s.cache != nil {
		if err := s.cache.AddSentEmail(saveCtx, record.ID, now); err != nil {
			s.log.Warnw("Failed to index sent email in cache", "emailID", record.ID, "error", err)
		}
	}
	return nil
}

func (s *emailService) compose(record *domain.EmailRecord) mail.Message {
	return mail.Message{
		From:    s.smtp.From,
		To:      s.smtp.To,
		ReplyTo: record.Sender,
		Subject: fmt.Sprintf("Form submit from %s: %s", record.Sender, record.Subject),
		Body:    record.BodyText(),
	}
}

func (s *emailService) GetEmail(ctx context.Context, id int64) (*domain.EmailRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *emailService) ListEmails(ctx context.Context, status *domain.EmailStatus) ([]domain.EmailRecord, error) {
	records, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	s.log.Debugw("Listed emails", "count", len(records))
	return records, nil
}

func (s *emailService) GetRecentSentEmails(ctx context.Context, page, pageSize int) ([]domain.EmailRecord, int64, error) {
	if s.cache == nil {
		return []domain.EmailRecord{}, 0, nil
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	ids, total, err := s.cache.GetSentEmailIDs(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read sent email index: %w", err)
	}
	if len(ids) == 0 {
		return []domain.EmailRecord{}, total, nil
	}

	records, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
