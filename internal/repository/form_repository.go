package repository

import (
	"context"
	"errors"

	"r2d2-service/internal/domain"
	"r2d2-service/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FormRepository interface {
	// Inserts the form and its submission log in one transaction.
	CreateWithLog(ctx context.Context, form *domain.Form, log *domain.FormSubmissionLog) error
	GetByID(ctx context.Context, id int64) (*domain.Form, error)
	List(ctx context.Context, status *domain.FormStatus) ([]domain.Form, error)
	UpdateStatus(ctx context.Context, id int64, status domain.FormStatus) (*domain.Form, error)
}

type formRepository struct {
	db *pgxpool.Pool
}

func NewFormRepository(db *pgxpool.Pool) FormRepository {
	return &formRepository{db: db}
}

const formColumns = `id, full_name, email, status, terms_accepted, telephone, description, subject,
	meeting_datetime, meeting_type, created_at, updated_at`

func scanForm(row pgx.Row) (*domain.Form, error) {
	var f domain.Form
	err := row.Scan(
		&f.ID,
		&f.FullName,
		&f.Email,
		&f.Status,
		&f.TermsAccepted,
		&f.Telephone,
		&f.Description,
		&f.Subject,
		&f.MeetingDatetime,
		&f.MeetingType,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *formRepository) CreateWithLog(ctx context.Context, form *domain.Form, log *domain.FormSubmissionLog) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		formSQL := `
            INSERT INTO zaansrecht_form (full_name, email, status, terms_accepted, telephone, description,
                subject, meeting_datetime, meeting_type)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
            RETURNING id, created_at`
		err := tx.QueryRow(ctx, formSQL,
			form.FullName, form.Email, form.Status, form.TermsAccepted, form.Telephone,
			form.Description, form.Subject, form.MeetingDatetime, form.MeetingType,
		).Scan(&form.ID, &form.CreatedAt)
		if err != nil {
			return err
		}

		log.FormID = form.ID
		forwardedFor := log.ForwardedFor
		if forwardedFor == nil {
			forwardedFor = []string{}
		}
		logSQL := `
            INSERT INTO form_submission_logs (form_id, user_agent, referrer, x_forwarded_for, real_ip, captcha_token)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, created_at`
		return tx.QueryRow(ctx, logSQL,
			log.FormID, log.UserAgent, log.Referrer, forwardedFor, log.RealIP, log.CaptchaToken,
		).Scan(&log.ID, &log.CreatedAt)
	})
	if err != nil {
		return types.NewDatabaseError("create form", err)
	}
	return nil
}

func (r *formRepository) GetByID(ctx context.Context, id int64) (*domain.Form, error) {
	f, err := scanForm(r.db.QueryRow(ctx, `SELECT `+formColumns+` FROM zaansrecht_form WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, types.NewDatabaseError("get form", err)
	}
	return f, nil
}

func (r *formRepository) List(ctx context.Context, status *domain.FormStatus) ([]domain.Form, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status == nil {
		rows, err = r.db.Query(ctx, `SELECT `+formColumns+` FROM zaansrecht_form ORDER BY id ASC`)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+formColumns+` FROM zaansrecht_form WHERE status = $1 ORDER BY id ASC`, *status)
	}
	if err != nil {
		return nil, types.NewDatabaseError("list forms", err)
	}
	defer rows.Close()

	forms := make([]domain.Form, 0)
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, types.NewDatabaseError("scan form", err)
		}
		forms = append(forms, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewDatabaseError("list forms", err)
	}
	return forms, nil
}

func (r *formRepository) UpdateStatus(ctx context.Context, id int64, status domain.FormStatus) (*domain.Form, error) {
	sql := `
        UPDATE zaansrecht_form
        SET status = $1, updated_at = NOW()
        WHERE id = $2
        RETURNING ` + formColumns

	f, err := scanForm(r.db.QueryRow(ctx, sql, status, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, types.NewDatabaseError("update form status", err)
	}
	return f, nil
}
