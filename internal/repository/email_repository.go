package repository

import (
	"context"
	"errors"
	"time"

	"r2d2-service/internal/domain"
	"r2d2-service/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EmailRepository interface {
	// Inserts a QUEUED record and fills in id and created_at.
	Create(ctx context.Context, record *domain.EmailRecord) error
	GetByID(ctx context.Context, id int64) (*domain.EmailRecord, error)
	// Keeps the order of ids; unknown ids are skipped.
	GetByIDs(ctx context.Context, ids []int64) ([]domain.EmailRecord, error)
	// Lists all records, or only those with the given status, in insertion (id) order.
	List(ctx context.Context, status *domain.EmailStatus) ([]domain.EmailRecord, error)
	// Counts records with created_at strictly after since.
	CountSince(ctx context.Context, since time.Time) (int64, error)
	// Moves a QUEUED record to SENDING. Returns types.ErrAlreadyClaimed if it was not QUEUED.
	ClaimForSending(ctx context.Context, id int64) (*domain.EmailRecord, error)
	// Persists status, error_message and updated_at of an existing record.
	Save(ctx context.Context, record *domain.EmailRecord) error
}

type emailRepository struct {
	db *pgxpool.Pool
}

func NewEmailRepository(db *pgxpool.Pool) EmailRepository {
	return &emailRepository{db: db}
}

const emailColumns = `id, sender, receiver, subject, body, status, error_message, created_at, updated_at`

func scanEmail(row pgx.Row) (*domain.EmailRecord, error) {
	var rec domain.EmailRecord
	err := row.Scan(
		&rec.ID,
		&rec.Sender,
		&rec.Receiver,
		&rec.Subject,
		&rec.Body,
		&rec.Status,
		&rec.ErrorMessage,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *emailRepository) Create(ctx context.Context, record *domain.EmailRecord) error {
	sql := `
        INSERT INTO email_logs (sender, receiver, subject, body, status, error_message)
        VALUES ($1, $2, $3, $4, $5, NULL)
        RETURNING id, created_at`

	err := r.db.QueryRow(ctx, sql, record.Sender, record.Receiver, record.Subject, record.Body, domain.StatusQueued).
		Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return types.NewDatabaseError("create email", err)
	}
	record.Status = domain.StatusQueued
	record.ErrorMessage = nil
	return nil
}

func (r *emailRepository) GetByID(ctx context.Context, id int64) (*domain.EmailRecord, error) {
	sql := `SELECT ` + emailColumns + ` FROM email_logs WHERE id = $1`

	rec, err := scanEmail(r.db.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, types.NewDatabaseError("get email", err)
	}
	return rec, nil
}

func (r *emailRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.EmailRecord, error) {
	if len(ids) == 0 {
		return []domain.EmailRecord{}, nil
	}

	sql := `SELECT ` + emailColumns + ` FROM email_logs WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, sql, ids)
	if err != nil {
		return nil, types.NewDatabaseError("get emails by ids", err)
	}
	defer rows.Close()

	byID := make(map[int64]domain.EmailRecord, len(ids))
	for rows.Next() {
		rec, err := scanEmail(rows)
		if err != nil {
			return nil, types.NewDatabaseError("scan email", err)
		}
		byID[rec.ID] = *rec
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewDatabaseError("get emails by ids", err)
	}

	// ids come from the redis ZSET, keep its order
	result := make([]domain.EmailRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (r *emailRepository) List(ctx context.Context, status *domain.EmailStatus) ([]domain.EmailRecord, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status == nil {
		rows, err = r.db.Query(ctx, `SELECT `+emailColumns+` FROM email_logs ORDER BY id ASC`)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+emailColumns+` FROM email_logs WHERE status = $1 ORDER BY id ASC`, *status)
	}
	if err != nil {
		return nil, types.NewDatabaseError("list emails", err)
	}
	defer rows.Close()

	records := make([]domain.EmailRecord, 0)
	for rows.Next() {
		rec, err := scanEmail(rows)
		if err != nil {
			return nil, types.NewDatabaseError("scan email", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewDatabaseError("list emails", err)
	}
	return records, nil
}

func (r *emailRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM email_logs WHERE created_at > $1`, since).Scan(&count)
	if err != nil {
		return 0, types.NewDatabaseError("count emails", err)
	}
	return count, nil
}

func (r *emailRepository) ClaimForSending(ctx context.Context, id int64) (*domain.EmailRecord, error) {
	sql := `
        UPDATE email_logs
        SET status = $1, updated_at = NOW()
        WHERE id = $2 AND status = $3
        RETURNING ` + emailColumns

	rec, err := scanEmail(r.db.QueryRow(ctx, sql, domain.StatusSending, id, domain.StatusQueued))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrAlreadyClaimed
	}
	if err != nil {
		return nil, types.NewDatabaseError("claim email", err)
	}
	return rec, nil
}

func (r *emailRepository) Save(ctx context.Context, record *domain.EmailRecord) error {
	sql := `
        UPDATE email_logs
        SET status = $1, error_message = $2, updated_at = $3
        WHERE id = $4`

	cmdTag, err := r.db.Exec(ctx, sql, record.Status, record.ErrorMessage, record.UpdatedAt, record.ID)
	if err != nil {
		return types.NewDatabaseError("save email", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
