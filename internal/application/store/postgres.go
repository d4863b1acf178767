package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"eventhub/internal/application/models"
	id "eventhub/pkg/domain"
	"eventhub/pkg/platform/sentinel"
	"eventhub/pkg/platform/tx"
)

// Postgres persists applications in the event_applications table. The
// partial unique index on (event_id, user_id) over live statuses enforces
// the one-live-application rule at the database, which makes concurrent
// duplicate submissions safe without advisory locks.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const applicationColumns = `id, event_id, user_id, status, application_date, contact_info,
	message, reviewed_by, review_date, review_comment, created_at, updated_at`

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) conn(ctx context.Context) querier {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

// Create inserts the application and returns it with its assigned ID.
// A unique-violation on the live index maps to sentinel.ErrAlreadyUsed.
func (s *Postgres) Create(ctx context.Context, app *models.Application) (*models.Application, error) {
	var contactInfo []byte
	if app.ContactInfo != nil {
		var err error
		contactInfo, err = json.Marshal(app.ContactInfo)
		if err != nil {
			return nil, fmt.Errorf("marshal contact info: %w", err)
		}
	}

	stored := app.Clone()
	err := s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO event_applications (event_id, user_id, status, application_date,
			contact_info, message, reviewed_by, review_date, review_comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		int64(app.EventID), int64(app.UserID), string(app.Status), app.ApplicationDate,
		contactInfo, app.Message, reviewerArg(app.ReviewedBy), app.ReviewDate, app.ReviewComment,
		app.CreatedAt, app.UpdatedAt,
	).Scan(&stored.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, sentinel.ErrAlreadyUsed
		}
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return stored, nil
}

// Get loads a single application.
func (s *Postgres) Get(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM event_applications WHERE id = $1`, int64(appID))
	return scanApplication(row)
}

// ListByEvent returns the event's applications, newest first.
func (s *Postgres) ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Application, error) {
	return s.listWhere(ctx, "event_id = $1", int64(eventID))
}

// ListByApplicant returns the user's applications, newest first.
func (s *Postgres) ListByApplicant(ctx context.Context, userID id.UserID) ([]*models.Application, error) {
	return s.listWhere(ctx, "user_id = $1", int64(userID))
}

func (s *Postgres) listWhere(ctx context.Context, cond string, arg any) ([]*models.Application, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM event_applications WHERE `+cond+
			` ORDER BY application_date DESC, id DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// Execute locks the application row, applies fn, and writes the result back.
// It joins the caller's transaction when one is in the context.
func (s *Postgres) Execute(ctx context.Context, appID id.ApplicationID, fn func(*models.Application) error) (*models.Application, error) {
	if _, ok := tx.From(ctx); ok {
		return s.executeLocked(ctx, s.conn(ctx), appID, fn)
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	app, err := s.executeLocked(ctx, sqlTx, appID, fn)
	if err != nil {
		_ = sqlTx.Rollback()
		return nil, err
	}
	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return app, nil
}

func (s *Postgres) executeLocked(ctx context.Context, q querier, appID id.ApplicationID, fn func(*models.Application) error) (*models.Application, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM event_applications WHERE id = $1 FOR UPDATE`, int64(appID))
	app, err := scanApplication(row)
	if err != nil {
		return nil, err
	}

	if err := fn(app); err != nil {
		return nil, err
	}

	var contactInfo []byte
	if app.ContactInfo != nil {
		contactInfo, err = json.Marshal(app.ContactInfo)
		if err != nil {
			return nil, fmt.Errorf("marshal contact info: %w", err)
		}
	}
	_, err = q.ExecContext(ctx, `
		UPDATE event_applications SET status = $2, contact_info = $3, message = $4,
			reviewed_by = $5, review_date = $6, review_comment = $7, updated_at = $8
		WHERE id = $1`,
		int64(app.ID), string(app.Status), contactInfo, app.Message,
		reviewerArg(app.ReviewedBy), app.ReviewDate, app.ReviewComment, app.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	return app, nil
}

func reviewerArg(reviewedBy *id.UserID) any {
	if reviewedBy == nil {
		return nil
	}
	return int64(*reviewedBy)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app         models.Application
		status      string
		contactInfo []byte
		reviewedBy  sql.NullInt64
		reviewDate  sql.NullTime
	)
	err := row.Scan(
		&app.ID, &app.EventID, &app.UserID, &status, &app.ApplicationDate,
		&contactInfo, &app.Message, &reviewedBy, &reviewDate, &app.ReviewComment,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan application: %w", err)
	}

	app.Status = models.Status(status)
	if reviewedBy.Valid {
		reviewer := id.UserID(reviewedBy.Int64)
		app.ReviewedBy = &reviewer
	}
	if reviewDate.Valid {
		t := reviewDate.Time.UTC()
		app.ReviewDate = &t
	}
	if len(contactInfo) > 0 {
		if err := json.Unmarshal(contactInfo, &app.ContactInfo); err != nil {
			return nil, fmt.Errorf("unmarshal contact info: %w", err)
		}
	}
	app.ApplicationDate = app.ApplicationDate.UTC()
	app.CreatedAt = app.CreatedAt.UTC()
	app.UpdatedAt = app.UpdatedAt.UTC()
	return &app, nil
}
