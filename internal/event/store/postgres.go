package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"eventhub/internal/event/models"
	id "eventhub/pkg/domain"
	"eventhub/pkg/platform/sentinel"
	"eventhub/pkg/platform/tx"
)

// Postgres persists events in the events table. Execute takes a row lock
// (SELECT ... FOR UPDATE) so the callback's validate-and-mutate sequence is
// serialized against concurrent reservations.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const eventColumns = `id, title, description, content, category_id, image_url, online_url,
	status, event_mode, max_participants, current_participants, age_restriction,
	location_name, location_address, latitude, longitude,
	start_date, end_date, registration_deadline,
	author_id, views_count, is_featured, tags, created_at, updated_at, published_at`

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

// Create inserts the event and returns it with its assigned ID.
func (s *Postgres) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	tags, err := json.Marshal(event.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	stored := event.Clone()
	err = s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO events (title, description, content, category_id, image_url, online_url,
			status, event_mode, max_participants, current_participants, age_restriction,
			location_name, location_address, latitude, longitude,
			start_date, end_date, registration_deadline,
			author_id, views_count, is_featured, tags, created_at, updated_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING id`,
		event.Title, event.Description, event.Content, int64(event.CategoryID),
		event.ImageURL, event.OnlineURL, string(event.Status), string(event.Mode),
		event.Capacity.Max, event.Capacity.Current, event.AgeRestriction,
		event.Location.Name, event.Location.Address, event.Location.Latitude, event.Location.Longitude,
		event.Schedule.Start, event.Schedule.End, event.Schedule.Deadline,
		int64(event.AuthorID), event.ViewsCount, event.IsFeatured, tags,
		event.CreatedAt, event.UpdatedAt, event.PublishedAt,
	).Scan(&stored.ID)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return stored, nil
}

// Get loads a single event.
func (s *Postgres) Get(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, int64(eventID))
	return scanEvent(row)
}

// List returns events matching the filter, newest first.
func (s *Postgres) List(ctx context.Context, filter models.Filter) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != "" {
		conds = append(conds, "status = "+arg(string(filter.Status)))
	}
	if filter.Mode != "" {
		conds = append(conds, "event_mode = "+arg(string(filter.Mode)))
	}
	if filter.CategoryID.Valid() {
		conds = append(conds, "category_id = "+arg(int64(filter.CategoryID)))
	}
	if filter.AuthorID.Valid() {
		conds = append(conds, "author_id = "+arg(int64(filter.AuthorID)))
	}
	if filter.Featured != nil {
		conds = append(conds, "is_featured = "+arg(*filter.Featured))
	}
	if filter.UpcomingAfter != nil {
		conds = append(conds, "start_date > "+arg(*filter.UpcomingAfter))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, "(title ILIKE "+p+" OR description ILIKE "+p+")")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Execute locks the event row, applies fn, and writes the result back. It
// runs inside the caller's transaction when one is in the context, otherwise
// it opens its own.
func (s *Postgres) Execute(ctx context.Context, eventID id.EventID, fn func(*models.Event) error) (*models.Event, error) {
	if _, ok := tx.From(ctx); ok {
		return s.executeLocked(ctx, s.conn(ctx), eventID, fn)
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	event, err := s.executeLocked(ctx, sqlTx, eventID, fn)
	if err != nil {
		_ = sqlTx.Rollback()
		return nil, err
	}
	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return event, nil
}

func (s *Postgres) executeLocked(ctx context.Context, q querier, eventID id.EventID, fn func(*models.Event) error) (*models.Event, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, int64(eventID))
	event, err := scanEvent(row)
	if err != nil {
		return nil, err
	}

	if err := fn(event); err != nil {
		return nil, err
	}

	tags, err := json.Marshal(event.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	_, err = q.ExecContext(ctx, `
		UPDATE events SET title = $2, description = $3, content = $4, category_id = $5,
			image_url = $6, online_url = $7, status = $8, event_mode = $9,
			max_participants = $10, current_participants = $11, age_restriction = $12,
			location_name = $13, location_address = $14, latitude = $15, longitude = $16,
			start_date = $17, end_date = $18, registration_deadline = $19,
			is_featured = $20, tags = $21, updated_at = $22, published_at = $23
		WHERE id = $1`,
		int64(event.ID), event.Title, event.Description, event.Content, int64(event.CategoryID),
		event.ImageURL, event.OnlineURL, string(event.Status), string(event.Mode),
		event.Capacity.Max, event.Capacity.Current, event.AgeRestriction,
		event.Location.Name, event.Location.Address, event.Location.Latitude, event.Location.Longitude,
		event.Schedule.Start, event.Schedule.End, event.Schedule.Deadline,
		event.IsFeatured, tags, event.UpdatedAt, event.PublishedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// IncrementViews bumps the view counter with a single UPDATE; the counter is
// advisory, so it skips the Execute row lock.
func (s *Postgres) IncrementViews(ctx context.Context, eventID id.EventID) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE events SET views_count = views_count + 1 WHERE id = $1`, int64(eventID))
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		event       models.Event
		maxPart     sql.NullInt64
		ageRestrict sql.NullInt64
		lat, lon    sql.NullFloat64
		deadline    sql.NullTime
		publishedAt sql.NullTime
		status      string
		mode        string
		tags        []byte
	)
	err := row.Scan(
		&event.ID, &event.Title, &event.Description, &event.Content, &event.CategoryID,
		&event.ImageURL, &event.OnlineURL, &status, &mode,
		&maxPart, &event.Capacity.Current, &ageRestrict,
		&event.Location.Name, &event.Location.Address, &lat, &lon,
		&event.Schedule.Start, &event.Schedule.End, &deadline,
		&event.AuthorID, &event.ViewsCount, &event.IsFeatured, &tags,
		&event.CreatedAt, &event.UpdatedAt, &publishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}

	event.Status = models.Status(status)
	event.Mode = models.Mode(mode)
	if maxPart.Valid {
		n := int(maxPart.Int64)
		event.Capacity.Max = &n
	}
	if ageRestrict.Valid {
		n := int(ageRestrict.Int64)
		event.AgeRestriction = &n
	}
	if lat.Valid {
		event.Location.Latitude = &lat.Float64
	}
	if lon.Valid {
		event.Location.Longitude = &lon.Float64
	}
	if deadline.Valid {
		t := deadline.Time
		event.Schedule.Deadline = &t
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		event.PublishedAt = &t
	}
	if err := json.Unmarshal(tags, &event.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	normalizeTimes(&event)
	return &event, nil
}

func normalizeTimes(event *models.Event) {
	event.Schedule.Start = event.Schedule.Start.UTC()
	event.Schedule.End = event.Schedule.End.UTC()
	event.CreatedAt = event.CreatedAt.UTC()
	event.UpdatedAt = event.UpdatedAt.UTC()
	if event.Schedule.Deadline != nil {
		t := event.Schedule.Deadline.UTC()
		event.Schedule.Deadline = &t
	}
	if event.PublishedAt != nil {
		t := event.PublishedAt.UTC()
		event.PublishedAt = &t
	}
}
