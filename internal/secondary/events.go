package secondary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventscout/internal/domain"
)

const eventColumns = `id, title, description, date, time, location, category, price, is_free,
		image_url, speaker_ids, capacity, tags, organizer, contact_email,
		registration_deadline, is_online, online_link, created_at, updated_at`

// EventStore is the typed wrapper over the events and event_registrations
// tables of the managed store.
type EventStore struct {
	DB *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{DB: db}
}

func scanEventRow(scan func(dest ...any) error) (*EventRow, error) {
	e := &EventRow{}
	err := scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location, &e.Category,
		&e.Price, &e.IsFree, &e.ImageURL, &e.SpeakerIDs, &e.Capacity, &e.Tags,
		&e.Organizer, &e.ContactEmail, &e.RegistrationDeadline, &e.IsOnline,
		&e.OnlineLink, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// List returns events matching the filters, ordered by date ascending.
func (s *EventStore) List(ctx context.Context, filters *EventListFilters) ([]*EventRow, error) {
	where := []string{}
	args := []interface{}{}
	n := 1
	if filters != nil {
		if filters.Category != "" {
			where = append(where, fmt.Sprintf("category = $%d", n))
			args = append(args, filters.Category)
			n++
		}
		if filters.IsFree != nil {
			where = append(where, fmt.Sprintf("is_free = $%d", n))
			args = append(args, *filters.IsFree)
			n++
		}
		if filters.Search != "" {
			where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
			args = append(args, "%"+filters.Search+"%")
			n++
		}
	}
	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date ASC"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*EventRow, 0)
	for rows.Next() {
		e, err := scanEventRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetByID returns the event with the given id, or domain.ErrNotFound.
func (s *EventStore) GetByID(ctx context.Context, id string) (*EventRow, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEventRow(s.DB.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Create inserts an event and returns the stored row.
func (s *EventStore) Create(ctx context.Context, ins *EventInsert) (*EventRow, error) {
	query := `
		INSERT INTO events (title, description, date, time, location, category, price, is_free, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + eventColumns
	return scanEventRow(s.DB.QueryRowContext(ctx, query,
		ins.Title, ins.Description, ins.Date, ins.Time, ins.Location,
		ins.Category, ins.Price, ins.IsFree, ins.ImageURL,
	).Scan)
}

// Update applies the non-nil fields and returns the merged row.
// With nothing to change it just fetches the current row.
func (s *EventStore) Update(ctx context.Context, id string, u *EventUpdate) (*EventRow, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	add := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Date != nil {
		add("date", *u.Date)
	}
	if u.Time != nil {
		add("time", *u.Time)
	}
	if u.Location != nil {
		add("location", *u.Location)
	}
	if u.Category != nil {
		add("category", *u.Category)
	}
	if u.Price != nil {
		add("price", *u.Price)
	}
	if u.IsFree != nil {
		add("is_free", *u.IsFree)
	}
	if u.ImageURL != nil {
		add("image_url", *u.ImageURL)
	}
	if n == 1 {
		return s.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING `+eventColumns, strings.Join(setClauses, ", "), n)
	e, err := scanEventRow(s.DB.QueryRowContext(ctx, query, args...).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Delete removes the event, or returns domain.ErrNotFound.
func (s *EventStore) Delete(ctx context.Context, id string) error {
	result, err := s.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Register inserts an event registration and returns the stored row.
func (s *EventStore) Register(ctx context.Context, eventID, name, email string, phone sql.NullString, userID sql.NullString) (*RegistrationRow, error) {
	query := `
		INSERT INTO event_registrations (event_id, user_id, name, email, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, event_id, user_id, name, email, phone, created_at
	`
	reg := &RegistrationRow{}
	err := s.DB.QueryRowContext(ctx, query, eventID, userID, name, email, phone).
		Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Name, &reg.Email, &reg.Phone, &reg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// ListBySpeaker returns events linked to the speaker via event_speakers.
func (s *EventStore) ListBySpeaker(ctx context.Context, speakerID string) ([]*EventRow, error) {
	query := `
		SELECT e.id, e.title, e.description, e.date, e.time, e.location, e.category,
			e.price, e.is_free, e.image_url, e.speaker_ids, e.capacity, e.tags,
			e.organizer, e.contact_email, e.registration_deadline, e.is_online,
			e.online_link, e.created_at, e.updated_at
		FROM events e
		INNER JOIN event_speakers es ON es.event_id = e.id
		WHERE es.speaker_id = $1
		ORDER BY e.date ASC
	`
	rows, err := s.DB.QueryContext(ctx, query, speakerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*EventRow, 0)
	for rows.Next() {
		e, err := scanEventRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
