package secondary

import (
	"context"
	"database/sql"
)

// UserStore is the typed wrapper over the user_saved_events table.
type UserStore struct {
	DB *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{DB: db}
}

// SaveEvent records the event on the user's saved list; duplicates are a no-op.
func (s *UserStore) SaveEvent(ctx context.Context, userID, eventID string) error {
	query := `
		INSERT INTO user_saved_events (user_id, event_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, event_id) DO NOTHING
	`
	_, err := s.DB.ExecContext(ctx, query, userID, eventID)
	return err
}

// RemoveSavedEvent deletes the saved-event link if present.
func (s *UserStore) RemoveSavedEvent(ctx context.Context, userID, eventID string) error {
	query := `DELETE FROM user_saved_events WHERE user_id = $1 AND event_id = $2`
	_, err := s.DB.ExecContext(ctx, query, userID, eventID)
	return err
}

// SavedEvents returns the user's saved-event links, newest first.
func (s *UserStore) SavedEvents(ctx context.Context, userID string) ([]*SavedEventRow, error) {
	query := `
		SELECT id, user_id, event_id, created_at
		FROM user_saved_events
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	saved := make([]*SavedEventRow, 0)
	for rows.Next() {
		row := &SavedEventRow{}
		if err := rows.Scan(&row.ID, &row.UserID, &row.EventID, &row.CreatedAt); err != nil {
			return nil, err
		}
		saved = append(saved, row)
	}
	return saved, rows.Err()
}

// CountRegistrations returns how many events the user has registered for.
func (s *UserStore) CountRegistrations(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_registrations WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// CountFollowing returns how many speakers the user follows.
func (s *UserStore) CountFollowing(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_following_speakers WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}
