package secondary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventscout/internal/domain"
)

const speakerColumns = `id, first_name, last_name, email, phone, location, title, industry,
		expertise, short_bio, long_bio, headshot_url, website, linkedin, twitter,
		facebook, verified, sample_video_url, created_at, updated_at`

// SpeakerStore is the typed wrapper over the speakers,
// speaker_applications, and user_following_speakers tables.
type SpeakerStore struct {
	DB *sql.DB
}

func NewSpeakerStore(db *sql.DB) *SpeakerStore {
	return &SpeakerStore{DB: db}
}

func scanSpeakerRow(scan func(dest ...any) error) (*SpeakerRow, error) {
	sp := &SpeakerRow{}
	err := scan(
		&sp.ID, &sp.FirstName, &sp.LastName, &sp.Email, &sp.Phone, &sp.Location,
		&sp.Title, &sp.Industry, &sp.Expertise, &sp.ShortBio, &sp.LongBio,
		&sp.HeadshotURL, &sp.Website, &sp.LinkedIn, &sp.Twitter, &sp.Facebook,
		&sp.Verified, &sp.SampleVideoURL, &sp.CreatedAt, &sp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sp, nil
}

// List returns speakers matching the filters, newest first.
func (s *SpeakerStore) List(ctx context.Context, filters *SpeakerListFilters) ([]*SpeakerRow, error) {
	where := []string{}
	args := []interface{}{}
	n := 1
	if filters != nil {
		if filters.Industry != "" {
			where = append(where, fmt.Sprintf("industry = $%d", n))
			args = append(args, filters.Industry)
			n++
		}
		if filters.Verified != nil {
			where = append(where, fmt.Sprintf("verified = $%d", n))
			args = append(args, *filters.Verified)
			n++
		}
		if filters.Search != "" {
			where = append(where, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR title ILIKE $%d)", n, n, n))
			args = append(args, "%"+filters.Search+"%")
			n++
		}
	}
	query := `SELECT ` + speakerColumns + ` FROM speakers`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	speakers := make([]*SpeakerRow, 0)
	for rows.Next() {
		sp, err := scanSpeakerRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		speakers = append(speakers, sp)
	}
	return speakers, rows.Err()
}

// GetByID returns the speaker with the given id, or domain.ErrNotFound.
func (s *SpeakerStore) GetByID(ctx context.Context, id string) (*SpeakerRow, error) {
	query := `SELECT ` + speakerColumns + ` FROM speakers WHERE id = $1`
	sp, err := scanSpeakerRow(s.DB.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return sp, nil
}

// Apply inserts a speaker application with status pending.
func (s *SpeakerStore) Apply(ctx context.Context, app *ApplicationInsert) (*ApplicationRow, error) {
	query := `
		INSERT INTO speaker_applications (
			first_name, last_name, email, phone, location, title, industry,
			expertise, short_bio, long_bio, headshot_url, website, linkedin,
			twitter, facebook, experience, sample_video, topics, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, 'pending')
		RETURNING id, first_name, last_name, email, phone, location, title, industry,
			expertise, short_bio, long_bio, headshot_url, website, linkedin, twitter,
			facebook, experience, sample_video, topics, status, created_at
	`
	row := &ApplicationRow{}
	err := s.DB.QueryRowContext(ctx, query,
		app.FirstName, app.LastName, app.Email, app.Phone, app.Location, app.Title,
		app.Industry, pq.Array(app.Expertise), app.ShortBio, app.LongBio,
		app.HeadshotURL, app.Website, app.LinkedIn, app.Twitter, app.Facebook,
		app.Experience, app.SampleVideo, pq.Array(app.Topics),
	).Scan(
		&row.ID, &row.FirstName, &row.LastName, &row.Email, &row.Phone, &row.Location,
		&row.Title, &row.Industry, &row.Expertise, &row.ShortBio, &row.LongBio,
		&row.HeadshotURL, &row.Website, &row.LinkedIn, &row.Twitter, &row.Facebook,
		&row.Experience, &row.SampleVideo, &row.Topics, &row.Status, &row.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// PendingApplications returns applications awaiting review, newest first.
func (s *SpeakerStore) PendingApplications(ctx context.Context) ([]*ApplicationRow, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, location, title, industry,
			expertise, short_bio, long_bio, headshot_url, website, linkedin, twitter,
			facebook, experience, sample_video, topics, status, created_at
		FROM speaker_applications
		WHERE status = 'pending'
		ORDER BY created_at DESC
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	apps := make([]*ApplicationRow, 0)
	for rows.Next() {
		row := &ApplicationRow{}
		if err := rows.Scan(
			&row.ID, &row.FirstName, &row.LastName, &row.Email, &row.Phone, &row.Location,
			&row.Title, &row.Industry, &row.Expertise, &row.ShortBio, &row.LongBio,
			&row.HeadshotURL, &row.Website, &row.LinkedIn, &row.Twitter, &row.Facebook,
			&row.Experience, &row.SampleVideo, &row.Topics, &row.Status, &row.CreatedAt,
		); err != nil {
			return nil, err
		}
		apps = append(apps, row)
	}
	return apps, rows.Err()
}

// Follow records userID following speakerID; duplicates are a no-op.
func (s *SpeakerStore) Follow(ctx context.Context, userID, speakerID string) error {
	query := `
		INSERT INTO user_following_speakers (user_id, speaker_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, speaker_id) DO NOTHING
	`
	_, err := s.DB.ExecContext(ctx, query, userID, speakerID)
	return err
}

// Unfollow removes the follow link if present.
func (s *SpeakerStore) Unfollow(ctx context.Context, userID, speakerID string) error {
	query := `DELETE FROM user_following_speakers WHERE user_id = $1 AND speaker_id = $2`
	_, err := s.DB.ExecContext(ctx, query, userID, speakerID)
	return err
}

// FollowingStatus reports whether userID follows speakerID.
func (s *SpeakerStore) FollowingStatus(ctx context.Context, userID, speakerID string) (bool, error) {
	query := `SELECT id FROM user_following_speakers WHERE user_id = $1 AND speaker_id = $2`
	var id string
	err := s.DB.QueryRowContext(ctx, query, userID, speakerID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CountFollowers returns the follower count for a speaker.
func (s *SpeakerStore) CountFollowers(ctx context.Context, speakerID string) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_following_speakers WHERE speaker_id = $1`, speakerID).Scan(&count)
	return count, err
}
