package secondary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventscout/internal/domain"
)

const adColumns = `id, title, impressions, clicks, active_until, image_url, link, description, created_at, updated_at`

// AdminStore is the typed wrapper over the categories and advertisements
// tables.
type AdminStore struct {
	DB *sql.DB
}

func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{DB: db}
}

// Categories returns all categories ordered by name.
func (s *AdminStore) Categories(ctx context.Context) ([]*CategoryRow, error) {
	query := `SELECT id, name, description, color, created_at FROM categories ORDER BY name ASC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categories := make([]*CategoryRow, 0)
	for rows.Next() {
		c := &CategoryRow{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory applies the non-nil fields and returns the merged row.
func (s *AdminStore) UpdateCategory(ctx context.Context, id int, u *CategoryUpdate) (*CategoryRow, error) {
	setClauses := []string{}
	args := []interface{}{}
	n := 1
	add := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Color != nil {
		add("color", *u.Color)
	}
	if n == 1 {
		return s.getCategory(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE categories SET %s
		WHERE id = $%d
		RETURNING id, name, description, color, created_at
	`, strings.Join(setClauses, ", "), n)
	c := &CategoryRow{}
	err := s.DB.QueryRowContext(ctx, query, args...).
		Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *AdminStore) getCategory(ctx context.Context, id int) (*CategoryRow, error) {
	c := &CategoryRow{}
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, description, color, created_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func scanAdRow(scan func(dest ...any) error) (*AdRow, error) {
	a := &AdRow{}
	err := scan(
		&a.ID, &a.Title, &a.Impressions, &a.Clicks, &a.ActiveUntil,
		&a.ImageURL, &a.Link, &a.Description, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ActiveAds returns advertisements still active today, newest first.
func (s *AdminStore) ActiveAds(ctx context.Context) ([]*AdRow, error) {
	query := `
		SELECT ` + adColumns + `
		FROM advertisements
		WHERE active_until >= CURRENT_DATE
		ORDER BY created_at DESC
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ads := make([]*AdRow, 0)
	for rows.Next() {
		a, err := scanAdRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		ads = append(ads, a)
	}
	return ads, rows.Err()
}

// CreateAd inserts an advertisement with zeroed counters.
func (s *AdminStore) CreateAd(ctx context.Context, ins *AdInsert) (*AdRow, error) {
	query := `
		INSERT INTO advertisements (title, active_until, image_url, link, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + adColumns
	return scanAdRow(s.DB.QueryRowContext(ctx, query,
		ins.Title, ins.ActiveUntil, ins.ImageURL, ins.Link, ins.Description,
	).Scan)
}

// UpdateAd applies the non-nil fields and returns the merged row.
// Impressions and clicks are never updatable from here.
func (s *AdminStore) UpdateAd(ctx context.Context, id string, u *AdUpdate) (*AdRow, error) {
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
	if u.ActiveUntil != nil {
		add("active_until", *u.ActiveUntil)
	}
	if u.ImageURL != nil {
		add("image_url", *u.ImageURL)
	}
	if u.Link != nil {
		add("link", *u.Link)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE advertisements SET %s
		WHERE id = $%d
		RETURNING `+adColumns, strings.Join(setClauses, ", "), n)
	a, err := scanAdRow(s.DB.QueryRowContext(ctx, query, args...).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// DeleteAd removes the advertisement, or returns domain.ErrNotFound.
func (s *AdminStore) DeleteAd(ctx context.Context, id string) error {
	result, err := s.DB.ExecContext(ctx, `DELETE FROM advertisements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
