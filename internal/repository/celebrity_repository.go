package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Celebrity represents a profile on the site.  Public endpoints only expose
// records that are both published and active; admin endpoints see everything.
type Celebrity struct {
	ID        uint64
	Name      string
	Slug      string
	Bio       string
	Category  string
	Photo     sql.NullString
	Published bool
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CelebrityFilter narrows public listings.  Zero values mean "no filter".
type CelebrityFilter struct {
	Category string // exact category match
	Search   string // case-insensitive name substring
	Page     int    // 1-based page number
	Limit    int    // page size, clamped to [1,100]
}

// ErrCelebrityNotFound is returned when a celebrity lookup yields no row.
var ErrCelebrityNotFound = errors.New("celebrity not found")

// CelebrityRepo encapsulates all database queries related to celebrities.
type CelebrityRepo struct{ db *sql.DB }

func NewCelebrityRepo(db *sql.DB) *CelebrityRepo { return &CelebrityRepo{db: db} }

const celebrityColumns = "id,name,slug,bio,category,photo,published,is_active,created_at,updated_at"

// limitOffset normalizes pagination input shared by all content repos.
func limitOffset(page, limit int) (int, int) {
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}

func scanCelebrities(rows *sql.Rows) ([]*Celebrity, error) {
	defer rows.Close()
	var out []*Celebrity
	for rows.Next() {
		c := new(Celebrity)
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Bio, &c.Category, &c.Photo,
			&c.Published, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListPublished returns published, active celebrities matching the filter,
// newest first.
func (r *CelebrityRepo) ListPublished(ctx context.Context, f CelebrityFilter) ([]*Celebrity, error) {
	where := []string{"published=1", "is_active=1"}
	args := []interface{}{}
	if f.Category != "" {
		where = append(where, "category=?")
		args = append(args, f.Category)
	}
	if f.Search != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}
	limit, offset := limitOffset(f.Page, f.Limit)
	q := "SELECT " + celebrityColumns + " FROM celebrities WHERE " +
		strings.Join(where, " AND ") + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanCelebrities(rows)
}

// GetPublishedBySlug returns one published, active celebrity by slug.
func (r *CelebrityRepo) GetPublishedBySlug(ctx context.Context, slug string) (*Celebrity, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+celebrityColumns+" FROM celebrities WHERE slug=? AND published=1 AND is_active=1 LIMIT 1", slug)
	c := new(Celebrity)
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Bio, &c.Category, &c.Photo,
		&c.Published, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCelebrityNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListAll returns every celebrity for the admin view, unfiltered.
func (r *CelebrityRepo) ListAll(ctx context.Context) ([]*Celebrity, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+celebrityColumns+" FROM celebrities ORDER BY id")
	if err != nil {
		return nil, err
	}
	return scanCelebrities(rows)
}

// Create inserts a celebrity and populates the generated fields.
func (r *CelebrityRepo) Create(ctx context.Context, c *Celebrity) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO celebrities (name, slug, bio, category, photo, published, is_active) VALUES (?,?,?,?,?,?,?)",
		c.Name, c.Slug, c.Bio, c.Category, c.Photo, c.Published, c.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM celebrities WHERE id=?", c.ID).
		Scan(&c.CreatedAt, &c.UpdatedAt)
}

// Update rewrites the mutable fields of a celebrity.  It returns
// ErrCelebrityNotFound when the id does not exist.
func (r *CelebrityRepo) Update(ctx context.Context, c *Celebrity) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE celebrities SET name=?, slug=?, bio=?, category=?, photo=?, published=?, is_active=? WHERE id=?",
		c.Name, c.Slug, c.Bio, c.Category, c.Photo, c.Published, c.IsActive, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM celebrities WHERE id=?)", c.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrCelebrityNotFound
		}
	}
	return nil
}

// Delete removes a celebrity by id.
func (r *CelebrityRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM celebrities WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCelebrityNotFound
	}
	return nil
}
