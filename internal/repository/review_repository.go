package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/glossline/glossline/internal/utils"
)

// excerptLen caps the plain-text excerpt derived from a review body.
const excerptLen = 280

// Review is a movie review with a rich-text body.  The excerpt column holds
// an HTML-stripped preview derived on every write so list endpoints never
// ship markup.
type Review struct {
	ID        uint64
	Title     string
	Slug      string
	Body      string
	Excerpt   string
	Rating    uint8 // 1..10
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewFilter narrows public review listings.
type ReviewFilter struct {
	MinRating uint8  // 0 means any rating
	Search    string // case-insensitive title substring
	Page      int
	Limit     int
}

// ErrReviewNotFound is returned when a review lookup yields no row.
var ErrReviewNotFound = errors.New("review not found")

// ReviewRepo encapsulates all database queries related to movie reviews.
type ReviewRepo struct{ db *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewColumns = "id,title,slug,body,excerpt,rating,published,created_at,updated_at"

func scanReviews(rows *sql.Rows) ([]*Review, error) {
	defer rows.Close()
	var out []*Review
	for rows.Next() {
		v := new(Review)
		if err := rows.Scan(&v.ID, &v.Title, &v.Slug, &v.Body, &v.Excerpt,
			&v.Rating, &v.Published, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListPublished returns published reviews matching the filter, newest first.
func (r *ReviewRepo) ListPublished(ctx context.Context, f ReviewFilter) ([]*Review, error) {
	where := []string{"published=1"}
	args := []interface{}{}
	if f.MinRating > 0 {
		where = append(where, "rating>=?")
		args = append(args, f.MinRating)
	}
	if f.Search != "" {
		where = append(where, "title LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}
	limit, offset := limitOffset(f.Page, f.Limit)
	q := "SELECT " + reviewColumns + " FROM movie_reviews WHERE " +
		strings.Join(where, " AND ") + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanReviews(rows)
}

// GetPublishedBySlug returns one published review by slug.
func (r *ReviewRepo) GetPublishedBySlug(ctx context.Context, slug string) (*Review, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+reviewColumns+" FROM movie_reviews WHERE slug=? AND published=1 LIMIT 1", slug)
	v := new(Review)
	if err := row.Scan(&v.ID, &v.Title, &v.Slug, &v.Body, &v.Excerpt,
		&v.Rating, &v.Published, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return v, nil
}

// ListAll returns every review for the admin view.
func (r *ReviewRepo) ListAll(ctx context.Context) ([]*Review, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM movie_reviews ORDER BY id")
	if err != nil {
		return nil, err
	}
	return scanReviews(rows)
}

// Create inserts a review, deriving the excerpt from the body.
func (r *ReviewRepo) Create(ctx context.Context, v *Review) error {
	v.Excerpt = utils.Excerpt(v.Body, excerptLen)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO movie_reviews (title, slug, body, excerpt, rating, published) VALUES (?,?,?,?,?,?)",
		v.Title, v.Slug, v.Body, v.Excerpt, v.Rating, v.Published)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM movie_reviews WHERE id=?", v.ID).
		Scan(&v.CreatedAt, &v.UpdatedAt)
}

// Update rewrites a review, re-deriving the excerpt.
func (r *ReviewRepo) Update(ctx context.Context, v *Review) error {
	v.Excerpt = utils.Excerpt(v.Body, excerptLen)
	res, err := r.db.ExecContext(ctx,
		"UPDATE movie_reviews SET title=?, slug=?, body=?, excerpt=?, rating=?, published=? WHERE id=?",
		v.Title, v.Slug, v.Body, v.Excerpt, v.Rating, v.Published, v.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM movie_reviews WHERE id=?)", v.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrReviewNotFound
		}
	}
	return nil
}

// Delete removes a review by id.
func (r *ReviewRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM movie_reviews WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	return nil
}
