package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Movie is an upcoming release listed on the site.
type Movie struct {
	ID          uint64
	Title       string
	Genre       string
	Poster      sql.NullString
	ReleaseDate time.Time
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MovieFilter narrows public upcoming-movie listings.
type MovieFilter struct {
	Genre string    // exact genre match
	After time.Time // only releases on or after this date; zero means any
	Page  int
	Limit int
}

// ErrMovieNotFound is returned when a movie lookup yields no row.
var ErrMovieNotFound = errors.New("movie not found")

// MovieRepo encapsulates all database queries related to upcoming movies.
type MovieRepo struct{ db *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const movieColumns = "id,title,genre,poster,release_date,published,created_at,updated_at"

func scanMovies(rows *sql.Rows) ([]*Movie, error) {
	defer rows.Close()
	var out []*Movie
	for rows.Next() {
		m := new(Movie)
		if err := rows.Scan(&m.ID, &m.Title, &m.Genre, &m.Poster,
			&m.ReleaseDate, &m.Published, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListPublished returns published upcoming movies matching the filter,
// soonest release first.
func (r *MovieRepo) ListPublished(ctx context.Context, f MovieFilter) ([]*Movie, error) {
	where := []string{"published=1"}
	args := []interface{}{}
	if f.Genre != "" {
		where = append(where, "genre=?")
		args = append(args, f.Genre)
	}
	if !f.After.IsZero() {
		where = append(where, "release_date>=?")
		args = append(args, f.After.Format("2006-01-02"))
	}
	limit, offset := limitOffset(f.Page, f.Limit)
	q := "SELECT " + movieColumns + " FROM upcoming_movies WHERE " +
		strings.Join(where, " AND ") + " ORDER BY release_date ASC, id ASC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanMovies(rows)
}

// ListAll returns every movie for the admin view.
func (r *MovieRepo) ListAll(ctx context.Context) ([]*Movie, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+movieColumns+" FROM upcoming_movies ORDER BY id")
	if err != nil {
		return nil, err
	}
	return scanMovies(rows)
}

// Create inserts a movie and populates the generated fields.
func (r *MovieRepo) Create(ctx context.Context, m *Movie) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO upcoming_movies (title, genre, poster, release_date, published) VALUES (?,?,?,?,?)",
		m.Title, m.Genre, m.Poster, m.ReleaseDate.Format("2006-01-02"), m.Published)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM upcoming_movies WHERE id=?", m.ID).
		Scan(&m.CreatedAt, &m.UpdatedAt)
}

// Update rewrites the mutable fields of a movie.
func (r *MovieRepo) Update(ctx context.Context, m *Movie) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE upcoming_movies SET title=?, genre=?, poster=?, release_date=?, published=? WHERE id=?",
		m.Title, m.Genre, m.Poster, m.ReleaseDate.Format("2006-01-02"), m.Published, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM upcoming_movies WHERE id=?)", m.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrMovieNotFound
		}
	}
	return nil
}

// Delete removes a movie by id.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM upcoming_movies WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}
