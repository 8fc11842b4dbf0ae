package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Outfit is a look worn by a celebrity, linked via celebrity_id.
type Outfit struct {
	ID          uint64
	CelebrityID uint64
	Title       string
	Description string
	Image       sql.NullString
	Occasion    string
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OutfitFilter narrows public outfit listings.
type OutfitFilter struct {
	CelebrityID uint64 // 0 means any celebrity
	Occasion    string // exact occasion match
	Page        int
	Limit       int
}

// ErrOutfitNotFound is returned when an outfit lookup yields no row.
var ErrOutfitNotFound = errors.New("outfit not found")

// OutfitRepo encapsulates all database queries related to outfits.
type OutfitRepo struct{ db *sql.DB }

func NewOutfitRepo(db *sql.DB) *OutfitRepo { return &OutfitRepo{db: db} }

const outfitColumns = "id,celebrity_id,title,description,image,occasion,published,created_at,updated_at"

func scanOutfits(rows *sql.Rows) ([]*Outfit, error) {
	defer rows.Close()
	var out []*Outfit
	for rows.Next() {
		o := new(Outfit)
		if err := rows.Scan(&o.ID, &o.CelebrityID, &o.Title, &o.Description, &o.Image,
			&o.Occasion, &o.Published, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListPublished returns published outfits matching the filter, newest first.
// Outfits whose celebrity is unpublished or inactive are excluded so a
// hidden profile hides its looks as well.
func (r *OutfitRepo) ListPublished(ctx context.Context, f OutfitFilter) ([]*Outfit, error) {
	where := []string{"o.published=1", "c.published=1", "c.is_active=1"}
	args := []interface{}{}
	if f.CelebrityID != 0 {
		where = append(where, "o.celebrity_id=?")
		args = append(args, f.CelebrityID)
	}
	if f.Occasion != "" {
		where = append(where, "o.occasion=?")
		args = append(args, f.Occasion)
	}
	limit, offset := limitOffset(f.Page, f.Limit)
	q := `SELECT o.id,o.celebrity_id,o.title,o.description,o.image,o.occasion,o.published,o.created_at,o.updated_at
	      FROM outfits o JOIN celebrities c ON c.id = o.celebrity_id
	      WHERE ` + strings.Join(where, " AND ") + ` ORDER BY o.created_at DESC, o.id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanOutfits(rows)
}

// ListAll returns every outfit for the admin view.
func (r *OutfitRepo) ListAll(ctx context.Context) ([]*Outfit, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+outfitColumns+" FROM outfits ORDER BY id")
	if err != nil {
		return nil, err
	}
	return scanOutfits(rows)
}

// Create inserts an outfit and populates the generated fields.  A missing
// celebrity surfaces as a foreign key error mapped to ErrCelebrityNotFound.
func (r *OutfitRepo) Create(ctx context.Context, o *Outfit) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO outfits (celebrity_id, title, description, image, occasion, published) VALUES (?,?,?,?,?,?)",
		o.CelebrityID, o.Title, o.Description, o.Image, o.Occasion, o.Published)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1452") { // FK violation
			return ErrCelebrityNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM outfits WHERE id=?", o.ID).
		Scan(&o.CreatedAt, &o.UpdatedAt)
}

// Update rewrites the mutable fields of an outfit.
func (r *OutfitRepo) Update(ctx context.Context, o *Outfit) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE outfits SET celebrity_id=?, title=?, description=?, image=?, occasion=?, published=? WHERE id=?",
		o.CelebrityID, o.Title, o.Description, o.Image, o.Occasion, o.Published, o.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1452") {
			return ErrCelebrityNotFound
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM outfits WHERE id=?)", o.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrOutfitNotFound
		}
	}
	return nil
}

// Delete removes an outfit by id.
func (r *OutfitRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM outfits WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOutfitNotFound
	}
	return nil
}
