package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/glossline/glossline/internal/utils"
)

// Known role values stored in users.role.  There is no implicit hierarchy;
// every endpoint declares the exact set of roles it accepts.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// User mirrors the 'users' table.  PasswordHash and RefreshToken never leave
// the handler layer in API responses.
type User struct {
	ID           uint64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	RefreshToken sql.NullString
	Avatar       sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepo persists user records and enforces the single-superadmin
// invariant at the storage level via the unique superadmin_slot index.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,role,is_active,refresh_token,avatar,created_at,updated_at"

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.RefreshToken, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// mapInsertErr classifies MySQL duplicate-key failures.  Error 1062 carries
// the violated index name, which distinguishes an email collision from a
// second superadmin hitting the slot index.
func mapInsertErr(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "superadmin_slot") {
		return ErrSuperadminExists
	}
	return ErrEmailExists
}

// Create inserts a regular or admin user and returns the stored record.
// The public signup path never creates a superadmin: that role is rejected
// with ErrRoleNotAllowed and has its own provisioning method below.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, cost int) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	switch role {
	case RoleUser, RoleAdmin:
	case RoleSuperadmin:
		return User{}, ErrRoleNotAllowed
	default:
		return User{}, ErrInvalidRole
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return User{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		name, email, hash, role)
	if err != nil {
		return User{}, mapInsertErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// CreateSuperadmin provisions the single superadmin account.  The insert
// claims the unique superadmin slot, so a concurrent second attempt fails
// atomically with ErrSuperadminExists instead of racing a prior SELECT.
func (r *UserRepo) CreateSuperadmin(ctx context.Context, name, email, password string, cost int) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return User{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, superadmin_slot) VALUES (?,?,?,?,1)",
		name, email, hash, RoleSuperadmin)
	if err != nil {
		return User{}, mapInsertErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

// List returns all users ordered by id for the admin user listing.
func (r *UserRepo) List(ctx context.Context) ([]User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive,
			&u.RefreshToken, &u.Avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SetRefreshToken overwrites the single stored refresh token.  An empty
// token clears the column (logout).  A user holds at most one valid refresh
// token: a new login invalidates the previous session by overwrite.
func (r *UserRepo) SetRefreshToken(ctx context.Context, id uint64, token string) error {
	var v sql.NullString
	if token != "" {
		v = sql.NullString{String: token, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token=? WHERE id=?", v, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is also 0 when the value did not change; confirm the
		// row exists before reporting a miss.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ChangeRole updates a user's role subject to the superadmin invariant:
// the superadmin account cannot be demoted through this path, and promoting
// someone to superadmin fails while the slot is taken.
func (r *UserRepo) ChangeRole(ctx context.Context, id uint64, newRole string) (User, error) {
	switch newRole {
	case RoleUser, RoleAdmin, RoleSuperadmin:
	default:
		return User{}, ErrInvalidRole
	}
	target, err := r.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if target.Role == RoleSuperadmin && newRole != RoleSuperadmin {
		return User{}, ErrProtectedRole
	}
	var slot sql.NullInt16
	if newRole == RoleSuperadmin {
		slot = sql.NullInt16{Int16: 1, Valid: true}
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=?, superadmin_slot=? WHERE id=?", newRole, slot, id); err != nil {
		return User{}, mapInsertErr(err)
	}
	return r.GetByID(ctx, id)
}

// SetActive toggles the account active flag.  Deactivated accounts keep
// their records but can no longer log in or refresh.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) (User, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return User{}, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=? WHERE id=?", active, id); err != nil {
		return User{}, err
	}
	return r.GetByID(ctx, id)
}

// UpdatePassword rehashes and stores a new password for the user.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// DeleteSuperadmin removes the superadmin account after re-verifying the
// current password.  This is the only path that deletes a superadmin; the
// role-update path refuses to touch it.
func (r *UserRepo) DeleteSuperadmin(ctx context.Context, email, password string) error {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.Role != RoleSuperadmin {
		return ErrUserNotFound
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return ErrInvalidPassword
	}
	_, err = r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", u.ID)
	return err
}
