// Package handler exposes the HTTP handlers for the public content API, the
// auth subsystem and the admin/superadmin surfaces.  Handlers depend on
// small store interfaces rather than concrete repositories so tests can
// substitute in-memory fakes; the repository package provides the production
// implementations.
package handler

import (
	"context"
	"time"

	"github.com/glossline/glossline/internal/queue"
	"github.com/glossline/glossline/internal/repository"
)

// UserStore is the credential store consumed by the auth and admin handlers.
type UserStore interface {
	Create(ctx context.Context, name, email, password, role string, cost int) (repository.User, error)
	CreateSuperadmin(ctx context.Context, name, email, password string, cost int) (repository.User, error)
	GetByEmail(ctx context.Context, email string) (repository.User, error)
	GetByID(ctx context.Context, id uint64) (repository.User, error)
	List(ctx context.Context) ([]repository.User, error)
	SetRefreshToken(ctx context.Context, id uint64, token string) error
	ChangeRole(ctx context.Context, id uint64, role string) (repository.User, error)
	SetActive(ctx context.Context, id uint64, active bool) (repository.User, error)
	UpdatePassword(ctx context.Context, id uint64, password string, cost int) error
	DeleteSuperadmin(ctx context.Context, email, password string) error
}

// SettingsStore manages the system settings singleton.
type SettingsStore interface {
	Get(ctx context.Context) (repository.Settings, error)
	Update(ctx context.Context, email string, signupsEnabled, maintenanceMode bool) (repository.Settings, error)
	RotateAPIKey(ctx context.Context) (string, error)
	StampBackup(ctx context.Context) (time.Time, error)
}

// ResetStore issues and consumes one-time password-reset tokens.
type ResetStore interface {
	Issue(ctx context.Context, email string, ttl time.Duration) (string, error)
	Consume(ctx context.Context, token string) (string, error)
}

// AuditSink receives audit events for privileged operations.  Publish
// failures are deliberately ignored at call sites: auditing never fails the
// operation it records.
type AuditSink interface {
	Publish(ctx context.Context, ev queue.AuditEvent) error
}

// StatsStore provides the aggregate counts for the superadmin dashboard.
type StatsStore interface {
	Counts(ctx context.Context) (repository.Stats, error)
}

// CelebrityStore backs the celebrity endpoints.
type CelebrityStore interface {
	ListPublished(ctx context.Context, f repository.CelebrityFilter) ([]*repository.Celebrity, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*repository.Celebrity, error)
	ListAll(ctx context.Context) ([]*repository.Celebrity, error)
	Create(ctx context.Context, c *repository.Celebrity) error
	Update(ctx context.Context, c *repository.Celebrity) error
	Delete(ctx context.Context, id uint64) error
}

// OutfitStore backs the outfit endpoints.
type OutfitStore interface {
	ListPublished(ctx context.Context, f repository.OutfitFilter) ([]*repository.Outfit, error)
	ListAll(ctx context.Context) ([]*repository.Outfit, error)
	Create(ctx context.Context, o *repository.Outfit) error
	Update(ctx context.Context, o *repository.Outfit) error
	Delete(ctx context.Context, id uint64) error
}

// ReviewStore backs the movie review endpoints.
type ReviewStore interface {
	ListPublished(ctx context.Context, f repository.ReviewFilter) ([]*repository.Review, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*repository.Review, error)
	ListAll(ctx context.Context) ([]*repository.Review, error)
	Create(ctx context.Context, v *repository.Review) error
	Update(ctx context.Context, v *repository.Review) error
	Delete(ctx context.Context, id uint64) error
}

// MovieStore backs the upcoming movie endpoints.
type MovieStore interface {
	ListPublished(ctx context.Context, f repository.MovieFilter) ([]*repository.Movie, error)
	ListAll(ctx context.Context) ([]*repository.Movie, error)
	Create(ctx context.Context, m *repository.Movie) error
	Update(ctx context.Context, m *repository.Movie) error
	Delete(ctx context.Context, id uint64) error
}

// userResponse is the API shape of a user record.  The password hash and
// the stored refresh token are never serialized.
type userResponse struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u repository.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		Avatar:    u.Avatar.String,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
