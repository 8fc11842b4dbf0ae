package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Settings is the process-wide configuration singleton.  At most one row
// exists (id=1); it is created lazily with defaults on first access.
type Settings struct {
	NotificationEmail string
	APIKey            string
	SignupsEnabled    bool
	MaintenanceMode   bool
	LastBackupAt      sql.NullTime
	UpdatedAt         time.Time
}

// SettingsRepo manages the system_settings singleton row.
type SettingsRepo struct{ db *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// settingsRowID pins the singleton to a single primary key value.
const settingsRowID = 1

// ensure lazily creates the singleton row with defaults.  INSERT IGNORE
// makes concurrent first accesses converge on one row; the API key is
// generated once and kept by whichever insert wins.
func (r *SettingsRepo) ensure(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO system_settings (id, api_key) VALUES (?, ?)",
		settingsRowID, uuid.NewString())
	return err
}

// Get returns the settings singleton, creating it with defaults when absent.
func (r *SettingsRepo) Get(ctx context.Context) (Settings, error) {
	if err := r.ensure(ctx); err != nil {
		return Settings{}, err
	}
	var s Settings
	err := r.db.QueryRowContext(ctx,
		`SELECT notification_email, api_key, signups_enabled, maintenance_mode, last_backup_at, updated_at
		 FROM system_settings WHERE id=?`, settingsRowID).
		Scan(&s.NotificationEmail, &s.APIKey, &s.SignupsEnabled, &s.MaintenanceMode, &s.LastBackupAt, &s.UpdatedAt)
	return s, err
}

// Update rewrites the mutable settings fields and returns the fresh record.
func (r *SettingsRepo) Update(ctx context.Context, email string, signupsEnabled, maintenanceMode bool) (Settings, error) {
	if err := r.ensure(ctx); err != nil {
		return Settings{}, err
	}
	_, err := r.db.ExecContext(ctx,
		"UPDATE system_settings SET notification_email=?, signups_enabled=?, maintenance_mode=? WHERE id=?",
		email, signupsEnabled, maintenanceMode, settingsRowID)
	if err != nil {
		return Settings{}, err
	}
	return r.Get(ctx)
}

// RotateAPIKey replaces the system API key with a fresh value and returns it.
func (r *SettingsRepo) RotateAPIKey(ctx context.Context) (string, error) {
	if err := r.ensure(ctx); err != nil {
		return "", err
	}
	key := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"UPDATE system_settings SET api_key=? WHERE id=?", key, settingsRowID)
	if err != nil {
		return "", err
	}
	return key, nil
}

// StampBackup records the completion time of a backup run and returns it.
func (r *SettingsRepo) StampBackup(ctx context.Context) (time.Time, error) {
	if err := r.ensure(ctx); err != nil {
		return time.Time{}, err
	}
	now := time.Now().UTC().Truncate(time.Second)
	_, err := r.db.ExecContext(ctx,
		"UPDATE system_settings SET last_backup_at=? WHERE id=?", now, settingsRowID)
	if err != nil {
		return time.Time{}, err
	}
	return now, nil
}
