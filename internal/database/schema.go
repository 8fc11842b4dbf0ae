package database

import (
	"context"
	"database/sql"
)

// schema holds the DDL for every table the application uses.  Statements are
// idempotent so Migrate can run on every startup.
//
// The users table carries a nullable superadmin_slot column with a UNIQUE
// index.  The column is 1 exactly when role = 'superadmin' and NULL
// otherwise, which makes "at most one superadmin exists" a storage-level
// constraint instead of a check-then-write sequence: a second concurrent
// provisioning attempt fails with a duplicate-key error.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(120) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		refresh_token TEXT NULL,
		superadmin_slot TINYINT NULL,
		avatar VARCHAR(512) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email),
		UNIQUE KEY uq_users_superadmin_slot (superadmin_slot)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS celebrities (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(200) NOT NULL,
		slug VARCHAR(200) NOT NULL,
		bio TEXT NULL,
		category VARCHAR(80) NOT NULL DEFAULT '',
		photo VARCHAR(512) NULL,
		published TINYINT(1) NOT NULL DEFAULT 0,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_celebrities_slug (slug)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS outfits (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		celebrity_id BIGINT UNSIGNED NOT NULL,
		title VARCHAR(200) NOT NULL,
		description TEXT NULL,
		image VARCHAR(512) NULL,
		occasion VARCHAR(80) NOT NULL DEFAULT '',
		published TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_outfits_celebrity (celebrity_id),
		CONSTRAINT fk_outfits_celebrity FOREIGN KEY (celebrity_id) REFERENCES celebrities(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS movie_reviews (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title VARCHAR(200) NOT NULL,
		slug VARCHAR(200) NOT NULL,
		body MEDIUMTEXT NOT NULL,
		excerpt VARCHAR(500) NOT NULL DEFAULT '',
		rating TINYINT UNSIGNED NOT NULL,
		published TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_movie_reviews_slug (slug)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS upcoming_movies (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title VARCHAR(200) NOT NULL,
		genre VARCHAR(80) NOT NULL DEFAULT '',
		poster VARCHAR(512) NULL,
		release_date DATE NOT NULL,
		published TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_upcoming_movies_release (release_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS system_settings (
		id TINYINT UNSIGNED NOT NULL,
		notification_email VARCHAR(255) NOT NULL DEFAULT '',
		api_key VARCHAR(64) NOT NULL DEFAULT '',
		signups_enabled TINYINT(1) NOT NULL DEFAULT 1,
		maintenance_mode TINYINT(1) NOT NULL DEFAULT 0,
		last_backup_at DATETIME NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates all application tables when they do not exist yet.  It is
// called once on startup before the HTTP server begins accepting requests.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
