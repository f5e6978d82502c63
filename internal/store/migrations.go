package store

import (
	"context"
	"fmt"
)

// migrations returns the DDL statements for d, applied in order on every
// start. Each statement is idempotent.
func migrations(d Dialect) []string {
	switch d {
	case Postgres:
		return []string{
			`CREATE TABLE IF NOT EXISTS admins (
				id VARCHAR(36) PRIMARY KEY,
				email VARCHAR(255) UNIQUE NOT NULL,
				password VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS projects (
				id VARCHAR(36) PRIMARY KEY,
				admin_id VARCHAR(36) NOT NULL REFERENCES admins(id) ON DELETE CASCADE,
				title VARCHAR(255) NOT NULL,
				description TEXT NOT NULL,
				category VARCHAR(50) NOT NULL,
				year VARCHAR(50) NOT NULL,
				stack TEXT NOT NULL DEFAULT '[]',
				image TEXT,
				link TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_projects_admin_id ON projects(admin_id)`,
			`CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at)`,
		}
	case MySQL:
		return []string{
			`CREATE TABLE IF NOT EXISTS admins (
				id VARCHAR(36) PRIMARY KEY,
				email VARCHAR(255) COLLATE utf8mb4_bin NOT NULL,
				password VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				is_active TINYINT(1) NOT NULL DEFAULT 1,
				created_at DATETIME(6) NOT NULL,
				updated_at DATETIME(6) NOT NULL,
				UNIQUE KEY uq_admins_email (email)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS projects (
				id VARCHAR(36) PRIMARY KEY,
				admin_id VARCHAR(36) NOT NULL,
				title VARCHAR(255) NOT NULL,
				description TEXT NOT NULL,
				category VARCHAR(50) NOT NULL,
				year VARCHAR(50) NOT NULL,
				stack TEXT NOT NULL,
				image TEXT NULL,
				link TEXT NULL,
				created_at DATETIME(6) NOT NULL,
				updated_at DATETIME(6) NOT NULL,
				KEY idx_projects_admin_id (admin_id),
				KEY idx_projects_created_at (created_at),
				CONSTRAINT fk_projects_admin FOREIGN KEY (admin_id) REFERENCES admins(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		}
	default:
		return []string{
			`CREATE TABLE IF NOT EXISTS admins (
				id TEXT PRIMARY KEY,
				email TEXT UNIQUE NOT NULL,
				password TEXT NOT NULL,
				name TEXT NOT NULL,
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS projects (
				id TEXT PRIMARY KEY,
				admin_id TEXT NOT NULL REFERENCES admins(id) ON DELETE CASCADE,
				title TEXT NOT NULL,
				description TEXT NOT NULL,
				category TEXT NOT NULL,
				year TEXT NOT NULL,
				stack TEXT NOT NULL DEFAULT '[]',
				image TEXT,
				link TEXT,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_projects_admin_id ON projects(admin_id)`,
			`CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at)`,
		}
	}
}

func (s *Store) migrate(ctx context.Context) error {
	for _, m := range migrations(s.dialect) {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
