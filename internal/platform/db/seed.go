package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrleave/internal/domain/auth"
	"hrleave/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedAdminEmail != "" {
		if err := ensureAdminUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return err
		}
	}
	if cfg.SeedCatalog {
		if err := ensureLeaveTypeCatalog(ctx, pool); err != nil {
			return err
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return errors.New("seed admin requires SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD")
	}

	var existing string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, password_hash, role_name)
    VALUES ($1,$2,$3)
  `, email, hash, auth.RoleHR)
	return err
}

// ensureLeaveTypeCatalog seeds the default reference catalog once. Emergency
// leave draws from the Annual pool (same alias group); the others anchor
// their own pools.
func ensureLeaveTypeCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM leave_types").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var annualID string
	if err := pool.QueryRow(ctx, `
    INSERT INTO leave_types (name, code, default_days)
    VALUES ('Annual Leave', 'ANNUAL', 14)
    RETURNING id
  `).Scan(&annualID); err != nil {
		return err
	}

	anchored := []struct {
		name string
		code string
		days int
	}{
		{"Medical Leave", "MEDICAL", 10},
		{"Hospitalization Leave", "HOSP", 16},
	}
	for _, t := range anchored {
		if _, err := pool.Exec(ctx, `
      INSERT INTO leave_types (name, code, default_days)
      VALUES ($1,$2,$3)
    `, t.name, t.code, t.days); err != nil {
			return err
		}
	}

	_, err := pool.Exec(ctx, `
    INSERT INTO leave_types (name, code, default_days, alias_group_id)
    VALUES ('Emergency Leave', 'EMERGENCY', 0, $1)
  `, annualID)
	return err
}
