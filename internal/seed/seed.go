package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/controlcenter/internal/models"
	"github.com/Simplici0/controlcenter/internal/store"
)

const (
	defaultMaterialType  = "PLA"
	defaultMaterialColor = "Genérico"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way. The admin user goes to
// the users table, settings and the default material to the collection store.
func Run(ctx context.Context, db *sql.DB, repo *store.Repository, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(ctx, tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	if err := ensureSettings(ctx, repo, &stats); err != nil {
		return Stats{}, err
	}
	if err := ensureMaterial(ctx, repo, &stats); err != nil {
		return Stats{}, err
	}

	return stats, nil
}

func seedAdmin(ctx context.Context, tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var stored string
	found := false
	err := tx.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE email = ? LIMIT 1`, email).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("check admin user existence: %w", err)
	default:
		found = true
		// Hashes written before bcrypt (sha256 hex or plain text) are replaced.
		if _, costErr := bcrypt.Cost([]byte(stored)); costErr == nil {
			return nil
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if found {
		if _, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE email = ?`, string(hash), email); err != nil {
			return fmt.Errorf("rehash admin user: %w", err)
		}
		stats.Updates++
		return nil
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureSettings(ctx context.Context, repo *store.Repository, stats *Stats) error {
	written, err := repo.Written(ctx, store.Config)
	if err != nil {
		return fmt.Errorf("check settings: %w", err)
	}
	if written {
		return nil
	}
	if err := repo.SaveSettings(ctx, models.DefaultSettings()); err != nil {
		return fmt.Errorf("insert default settings: %w", err)
	}
	stats.Inserts++
	return nil
}

// ensureMaterial seeds the default material into a materials collection that
// was never written. Once users manage materials, deleting or renaming it
// sticks.
func ensureMaterial(ctx context.Context, repo *store.Repository, stats *Stats) error {
	written, err := repo.Written(ctx, store.Materials)
	if err != nil {
		return fmt.Errorf("check materials: %w", err)
	}
	if written {
		return nil
	}

	materials := []models.Material{{
		ID:           1,
		Type:         defaultMaterialType,
		Color:        defaultMaterialColor,
		WeightOnHand: decimal.Zero,
		UnitCost:     decimal.Zero,
	}}
	if err := repo.SaveMaterials(ctx, materials); err != nil {
		return fmt.Errorf("insert default material: %w", err)
	}
	stats.Inserts++
	return nil
}
