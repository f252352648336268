package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockhubapp/stockhub/internal/config"
	"github.com/stockhubapp/stockhub/internal/domain/user"
	"github.com/stockhubapp/stockhub/internal/security"
)

// EnsureAdminUser seeds the default organization and an administrator on
// first boot. It is a no-op when the admin credentials are not configured
// or the user already exists.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	orgID, err := ensureOrganization(ctx, pool, cfg.AdminOrganization)

	if err != nil {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword, cfg.BcryptCost)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:             uuid.NewString(),
		Email:          cfg.AdminEmail,
		PasswordHash:   hash,
		FirstName:      cfg.AdminFirstName,
		LastName:       cfg.AdminLastName,
		OrganizationID: orgID,
		RoleID:         user.RoleAdmin,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, first_name, last_name, organization_id, role_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.OrganizationID, u.RoleID, u.CreatedAt, u.UpdatedAt,
	)

	return err
}

func ensureOrganization(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string

	err := pool.QueryRow(ctx, `SELECT id FROM organizations WHERE name = $1`, name).Scan(&id)

	if err == nil {
		return id, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	id = uuid.NewString()

	_, err = pool.Exec(ctx,
		`INSERT INTO organizations (id, name, created_at) VALUES ($1,$2,$3)`,
		id, name, time.Now().UTC(),
	)

	if err != nil {
		return "", err
	}

	return id, nil
}
