package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Role values. Every account defaults to RoleUser; admins are granted
// explicitly through the user_roles table.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type UpsertUser struct {
	FirebaseUID string
	Email       string
	DisplayName string
}

// EnsureUser upserts the user row for a verified login and returns the
// database id used as scenario owner id.
func (r *Repo) EnsureUser(ctx context.Context, u UpsertUser) (string, error) {
	if u.FirebaseUID == "" {
		return "", fmt.Errorf("firebase_uid required")
	}

	const q = `
insert into users (firebase_uid, email, display_name, updated_at)
values ($1, nullif($2,''), nullif($3,''), now())
on conflict (firebase_uid) do update
set
  email = coalesce(excluded.email, users.email),
  display_name = coalesce(excluded.display_name, users.display_name),
  updated_at = now()
returning id::text;
`
	var id string
	if err := r.db.QueryRow(ctx, q, u.FirebaseUID, u.Email, u.DisplayName).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// Role resolves the user's role. Users without a user_roles row are plain
// users; when multiple rows exist the admin one wins (admin sorts first).
func (r *Repo) Role(ctx context.Context, userDBID string) (string, error) {
	const q = `
select role from user_roles
where user_id = $1::uuid
order by role asc
limit 1;
`
	var role string
	err := r.db.QueryRow(ctx, q, userDBID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return RoleUser, nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// Grant assigns a role to a user, replacing any existing assignment.
func (r *Repo) Grant(ctx context.Context, userDBID, role string) error {
	if role != RoleAdmin && role != RoleUser {
		return fmt.Errorf("unknown role %q", role)
	}

	const q = `
insert into user_roles (user_id, role)
values ($1::uuid, $2)
on conflict (user_id) do update set role = excluded.role;
`
	_, err := r.db.Exec(ctx, q, userDBID, role)
	return err
}
