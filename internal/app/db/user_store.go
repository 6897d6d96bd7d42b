package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mocrs/internal/app/user"
)

const userColumns = `id, username, first_name, last_name, email, is_admin, COALESCE(avatar_key, '')`

var userFieldColumns = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"isAdmin":   "is_admin",
	"avatarKey": "avatar_key",
}

// UserStore persists accounts in the users table.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore returns a UserStore backed by pool.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin, &u.AvatarKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetCredentials returns the user and its password hash.
func (s *UserStore) GetCredentials(ctx context.Context, username string) (*user.Credentials, error) {
	const q = `SELECT ` + userColumns + `, password FROM users WHERE username = $1`

	var c user.Credentials
	err := s.pool.QueryRow(ctx, q, username).Scan(
		&c.ID, &c.Username, &c.FirstName, &c.LastName, &c.Email, &c.IsAdmin, &c.AvatarKey,
		&c.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load credentials for %s: %w", username, err)
	}
	return &c, nil
}

// Create inserts a new account. passwordHash must already be hashed.
func (s *UserStore) Create(ctx context.Context, in user.NewUser, passwordHash string) (*user.User, error) {
	const q = `
		INSERT INTO users (username, password, first_name, last_name, email, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	u, err := scanUser(s.pool.QueryRow(ctx, q,
		in.Username, passwordHash, in.FirstName, in.LastName, in.Email, in.IsAdmin,
	))
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user %s: %w", in.Username, err)
	}
	return u, nil
}

// List returns every account ordered by username.
func (s *UserStore) List(ctx context.Context) ([]user.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY username`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Get returns the account with the rooms it created.
func (s *UserStore) Get(ctx context.Context, username string) (*user.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	u, err := scanUser(s.pool.QueryRow(ctx, q, username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load user %s: %w", username, err)
	}

	rows, err := s.pool.Query(ctx, `SELECT `+roomColumns+` FROM rooms WHERE creator_id = $1 ORDER BY id`, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms of %s: %w", username, err)
	}
	u.Rooms, err = collectRooms(rows)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Update applies a partial update. fields are keyed by JSON name; a password
// entry must already hold the hash.
func (s *UserStore) Update(ctx context.Context, username string, fields map[string]any) (*user.User, error) {
	setCols, values, err := PartialUpdate(fields, userFieldColumns)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`UPDATE users SET %s WHERE username = $%d RETURNING %s`,
		setCols, len(values)+1, userColumns)

	u, err := scanUser(s.pool.QueryRow(ctx, q, append(values, username)...))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user %s: %w", username, err)
	}
	return u, nil
}

// SetAvatarKey records the object key of the user's avatar.
func (s *UserStore) SetAvatarKey(ctx context.Context, username, key string) error {
	_, err := s.Update(ctx, username, map[string]any{"avatarKey": key})
	return err
}

// Delete removes the account and, through the foreign key, its rooms.
func (s *UserStore) Delete(ctx context.Context, username string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", username, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
