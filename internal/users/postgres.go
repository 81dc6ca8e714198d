package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/yourusername/galoya-api/internal/database"
)

// PostgresStore は users テーブルを使う Store 実装です。
type PostgresStore struct {
	db database.DBTX
}

// NewPostgresStore は PostgresStore を作成します。
func NewPostgresStore(db database.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectUser = `SELECT id, username, password_hash, created_at FROM users`

// GetByID は ID でユーザーを取得します。
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, selectUser+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").With("id", id).Wrap(err)
	}
	return user, nil
}

// GetByUsername はユーザー名でユーザーを取得します。
func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, selectUser+` WHERE username = $1`, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_USERNAME_FAILED").Wrap(err)
	}
	return user, nil
}

// Create はユーザーを作成します。ID が空なら採番します。
func (s *PostgresStore) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (id, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, user.ID, user.Username, user.PasswordHash).Scan(&user.CreatedAt)
	if database.IsUniqueViolation(err) {
		return ErrUsernameTaken
	}
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").With("username", user.Username).Wrap(err)
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
