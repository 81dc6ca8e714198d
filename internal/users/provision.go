package users

import (
	"context"
	"errors"
	"strings"
)

// MinPasswordLength は管理者パスワードの最小長です。
const MinPasswordLength = 8

// ErrWeakPassword はパスワードが短すぎる場合に返ります。
var ErrWeakPassword = errors.New("password must be at least 8 characters")

// Hasher はパスワードのハッシュ化を行います。
type Hasher interface {
	Hash(plaintext string) (string, error)
}

// Provision は管理者ユーザーを作成します。パスワードはハッシュ化して保存します。
func Provision(ctx context.Context, store Store, hasher Hasher, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := store.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hashed, err := hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := &User{Username: username, PasswordHash: hashed}
	if err := store.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
