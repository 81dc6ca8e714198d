// Package users は管理者ユーザーの資格情報ストアを提供します。
package users

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound はユーザーが存在しない場合に返ります。
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken は同名のユーザーが既に存在する場合に返ります。
	ErrUsernameTaken = errors.New("username already exists")
)

// User は管理画面にログインできるユーザーです。
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Store はユーザーの永続化を担います。
// ユーザーは管理CLIからのみ作成され、更新・削除の経路は持ちません。
type Store interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) error
}
