// Package session はサーバー側セッションの発行・更新・破棄を提供します。
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound はセッションが存在しない（期限切れを含む）場合に返ります。
var ErrNotFound = errors.New("session not found")

// Record はストアに保存されるセッションの中身です。
type Record struct {
	UserID     string    `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Store はセッションレコードを永続化します。
// 実装はキー単位でアトミックに読み書きできる必要があります。
type Store interface {
	// Create はキーが未使用の場合のみ保存します。既に存在すれば false を返します。
	Create(ctx context.Context, key string, record *Record, ttl time.Duration) (bool, error)
	// Get はレコードを取得します。存在しない場合は ErrNotFound を返します。
	Get(ctx context.Context, key string) (*Record, error)
	// Refresh はキーが存在する場合のみ上書きします。破棄済みなら false を返します。
	Refresh(ctx context.Context, key string, record *Record, ttl time.Duration) (bool, error)
	// Delete はレコードを削除します。存在しなくてもエラーにしません。
	Delete(ctx context.Context, key string) error
}
