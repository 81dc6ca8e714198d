// Package password はパスワードのハッシュ化と検証を提供します。
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost は bcrypt の既定コストです。
const DefaultCost = 10

// ErrEmptyPassword は空のパスワードをハッシュ化しようとした場合に返ります。
var ErrEmptyPassword = errors.New("password must not be empty")

// Hasher はソルト付きの適応型ハッシュでパスワードを扱います。
type Hasher struct {
	cost int
}

// NewHasher は指定コストの Hasher を作成します。範囲外のコストは既定値に丸めます。
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash はパスワードをハッシュ化します。呼び出しごとにソルトが変わるため同じ入力でも結果は毎回異なります。
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify はパスワードとハッシュが一致するかを返します。
// ハッシュが壊れている場合を含め、エラーはすべて不一致として扱います。
func (h *Hasher) Verify(plaintext, hashed string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
