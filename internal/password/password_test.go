package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashIsSaltedPerCall(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("correct horse")
	require.NoError(t, err)
	second, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("correct horse", first))
	assert.True(t, h.Verify("correct horse", second))
}

func TestVerifyFailsClosed(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hashed, err := h.Hash("correct")
	require.NoError(t, err)

	assert.False(t, h.Verify("wrong", hashed))
	assert.False(t, h.Verify("correct", ""))
	assert.False(t, h.Verify("correct", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("correct", hashed[:20]))
}

func TestHashRejectsEmpty(t *testing.T) {
	_, err := NewHasher(bcrypt.MinCost).Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestNewHasherClampsCost(t *testing.T) {
	assert.Equal(t, DefaultCost, NewHasher(0).cost)
	assert.Equal(t, DefaultCost, NewHasher(99).cost)
	assert.Equal(t, 12, NewHasher(12).cost)
}
