package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, VerifyPassword(hash, "s3cret!"))
	assert.False(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword("not-a-hash", "s3cret!"))
}

func TestBurnCompareDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { BurnCompare("anything", bcrypt.MinCost) })
	assert.NotPanics(t, func() { BurnCompare("anything", 99) })
}

func TestDummyHashMatchesRequestedCost(t *testing.T) {
	for _, cost := range []int{bcrypt.MinCost, bcrypt.MinCost + 1} {
		got, err := bcrypt.Cost(dummyHash(cost))
		require.NoError(t, err)
		assert.Equal(t, cost, got)
	}
	// cached per cost
	assert.Equal(t, dummyHash(bcrypt.MinCost), dummyHash(bcrypt.MinCost))

	// an invalid cost falls back to the default rather than an empty hash
	got, err := bcrypt.Cost(dummyHash(99))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, got)
}
