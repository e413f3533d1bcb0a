package utils

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var dummyHashes sync.Map // cost -> []byte

// dummyHash returns a fixed hash built at cost, so comparing against it
// takes as long as comparing against a real hash of the same cost.
func dummyHash(cost int) []byte {
	if h, ok := dummyHashes.Load(cost); ok {
		return h.([]byte)
	}
	b, err := bcrypt.GenerateFromPassword([]byte("no-such-account"), cost)
	if err != nil {
		b, _ = bcrypt.GenerateFromPassword([]byte("no-such-account"), bcrypt.DefaultCost)
	}
	h, _ := dummyHashes.LoadOrStore(cost, b)
	return h.([]byte)
}

// BurnCompare runs a bcrypt comparison at cost against a fixed hash and
// discards the result.  Login calls it when no account matches so an
// unknown email takes as long to reject as a wrong password.
func BurnCompare(plain string, cost int) {
	_ = bcrypt.CompareHashAndPassword(dummyHash(cost), []byte(plain))
}
