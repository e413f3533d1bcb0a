package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/beverage-reservation/internal/utils"
)

func validSignup() SignupInput {
	return SignupInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Gender:    "female",
		Birthday:  "1990-12-10T00:00:00.000Z",
		Email:     "Ada@Example.com",
		Phone:     "0812345678",
		Password:  "analytical",
	}
}

func TestSignupStoresHashedMember(t *testing.T) {
	st := newFakeStore()
	svc := NewAccountService(st, bcrypt.MinCost)

	m, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "ada@example.com", m.Email)
	assert.Equal(t, "1990-12-10", m.Birthday.Format("2006-01-02"))
	assert.NotEqual(t, "analytical", m.PasswordHash)
	assert.True(t, utils.VerifyPassword(m.PasswordHash, "analytical"))
}

func TestSignupRejectsDuplicates(t *testing.T) {
	st := newFakeStore()
	svc := NewAccountService(st, bcrypt.MinCost)
	_, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	sameEmail := validSignup()
	sameEmail.Phone = "0899999999"
	_, err = svc.Signup(context.Background(), sameEmail)
	assert.ErrorIs(t, err, ErrDuplicateAccount)

	samePhone := validSignup()
	samePhone.Email = "other@example.com"
	_, err = svc.Signup(context.Background(), samePhone)
	assert.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestConcurrentSignupsOnlyOneWins(t *testing.T) {
	st := newFakeStore()
	svc := NewAccountService(st, bcrypt.MinCost)

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Signup(context.Background(), validSignup())
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateAccount)
	}
	assert.Equal(t, 1, wins)
	assert.Len(t, st.members, 1)
}

func TestSignupValidation(t *testing.T) {
	svc := NewAccountService(newFakeStore(), bcrypt.MinCost)
	cases := map[string]func(*SignupInput){
		"bad email":    func(in *SignupInput) { in.Email = "not-an-email" },
		"short phone":  func(in *SignupInput) { in.Phone = "12345" },
		"letters":      func(in *SignupInput) { in.Phone = "08123abcde" },
		"bad birthday": func(in *SignupInput) { in.Birthday = "10/12/1990" },
		"no name":      func(in *SignupInput) { in.FirstName = "  " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validSignup()
			mutate(&in)
			_, err := svc.Signup(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	st := newFakeStore()
	svc := NewAccountService(st, bcrypt.MinCost)
	_, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	m, err := svc.Login(context.Background(), " ADA@example.com", "analytical")
	require.NoError(t, err)
	assert.Equal(t, "Ada", m.FirstName)
	assert.Equal(t, "0812345678", m.Phone)

	_, wrongPassword := svc.Login(context.Background(), "ada@example.com", "difference-engine")
	_, unknownEmail := svc.Login(context.Background(), "charles@example.com", "analytical")
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestNewAccountServiceClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewAccountService(nil, 2).cost)
	assert.Equal(t, 12, NewAccountService(nil, 12).cost)
}
