// Package service holds the admission logic for reservations and orders
// together with account and catalog use cases.  It depends on storage
// only through the interfaces declared next to each service.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/beverage-reservation/internal/repository"
)

var (
	ErrNotFound           = repository.ErrNotFound
	ErrMemberNotFound     = repository.ErrMemberNotFound
	ErrBranchNotFound     = repository.ErrBranchNotFound
	ErrRecipeNotFound     = repository.ErrRecipeNotFound
	ErrItemNotFound       = repository.ErrItemNotFound
	ErrIngredientNotFound = repository.ErrIngredientNotFound
	ErrDuplicateAccount   = repository.ErrDuplicateAccount
)

var (
	ErrValidation         = errors.New("invalid request")
	ErrContention         = errors.New("resource is busy, retry later")
	ErrCapacityExceeded   = errors.New("branch has no capacity for this party at that time")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPersistence        = errors.New("persistence failure")
)

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// storeErr classifies an error coming back from the store.  Domain
// errors pass through; a busy row lock becomes ErrContention; anything
// else is a persistence failure.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrLockUnavailable):
		return fmt.Errorf("%s -> %w", op, ErrContention)
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrDuplicateAccount),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrValidation),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s -> %w", op, err)
	default:
		return fmt.Errorf("%s -> %w: %w", op, ErrPersistence, err)
	}
}
