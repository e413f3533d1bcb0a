// Package repository holds the MySQL data access layer.  Sentinel errors
// defined here let the service and handler layers distinguish missing
// rows, duplicate accounts and busy row locks without inspecting driver
// error codes themselves.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is wrapped by every entity-specific not-found error so
// callers can test for the whole family with errors.Is.
var ErrNotFound = errors.New("not found")

var (
	ErrMemberNotFound     = fmt.Errorf("member %w", ErrNotFound)
	ErrBranchNotFound     = fmt.Errorf("branch %w", ErrNotFound)
	ErrRecipeNotFound     = fmt.Errorf("recipe %w", ErrNotFound)
	ErrItemNotFound       = fmt.Errorf("item %w", ErrNotFound)
	ErrIngredientNotFound = fmt.Errorf("ingredient %w", ErrNotFound)
)

// ErrDuplicateAccount is returned when a signup collides with an
// existing email or phone number.
var ErrDuplicateAccount = errors.New("account already exists")

// ErrLockUnavailable is returned when a row lock is held by another
// transaction.  Lock acquisition never waits, so the caller sees this
// immediately and may retry later.
var ErrLockUnavailable = errors.New("row lock unavailable")

// MySQL server error numbers the repositories react to.
const (
	mysqlDuplicateEntry  = 1062
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
	mysqlNoWaitLocked    = 3572
)

// classify maps driver errors onto repository sentinels.  Errors it does
// not recognise are returned unchanged.
func classify(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case mysqlDuplicateEntry:
		return fmt.Errorf("%w: %s", ErrDuplicateAccount, me.Message)
	case mysqlLockWaitTimeout, mysqlDeadlock, mysqlNoWaitLocked:
		return fmt.Errorf("%w: %s", ErrLockUnavailable, me.Message)
	}
	return err
}

// notFound swaps sql.ErrNoRows for the given sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}
