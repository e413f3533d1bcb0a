package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/beverage-reservation/internal/model"
)

// BranchRepo provides access to the branch table.
type BranchRepo struct {
	db *sql.DB
}

// NewBranchRepo constructs a BranchRepo given a DB handle.
func NewBranchRepo(db *sql.DB) *BranchRepo {
	return &BranchRepo{db: db}
}

const branchColumns = `branchid, branchname, branchaddress, branchphone, seatnumber`

func scanBranch(row interface{ Scan(...any) error }) (model.Branch, error) {
	var b model.Branch
	err := row.Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.Seats)
	return b, err
}

// ListAll returns every branch ordered by name.
func (r *BranchRepo) ListAll(ctx context.Context) ([]model.Branch, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+branchColumns+` FROM branch ORDER BY branchname, branchid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Branch, 0)
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetByID retrieves a branch by its ID.  ErrBranchNotFound is returned
// when no row matches.
func (r *BranchRepo) GetByID(ctx context.Context, id string) (model.Branch, error) {
	b, err := scanBranch(r.db.QueryRowContext(ctx, `SELECT `+branchColumns+` FROM branch WHERE branchid = ?`, id))
	return b, notFound(err, ErrBranchNotFound)
}

// LockTx locks the branch row for the rest of tx and returns it, so
// the seat count used for the capacity check is the locked value.  The
// lock is never waited for: a busy row yields ErrLockUnavailable.
func (r *BranchRepo) LockTx(ctx context.Context, tx *sql.Tx, id string) (model.Branch, error) {
	q := `SELECT ` + branchColumns + ` FROM branch WHERE branchid = ? FOR UPDATE SKIP LOCKED`
	b, err := scanBranch(tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Branch{}, lockMiss(ctx, tx, `SELECT 1 FROM branch WHERE branchid = ?`, id, ErrBranchNotFound)
	}
	if err != nil {
		return model.Branch{}, classify(err)
	}
	return b, nil
}
