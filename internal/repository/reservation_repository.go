package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/beverage-reservation/internal/model"
)

// ReservationRepo provides access to the reserve table.  All timestamp
// fields are stored and returned in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// The reservation window is closed at both ends: a reservation exactly
// at from or exactly at to is counted.
const committedSeatsQuery = `SELECT COALESCE(SUM(people), 0) FROM reserve
                             WHERE branchid = ? AND time BETWEEN ? AND ?`

// CommittedSeatsTx sums the party sizes of reservations at branchID
// whose time falls in [from, to].  It runs inside the admission tx,
// after the branch row has been locked.
func (r *ReservationRepo) CommittedSeatsTx(ctx context.Context, tx *sql.Tx, branchID string, from, to time.Time) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, committedSeatsQuery, branchID, from.UTC(), to.UTC()).Scan(&n)
	return n, classify(err)
}

// CommittedSeatsByBranch returns the committed seat count of every
// branch with at least one reservation in [from, to].  Branches absent
// from the map have nothing committed.
func (r *ReservationRepo) CommittedSeatsByBranch(ctx context.Context, from, to time.Time) (map[string]int, error) {
	const q = `SELECT branchid, COALESCE(SUM(people), 0) FROM reserve
	           WHERE time BETWEEN ? AND ? GROUP BY branchid`
	rows, err := r.db.QueryContext(ctx, q, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

// CreateTx inserts a reservation within the scope of an existing
// transaction.  A uuid is assigned when res.ID is empty and CreatedAt
// defaults to the current time.  The caller must commit or rollback.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	res.ReservedAt = res.ReservedAt.UTC()
	const q = `INSERT INTO reserve (reserveid, branchid, memberid, people, time, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, res.ID, res.BranchID, res.MemberID, res.People, res.ReservedAt, res.CreatedAt)
	return classify(err)
}

// ListByMember returns the member's reservations, newest reservation
// time first.  An empty slice is returned when there are none.
func (r *ReservationRepo) ListByMember(ctx context.Context, memberID string) ([]model.Reservation, error) {
	const q = `SELECT reserveid, memberid, branchid, people, time, created_at
	           FROM reserve WHERE memberid = ?
	           ORDER BY time DESC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.MemberID, &res.BranchID, &res.People, &res.ReservedAt, &res.CreatedAt); err != nil {
			return nil, err
		}
		res.ReservedAt = res.ReservedAt.UTC()
		res.CreatedAt = res.CreatedAt.UTC()
		out = append(out, res)
	}
	return out, rows.Err()
}
