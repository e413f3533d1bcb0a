package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/beverage-reservation/internal/model"
)

// MemberRepo provides access to the memberaccount table.
type MemberRepo struct{ db *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{db: db} }

const memberColumns = `memberid, fname, lname, gender, birthday, email, memberphone, memberpassword, memberstartdate`

func scanMember(row interface{ Scan(...any) error }) (model.Member, error) {
	var m model.Member
	err := row.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Gender, &m.Birthday,
		&m.Email, &m.Phone, &m.PasswordHash, &m.StartDate)
	return m, err
}

// Create inserts a member.  The ID is generated when empty and the
// email is stored lower-cased.  A unique key collision on email or
// phone is reported as ErrDuplicateAccount.
func (r *MemberRepo) Create(ctx context.Context, m *model.Member) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	const q = `INSERT INTO memberaccount (memberid, fname, lname, gender, birthday, email, memberphone, memberpassword)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, m.ID, m.FirstName, m.LastName, m.Gender,
		m.Birthday.Format("2006-01-02"), m.Email, m.Phone, m.PasswordHash)
	return classify(err)
}

// ExistsByEmailOrPhone reports whether any member already uses the
// email or the phone number.
func (r *MemberRepo) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	const q = `SELECT 1 FROM memberaccount WHERE email = ? OR memberphone = ? LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, strings.ToLower(strings.TrimSpace(email)), phone).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByEmail fetches a member by normalized email.
func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (model.Member, error) {
	q := `SELECT ` + memberColumns + ` FROM memberaccount WHERE email = ? LIMIT 1`
	m, err := scanMember(r.db.QueryRowContext(ctx, q, strings.ToLower(strings.TrimSpace(email))))
	return m, notFound(err, ErrMemberNotFound)
}

// GetByID fetches a member by id.
func (r *MemberRepo) GetByID(ctx context.Context, id string) (model.Member, error) {
	q := `SELECT ` + memberColumns + ` FROM memberaccount WHERE memberid = ? LIMIT 1`
	m, err := scanMember(r.db.QueryRowContext(ctx, q, id))
	return m, notFound(err, ErrMemberNotFound)
}

// LockTx takes an exclusive row lock on the member without waiting.
// It returns ErrLockUnavailable when another transaction holds the lock
// and ErrMemberNotFound when the row no longer exists.
func (r *MemberRepo) LockTx(ctx context.Context, tx *sql.Tx, id string) error {
	const q = `SELECT memberid FROM memberaccount WHERE memberid = ? FOR UPDATE SKIP LOCKED`
	var got string
	err := tx.QueryRowContext(ctx, q, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return lockMiss(ctx, tx, `SELECT 1 FROM memberaccount WHERE memberid = ?`, id, ErrMemberNotFound)
	}
	return classify(err)
}

// lockMiss explains an empty SKIP LOCKED result.  A plain (non-locking)
// read still sees a row that is merely locked by someone else.
func lockMiss(ctx context.Context, tx *sql.Tx, existsQuery, id string, missing error) error {
	var one int
	err := tx.QueryRowContext(ctx, existsQuery, id).Scan(&one)
	switch {
	case err == nil:
		return ErrLockUnavailable
	case errors.Is(err, sql.ErrNoRows):
		return missing
	default:
		return classify(err)
	}
}
