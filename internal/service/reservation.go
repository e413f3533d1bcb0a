package service

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/iliyamo/beverage-reservation/internal/model"
	"github.com/iliyamo/beverage-reservation/internal/queue"
)

// DefaultWindow is how far back from a requested time existing
// reservations still occupy seats.
const DefaultWindow = 90 * time.Minute

const publishTimeout = 3 * time.Second

type ReservationStore interface {
	GetMember(ctx context.Context, id string) (model.Member, error)
	GetBranch(ctx context.Context, id string) (model.Branch, error)
	ListBranches(ctx context.Context) ([]model.Branch, error)
	CommittedSeatsByBranch(ctx context.Context, from, to time.Time) (map[string]int, error)
	ListReservations(ctx context.Context, memberID string) ([]model.Reservation, error)
	InTx(ctx context.Context, fn func(Tx) error) error
}

type ReservationService struct {
	store  ReservationStore
	events EventPublisher
	window time.Duration
}

func NewReservationService(store ReservationStore, events EventPublisher, window time.Duration) *ReservationService {
	if window <= 0 {
		window = DefaultWindow
	}
	return &ReservationService{store: store, events: events, window: window}
}

// Window returns the closed interval of reservation times that compete
// with a reservation at t.
func (s *ReservationService) Window(t time.Time) (from, to time.Time) {
	t = t.UTC()
	return t.Add(-s.window), t
}

type ReserveInput struct {
	MemberID string    `json:"memberId"`
	BranchID string    `json:"branchId"`
	At       time.Time `json:"time"`
	People   int       `json:"people"`
}

func (in ReserveInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.MemberID, validation.Required),
		validation.Field(&in.BranchID, validation.Required),
		validation.Field(&in.At, validation.Required),
		validation.Field(&in.People, validation.Required, validation.Min(1)),
	)
}

// Reserve admits a reservation or rejects it without writing anything.
// The branch and member rows are locked without waiting and the
// committed seat count is recomputed under the lock, so two concurrent
// requests can never jointly overbook a branch.
func (s *ReservationService) Reserve(ctx context.Context, in ReserveInput) (model.Reservation, error) {
	if err := in.Validate(); err != nil {
		return model.Reservation{}, invalid(err)
	}
	if _, err := s.store.GetMember(ctx, in.MemberID); err != nil {
		return model.Reservation{}, storeErr("s.store.GetMember", err)
	}
	if _, err := s.store.GetBranch(ctx, in.BranchID); err != nil {
		return model.Reservation{}, storeErr("s.store.GetBranch", err)
	}

	from, to := s.Window(in.At)
	res := model.Reservation{MemberID: in.MemberID, BranchID: in.BranchID, People: in.People, ReservedAt: to}
	var branch model.Branch
	err := s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.LockMember(ctx, in.MemberID); err != nil {
			return fmt.Errorf("tx.LockMember -> %w", err)
		}
		var err error
		if branch, err = tx.LockBranch(ctx, in.BranchID); err != nil {
			return fmt.Errorf("tx.LockBranch -> %w", err)
		}
		committed, err := tx.CommittedSeats(ctx, in.BranchID, from, to)
		if err != nil {
			return fmt.Errorf("tx.CommittedSeats -> %w", err)
		}
		if committed+in.People > branch.Seats {
			return ErrCapacityExceeded
		}
		return tx.InsertReservation(ctx, &res)
	})
	if err != nil {
		return model.Reservation{}, storeErr("reserve", err)
	}

	s.publish(ctx, queue.ReservationConfirmedEvent{
		ReservationID: res.ID,
		MemberID:      res.MemberID,
		BranchID:      res.BranchID,
		BranchName:    branch.Name,
		People:        res.People,
		ReservedAt:    res.ReservedAt.Format(time.RFC3339),
		ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
	})
	return res, nil
}

func (s *ReservationService) publish(ctx context.Context, ev queue.ReservationConfirmedEvent) {
	if s.events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.PublishReservationConfirmed(pctx, ev); err != nil {
		zap.L().Warn("publish reservation.confirmed failed", zap.String("reservation_id", ev.ReservationID), zap.Error(err))
	}
}

// Availability lists the branches that can still seat people at t,
// each with its remaining seat count.  The figures are advisory: they
// are read outside any transaction and Reserve checks again under lock.
func (s *ReservationService) Availability(ctx context.Context, at time.Time, people int) ([]model.BranchAvailability, error) {
	if err := validation.Validate(people, validation.Required, validation.Min(1)); err != nil {
		return nil, invalid(fmt.Errorf("people: %w", err))
	}
	branches, err := s.store.ListBranches(ctx)
	if err != nil {
		return nil, storeErr("s.store.ListBranches", err)
	}
	from, to := s.Window(at)
	committed, err := s.store.CommittedSeatsByBranch(ctx, from, to)
	if err != nil {
		return nil, storeErr("s.store.CommittedSeatsByBranch", err)
	}
	out := make([]model.BranchAvailability, 0, len(branches))
	for i, b := range branches {
		free := max(b.Seats-committed[b.ID], 0)
		if free < people {
			continue
		}
		out = append(out, model.BranchAvailability{Branch: b, Position: i, Committed: committed[b.ID], AvailableSeats: free})
	}
	return out, nil
}

// ListByMember returns the member's reservations, newest first.
func (s *ReservationService) ListByMember(ctx context.Context, memberID string) ([]model.Reservation, error) {
	if err := validation.Validate(memberID, validation.Required); err != nil {
		return nil, invalid(fmt.Errorf("memberId: %w", err))
	}
	if _, err := s.store.GetMember(ctx, memberID); err != nil {
		return nil, storeErr("s.store.GetMember", err)
	}
	out, err := s.store.ListReservations(ctx, memberID)
	if err != nil {
		return nil, storeErr("s.store.ListReservations", err)
	}
	return out, nil
}
