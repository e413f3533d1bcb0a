package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/beverage-reservation/internal/model"
)

var evening = time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC)

func newReservationFixture(seats int) (*fakeStore, *recordingPublisher, *ReservationService) {
	st := newFakeStore()
	st.addMember("m1")
	st.addMember("m2")
	st.addBranch("b1", seats)
	pub := &recordingPublisher{}
	return st, pub, NewReservationService(st, pub, DefaultWindow)
}

func TestReserveFillsBranchThenRejects(t *testing.T) {
	st, _, svc := newReservationFixture(40)
	st.reservations = append(st.reservations, model.Reservation{ID: "old", BranchID: "b1", MemberID: "m2", People: 38, ReservedAt: evening.Add(-30 * time.Minute)})
	ctx := context.Background()

	res, err := svc.Reserve(ctx, ReserveInput{MemberID: "m1", BranchID: "b1", At: evening, People: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 40, st.committedSeats("b1", evening.Add(-DefaultWindow), evening, nil))

	_, err = svc.Reserve(ctx, ReserveInput{MemberID: "m1", BranchID: "b1", At: evening, People: 1})
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Len(t, st.reservations, 2)
}

func TestReserveWindowIsClosedAtBothEnds(t *testing.T) {
	cases := []struct {
		name    string
		offset  time.Duration
		counted bool
	}{
		{"same instant", 0, true},
		{"window start", -DefaultWindow, true},
		{"just before window", -DefaultWindow - time.Minute, false},
		{"after requested time", time.Minute, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, _, svc := newReservationFixture(10)
			st.reservations = append(st.reservations, model.Reservation{ID: "x", BranchID: "b1", MemberID: "m2", People: 10, ReservedAt: evening.Add(tc.offset)})

			_, err := svc.Reserve(context.Background(), ReserveInput{MemberID: "m1", BranchID: "b1", At: evening, People: 1})
			if tc.counted {
				assert.ErrorIs(t, err, ErrCapacityExceeded)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReserveUnknownParties(t *testing.T) {
	_, _, svc := newReservationFixture(10)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, ReserveInput{MemberID: "ghost", BranchID: "b1", At: evening, People: 1})
	assert.ErrorIs(t, err, ErrMemberNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Reserve(ctx, ReserveInput{MemberID: "m1", BranchID: "nowhere", At: evening, People: 1})
	assert.ErrorIs(t, err, ErrBranchNotFound)
}

func TestReserveRejectsInvalidInput(t *testing.T) {
	st, _, svc := newReservationFixture(10)
	_, err := svc.Reserve(context.Background(), ReserveInput{MemberID: "m1", BranchID: "b1", At: evening, People: 0})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "people")

	_, err = svc.Reserve(context.Background(), ReserveInput{MemberID: "m1", BranchID: "b1", People: 2})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, st.reservations)
}

func TestReserveFailsFastWhenBranchLocked(t *testing.T) {
	st, pub, svc := newReservationFixture(10)
	release := st.holdLock("branch:b1")
	defer release()

	_, err := svc.Reserve(context.Background(), ReserveInput{MemberID: "m1", BranchID: "b1", At: evening, People: 1})
	assert.ErrorIs(t, err, ErrContention)
	assert.Empty(t, st.reservations)
	assert.Empty(t, pub.reservations)

	release()
	_, err = svc.Reserve(context.Background(), ReserveInput{MemberID: "m1", BranchID: "b1", At: evening, People: 1})
	assert.NoError(t, err)
}

func TestConcurrentReservationsNeverOverbook(t *testing.T) {
	const seats, callers = 5, 24
	st := newFakeStore()
	st.addBranch("b1", seats)
	for i := 0; i < callers; i++ {
		st.addMember(memberID(i))
	}
	st.afterLock = func() { time.Sleep(200 * time.Microsecond) }
	svc := NewReservationService(st, nil, DefaultWindow)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), ReserveInput{MemberID: memberID(i), BranchID: "b1", At: evening, People: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrContention), errors.Is(err, ErrCapacityExceeded):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.GreaterOrEqual(t, ok, 1)
	assert.LessOrEqual(t, ok, seats)
	assert.Equal(t, ok, st.committedSeats("b1", evening.Add(-DefaultWindow), evening, nil))
}

func memberID(i int) string { return "m" + string(rune('A'+i)) }

func TestReservePublishesAfterCommit(t *testing.T) {
	_, pub, svc := newReservationFixture(10)
	pub.err = errors.New("broker down")

	res, err := svc.Reserve(context.Background(), ReserveInput{MemberID: "m1", BranchID: "b1", At: evening, People: 3})
	require.NoError(t, err, "publish failures must not fail the reservation")
	require.Len(t, pub.reservations, 1)
	ev := pub.reservations[0]
	assert.Equal(t, res.ID, ev.ReservationID)
	assert.Equal(t, "Branch b1", ev.BranchName)
	assert.Equal(t, 3, ev.People)
	assert.Equal(t, "2024-05-01T19:00:00Z", ev.ReservedAt)
}

func TestAvailabilityListsBranchesWithRoom(t *testing.T) {
	st, _, svc := newReservationFixture(10)
	st.addBranch("b2", 4)
	st.addBranch("b3", 2)
	st.reservations = append(st.reservations,
		model.Reservation{BranchID: "b1", People: 7, ReservedAt: evening.Add(-time.Hour)},
		model.Reservation{BranchID: "b2", People: 4, ReservedAt: evening.Add(-3 * time.Hour)},
	)

	got, err := svc.Availability(context.Background(), evening, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b1", got[0].ID)
	assert.Equal(t, 3, got[0].AvailableSeats)
	assert.Equal(t, 7, got[0].Committed)
	assert.Equal(t, "b2", got[1].ID)
	assert.Equal(t, 4, got[1].AvailableSeats)

	_, err = svc.Availability(context.Background(), evening, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAvailabilityKeepsListingPosition(t *testing.T) {
	st, _, svc := newReservationFixture(10)
	st.addBranch("b2", 4)
	st.reservations = append(st.reservations,
		model.Reservation{BranchID: "b1", People: 10, ReservedAt: evening})

	got, err := svc.Availability(context.Background(), evening, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b2", got[0].ID)
	assert.Equal(t, 1, got[0].Position)
}

func TestListByMember(t *testing.T) {
	_, _, svc := newReservationFixture(10)
	ctx := context.Background()
	for _, at := range []time.Time{evening, evening.Add(24 * time.Hour)} {
		_, err := svc.Reserve(ctx, ReserveInput{MemberID: "m1", BranchID: "b1", At: at, People: 1})
		require.NoError(t, err)
	}

	got, err := svc.ListByMember(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].ReservedAt.After(got[1].ReservedAt))

	_, err = svc.ListByMember(ctx, "ghost")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}
