package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/beverage-reservation/internal/model"
	"github.com/iliyamo/beverage-reservation/internal/queue"
	"github.com/iliyamo/beverage-reservation/internal/repository"
)

// fakeStore is an in-memory store.  Row locks follow SKIP LOCKED
// semantics: a lock held by another transaction fails immediately with
// repository.ErrLockUnavailable.  Writes made inside InTx become visible
// only when fn returns nil.
type fakeStore struct {
	mu sync.Mutex

	members      map[string]model.Member
	branches     map[string]model.Branch
	recipes      map[string]bool
	items        map[string]*int
	ingredients  map[string]bool
	reservations []model.Reservation
	orders       []model.Order
	customized   map[string]model.CustomizedOrder
	addItems     map[[2]string]int
	addIngr      map[[2]string]int

	locks  map[string]int
	nextTx int
	seq    int

	// afterLock runs after each successful lock, outside the store mutex.
	afterLock func()
	failSetConcentration error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		members:     map[string]model.Member{},
		branches:    map[string]model.Branch{},
		recipes:     map[string]bool{},
		items:       map[string]*int{},
		ingredients: map[string]bool{},
		customized:  map[string]model.CustomizedOrder{},
		addItems:    map[[2]string]int{},
		addIngr:     map[[2]string]int{},
		locks:       map[string]int{},
	}
}

func intp(v int) *int { return &v }

func (s *fakeStore) addMember(id string) {
	s.members[id] = model.Member{ID: id, Email: id + "@example.com", Phone: "0000000000"}
}

func (s *fakeStore) addBranch(id string, seats int) {
	s.branches[id] = model.Branch{ID: id, Name: "Branch " + id, Seats: seats}
}

func (s *fakeStore) id(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

// holdLock simulates another transaction holding key until release is called.
func (s *fakeStore) holdLock(key string) (release func()) {
	s.mu.Lock()
	s.nextTx++
	owner := s.nextTx
	s.locks[key] = owner
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.locks[key] == owner {
			delete(s.locks, key)
		}
	}
}

func (s *fakeStore) committedSeats(branchID string, from, to time.Time, extra []model.Reservation) int {
	n := 0
	for _, list := range [][]model.Reservation{s.reservations, extra} {
		for _, r := range list {
			if r.BranchID == branchID && !r.ReservedAt.Before(from) && !r.ReservedAt.After(to) {
				n += r.People
			}
		}
	}
	return n
}

// Read side.

func (s *fakeStore) GetMember(_ context.Context, id string) (model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return model.Member{}, repository.ErrMemberNotFound
	}
	return m, nil
}

func (s *fakeStore) GetMemberByEmail(_ context.Context, email string) (model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.Email == email {
			return m, nil
		}
	}
	return model.Member{}, repository.ErrMemberNotFound
}

func (s *fakeStore) MemberExists(_ context.Context, email, phone string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.Email == email || m.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

// CreateMember enforces the unique email and phone keys.
func (s *fakeStore) CreateMember(_ context.Context, m *model.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.members {
		if o.Email == m.Email || o.Phone == m.Phone {
			return repository.ErrDuplicateAccount
		}
	}
	m.ID = s.id("m")
	s.members[m.ID] = *m
	return nil
}

func (s *fakeStore) GetBranch(_ context.Context, id string) (model.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.branches[id]
	if !ok {
		return model.Branch{}, repository.ErrBranchNotFound
	}
	return b, nil
}

func (s *fakeStore) ListBranches(context.Context) ([]model.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Branch, 0, len(s.branches))
	for _, b := range s.branches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) CommittedSeatsByBranch(_ context.Context, from, to time.Time) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int{}
	for id := range s.branches {
		if n := s.committedSeats(id, from, to, nil); n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

func (s *fakeStore) ListReservations(_ context.Context, memberID string) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Reservation{}
	for _, r := range s.reservations {
		if r.MemberID == memberID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReservedAt.After(out[j].ReservedAt) })
	return out, nil
}

func (s *fakeStore) ListRecipes(context.Context) ([]model.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Recipe{}
	for id := range s.recipes {
		out = append(out, model.Recipe{ID: id, Name: id})
	}
	return out, nil
}

func (s *fakeStore) ListTypes(context.Context) ([]model.DrinkType, error) {
	return []model.DrinkType{{ID: "t1", Name: "Spirits"}}, nil
}

func (s *fakeStore) ListItemsByType(_ context.Context, typeID string) ([]model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Item{}
	for id, c := range s.items {
		out = append(out, model.Item{ID: id, Name: id, Concentration: c, TypeID: typeID})
	}
	return out, nil
}

// Transactions.

func (s *fakeStore) InTx(ctx context.Context, fn func(Tx) error) error {
	s.mu.Lock()
	s.nextTx++
	tx := &fakeTx{s: s, id: s.nextTx, concentration: map[string]int{}}
	s.mu.Unlock()

	err := fn(tx)

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, owner := range s.locks {
		if owner == tx.id {
			delete(s.locks, k)
		}
	}
	if err != nil {
		return err
	}
	s.reservations = append(s.reservations, tx.reservations...)
	s.orders = append(s.orders, tx.orders...)
	for _, co := range tx.customized {
		if c, ok := tx.concentration[co.ID]; ok {
			co.Concentration = c
		}
		s.customized[co.ID] = co
	}
	for k, v := range tx.addItems {
		s.addItems[k] = v
	}
	for k, v := range tx.addIngr {
		s.addIngr[k] = v
	}
	return nil
}

type fakeTx struct {
	s  *fakeStore
	id int

	reservations  []model.Reservation
	orders        []model.Order
	customized    []model.CustomizedOrder
	concentration map[string]int
	addItems      map[[2]string]int
	addIngr       map[[2]string]int
}

func (t *fakeTx) lock(key string, exists bool, missing error) error {
	t.s.mu.Lock()
	if !exists {
		t.s.mu.Unlock()
		return missing
	}
	if owner, held := t.s.locks[key]; held && owner != t.id {
		t.s.mu.Unlock()
		return repository.ErrLockUnavailable
	}
	t.s.locks[key] = t.id
	hook := t.s.afterLock
	t.s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (t *fakeTx) LockMember(_ context.Context, id string) error {
	t.s.mu.Lock()
	_, ok := t.s.members[id]
	t.s.mu.Unlock()
	return t.lock("member:"+id, ok, repository.ErrMemberNotFound)
}

func (t *fakeTx) LockBranch(_ context.Context, id string) (model.Branch, error) {
	t.s.mu.Lock()
	b, ok := t.s.branches[id]
	t.s.mu.Unlock()
	if err := t.lock("branch:"+id, ok, repository.ErrBranchNotFound); err != nil {
		return model.Branch{}, err
	}
	return b, nil
}

func (t *fakeTx) CommittedSeats(_ context.Context, branchID string, from, to time.Time) (int, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.s.committedSeats(branchID, from, to, t.reservations), nil
}

func (t *fakeTx) InsertReservation(_ context.Context, r *model.Reservation) error {
	t.s.mu.Lock()
	r.ID = t.s.id("r")
	t.s.mu.Unlock()
	t.reservations = append(t.reservations, *r)
	return nil
}

func (t *fakeTx) RecipeExists(_ context.Context, id string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if !t.s.recipes[id] {
		return repository.ErrRecipeNotFound
	}
	return nil
}

func (t *fakeTx) InsertOrder(_ context.Context, o *model.Order) error {
	t.s.mu.Lock()
	o.ID = t.s.id("o")
	t.s.mu.Unlock()
	t.orders = append(t.orders, *o)
	return nil
}

func (t *fakeTx) ItemConcentration(_ context.Context, id string) (int, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	c, ok := t.s.items[id]
	if !ok {
		return 0, repository.ErrItemNotFound
	}
	if c == nil {
		return 0, nil
	}
	return *c, nil
}

func (t *fakeTx) IngredientExists(_ context.Context, id string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if !t.s.ingredients[id] {
		return repository.ErrIngredientNotFound
	}
	return nil
}

func (t *fakeTx) InsertCustomizedOrder(_ context.Context, co *model.CustomizedOrder) error {
	t.s.mu.Lock()
	co.ID = t.s.id("c")
	t.s.mu.Unlock()
	co.CreatedAt = time.Now().UTC()
	t.customized = append(t.customized, *co)
	return nil
}

func (t *fakeTx) UpsertAddItem(_ context.Context, ai model.AddItem) error {
	if t.addItems == nil {
		t.addItems = map[[2]string]int{}
	}
	t.addItems[[2]string{ai.ItemID, ai.CustomizedOrderID}] = ai.Amount
	return nil
}

func (t *fakeTx) UpsertAddIngredient(_ context.Context, ai model.AddIngredient) error {
	if t.addIngr == nil {
		t.addIngr = map[[2]string]int{}
	}
	t.addIngr[[2]string{ai.IngredientID, ai.CustomizedOrderID}] = ai.Amount
	return nil
}

func (t *fakeTx) SetConcentration(_ context.Context, id string, c int) error {
	if t.s.failSetConcentration != nil {
		return t.s.failSetConcentration
	}
	t.concentration[id] = c
	return nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu           sync.Mutex
	reservations []queue.ReservationConfirmedEvent
	orders       []queue.OrderPlacedEvent
	err          error
}

func (p *recordingPublisher) PublishReservationConfirmed(_ context.Context, ev queue.ReservationConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reservations = append(p.reservations, ev)
	return p.err
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, ev queue.OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, ev)
	return p.err
}
