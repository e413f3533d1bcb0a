package repository

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/beverage-reservation/internal/model"
)

// Tx is the set of operations available inside an admission
// transaction.  Locks taken through it are held until the enclosing
// InTx call returns.
type Tx interface {
	LockMember(ctx context.Context, memberID string) error
	LockBranch(ctx context.Context, branchID string) (model.Branch, error)
	CommittedSeats(ctx context.Context, branchID string, from, to time.Time) (int, error)
	InsertReservation(ctx context.Context, res *model.Reservation) error

	RecipeExists(ctx context.Context, recipeID string) error
	InsertOrder(ctx context.Context, o *model.Order) error

	ItemConcentration(ctx context.Context, itemID string) (int, error)
	IngredientExists(ctx context.Context, ingredientID string) error
	InsertCustomizedOrder(ctx context.Context, co *model.CustomizedOrder) error
	UpsertAddItem(ctx context.Context, ai model.AddItem) error
	UpsertAddIngredient(ctx context.Context, ai model.AddIngredient) error
	SetConcentration(ctx context.Context, customizedOrderID string, concentration int) error
}

// Store bundles the per-table repositories behind one handle and runs
// transactional work against them.
type Store struct {
	db           *sql.DB
	Members      *MemberRepo
	Branches     *BranchRepo
	Catalog      *CatalogRepo
	Orders       *OrderRepo
	Reservations *ReservationRepo
}

// NewStore wires every repository to db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:           db,
		Members:      NewMemberRepo(db),
		Branches:     NewBranchRepo(db),
		Catalog:      NewCatalogRepo(db),
		Orders:       NewOrderRepo(db),
		Reservations: NewReservationRepo(db),
	}
}

// Ping checks database reachability.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// InTx runs fn inside a single transaction.  The transaction commits
// when fn returns nil and rolls back otherwise, releasing every lock fn
// acquired either way.
func (s *Store) InTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				zap.L().Warn("rollback failed", zap.Error(rbErr))
			}
		}
	}()
	if err := fn(&sqlTx{s: s, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify(err)
	}
	committed = true
	return nil
}

// Read-side accessors used by the service layer.

func (s *Store) GetMember(ctx context.Context, id string) (model.Member, error) {
	return s.Members.GetByID(ctx, id)
}

func (s *Store) GetMemberByEmail(ctx context.Context, email string) (model.Member, error) {
	return s.Members.GetByEmail(ctx, email)
}

func (s *Store) MemberExists(ctx context.Context, email, phone string) (bool, error) {
	return s.Members.ExistsByEmailOrPhone(ctx, email, phone)
}

func (s *Store) CreateMember(ctx context.Context, m *model.Member) error {
	return s.Members.Create(ctx, m)
}

func (s *Store) GetBranch(ctx context.Context, id string) (model.Branch, error) {
	return s.Branches.GetByID(ctx, id)
}

func (s *Store) ListBranches(ctx context.Context) ([]model.Branch, error) {
	return s.Branches.ListAll(ctx)
}

func (s *Store) CommittedSeatsByBranch(ctx context.Context, from, to time.Time) (map[string]int, error) {
	return s.Reservations.CommittedSeatsByBranch(ctx, from, to)
}

func (s *Store) ListReservations(ctx context.Context, memberID string) ([]model.Reservation, error) {
	return s.Reservations.ListByMember(ctx, memberID)
}

func (s *Store) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	return s.Catalog.ListRecipes(ctx)
}

func (s *Store) ListTypes(ctx context.Context) ([]model.DrinkType, error) {
	return s.Catalog.ListTypes(ctx)
}

func (s *Store) ListItemsByType(ctx context.Context, typeID string) ([]model.Item, error) {
	return s.Catalog.ListItemsByType(ctx, typeID)
}

// sqlTx adapts the repositories' *Tx methods to the Tx interface.
type sqlTx struct {
	s  *Store
	tx *sql.Tx
}

func (t *sqlTx) LockMember(ctx context.Context, id string) error {
	return t.s.Members.LockTx(ctx, t.tx, id)
}

func (t *sqlTx) LockBranch(ctx context.Context, id string) (model.Branch, error) {
	return t.s.Branches.LockTx(ctx, t.tx, id)
}

func (t *sqlTx) CommittedSeats(ctx context.Context, branchID string, from, to time.Time) (int, error) {
	return t.s.Reservations.CommittedSeatsTx(ctx, t.tx, branchID, from, to)
}

func (t *sqlTx) InsertReservation(ctx context.Context, res *model.Reservation) error {
	return t.s.Reservations.CreateTx(ctx, t.tx, res)
}

func (t *sqlTx) RecipeExists(ctx context.Context, id string) error {
	return t.s.Catalog.RecipeExistsTx(ctx, t.tx, id)
}

func (t *sqlTx) InsertOrder(ctx context.Context, o *model.Order) error {
	return t.s.Orders.CreateTx(ctx, t.tx, o)
}

func (t *sqlTx) ItemConcentration(ctx context.Context, id string) (int, error) {
	return t.s.Catalog.ItemConcentrationTx(ctx, t.tx, id)
}

func (t *sqlTx) IngredientExists(ctx context.Context, id string) error {
	return t.s.Catalog.IngredientExistsTx(ctx, t.tx, id)
}

func (t *sqlTx) InsertCustomizedOrder(ctx context.Context, co *model.CustomizedOrder) error {
	return t.s.Orders.CreateCustomizedTx(ctx, t.tx, co)
}

func (t *sqlTx) UpsertAddItem(ctx context.Context, ai model.AddItem) error {
	return t.s.Orders.UpsertAddItemTx(ctx, t.tx, ai)
}

func (t *sqlTx) UpsertAddIngredient(ctx context.Context, ai model.AddIngredient) error {
	return t.s.Orders.UpsertAddIngredientTx(ctx, t.tx, ai)
}

func (t *sqlTx) SetConcentration(ctx context.Context, id string, concentration int) error {
	return t.s.Orders.SetConcentrationTx(ctx, t.tx, id, concentration)
}
