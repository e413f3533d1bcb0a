package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/beverage-reservation/internal/model"
)

// OrderRepo writes recipe orders and customized orders together with
// their add_item / add_ingredient children.  Every write happens inside
// a caller-owned transaction.
type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

func stamp(id *string, at *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if at.IsZero() {
		*at = time.Now().UTC()
	}
	*at = at.UTC().Truncate(time.Second)
}

// CreateTx inserts one memberorder row.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	stamp(&o.ID, &o.CreatedAt)
	const q = `INSERT INTO memberorder (orderid, memberid, recipeid, branchid, time, ordertype) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, o.ID, o.MemberID, o.RecipeID, o.BranchID, o.CreatedAt, o.Type)
	return classify(err)
}

// CreateCustomizedTx inserts the customized order header.  The
// concentration written here is a placeholder until SetConcentrationTx
// stores the folded value.
func (r *OrderRepo) CreateCustomizedTx(ctx context.Context, tx *sql.Tx, co *model.CustomizedOrder) error {
	stamp(&co.ID, &co.CreatedAt)
	var branch sql.NullString
	if co.BranchID != nil {
		branch = sql.NullString{String: *co.BranchID, Valid: true}
	}
	const q = `INSERT INTO customized_order (customizedorderid, concentration, time, type, memberid, branchid) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, co.ID, co.Concentration, co.CreatedAt, co.Type, co.MemberID, branch)
	return classify(err)
}

// UpsertAddItemTx writes an add_item row, overwriting the amount when
// the item is already part of the order.
func (r *OrderRepo) UpsertAddItemTx(ctx context.Context, tx *sql.Tx, ai model.AddItem) error {
	const q = `INSERT INTO add_item (itemid, customizedorderid, amount) VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE amount = VALUES(amount)`
	_, err := tx.ExecContext(ctx, q, ai.ItemID, ai.CustomizedOrderID, ai.Amount)
	return err
}

// UpsertAddIngredientTx writes an add_ingredient row with the same
// overwrite semantics as UpsertAddItemTx.
func (r *OrderRepo) UpsertAddIngredientTx(ctx context.Context, tx *sql.Tx, ai model.AddIngredient) error {
	const q = `INSERT INTO add_ingredient (ingredientid, customizedorderid, amount) VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE amount = VALUES(amount)`
	_, err := tx.ExecContext(ctx, q, ai.IngredientID, ai.CustomizedOrderID, ai.Amount)
	return err
}

// SetConcentrationTx stores the derived potency on exactly one
// customized order.
func (r *OrderRepo) SetConcentrationTx(ctx context.Context, tx *sql.Tx, id string, concentration int) error {
	const q = `UPDATE customized_order SET concentration = ? WHERE customizedorderid = ?`
	_, err := tx.ExecContext(ctx, q, concentration, id)
	return err
}
