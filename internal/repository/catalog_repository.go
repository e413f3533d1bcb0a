package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/beverage-reservation/internal/model"
)

// CatalogRepo reads the drink catalog: recipes, drink types, items and
// ingredients.  The catalog is managed out of band; nothing here writes.
type CatalogRepo struct {
	db *sql.DB
}

func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// ListRecipes returns every recipe ordered by name.
func (r *CatalogRepo) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	const q = `SELECT recipeid, recipename, steps, flavor, mood, concentration FROM recipe ORDER BY recipename, recipeid`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Recipe, 0)
	for rows.Next() {
		var rc model.Recipe
		var conc sql.NullInt64
		if err := rows.Scan(&rc.ID, &rc.Name, &rc.Steps, &rc.Flavor, &rc.Mood, &conc); err != nil {
			return nil, err
		}
		rc.Concentration = nullIntPtr(conc)
		out = append(out, rc)
	}
	return out, rows.Err()
}

// ListTypes returns every drink type ordered by name.
func (r *CatalogRepo) ListTypes(ctx context.Context) ([]model.DrinkType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT typeid, typename FROM drinktype ORDER BY typename, typeid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.DrinkType, 0)
	for rows.Next() {
		var t model.DrinkType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListItemsByType returns the items belonging to a drink type.  An
// unknown type simply yields an empty slice.
func (r *CatalogRepo) ListItemsByType(ctx context.Context, typeID string) ([]model.Item, error) {
	const q = `SELECT itemid, itemname, concentration, typeid, brandid FROM item WHERE typeid = ? ORDER BY itemname, itemid`
	rows, err := r.db.QueryContext(ctx, q, typeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Item, 0)
	for rows.Next() {
		var it model.Item
		var conc sql.NullInt64
		if err := rows.Scan(&it.ID, &it.Name, &conc, &it.TypeID, &it.BrandID); err != nil {
			return nil, err
		}
		it.Concentration = nullIntPtr(conc)
		out = append(out, it)
	}
	return out, rows.Err()
}

// RecipeExistsTx returns ErrRecipeNotFound unless the recipe exists.
func (r *CatalogRepo) RecipeExistsTx(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM recipe WHERE recipeid = ?`, id).Scan(&one)
	return notFound(err, ErrRecipeNotFound)
}

// ItemConcentrationTx returns the potency contribution per unit of the
// item.  A NULL concentration counts as zero.
func (r *CatalogRepo) ItemConcentrationTx(ctx context.Context, tx *sql.Tx, id string) (int, error) {
	var conc sql.NullInt64
	err := tx.QueryRowContext(ctx, `SELECT concentration FROM item WHERE itemid = ?`, id).Scan(&conc)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrItemNotFound
	}
	if err != nil {
		return 0, err
	}
	return int(conc.Int64), nil
}

// IngredientExistsTx returns ErrIngredientNotFound unless the
// ingredient exists.
func (r *CatalogRepo) IngredientExistsTx(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM ingredient WHERE ingredientid = ?`, id).Scan(&one)
	return notFound(err, ErrIngredientNotFound)
}
