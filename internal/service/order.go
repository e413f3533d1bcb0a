package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/iliyamo/beverage-reservation/internal/model"
	"github.com/iliyamo/beverage-reservation/internal/queue"
)

type OrderStore interface {
	GetMember(ctx context.Context, id string) (model.Member, error)
	GetBranch(ctx context.Context, id string) (model.Branch, error)
	InTx(ctx context.Context, fn func(Tx) error) error
}

type OrderService struct {
	store  OrderStore
	events EventPublisher
}

func NewOrderService(store OrderStore, events EventPublisher) *OrderService {
	return &OrderService{store: store, events: events}
}

var orderTypes = func() []interface{} {
	out := make([]interface{}, len(model.OrderTypes))
	for i, t := range model.OrderTypes {
		out[i] = t
	}
	return out
}()

// OrderInput requests one order row per recipe id.
type OrderInput struct {
	MemberID  string   `json:"memberId"`
	BranchID  string   `json:"branchId"`
	Type      string   `json:"type"`
	RecipeIDs []string `json:"items"`
}

func (in OrderInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.MemberID, validation.Required),
		validation.Field(&in.BranchID, validation.Required),
		validation.Field(&in.Type, validation.Required, validation.In(orderTypes...)),
		validation.Field(&in.RecipeIDs, validation.Required, validation.Each(validation.Required)),
	)
}

// Line is one (item or ingredient, amount) entry of a customized order.
type Line struct {
	ID     string `json:"id"`
	Amount int    `json:"amount"`
}

func (l Line) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.ID, validation.Required),
		validation.Field(&l.Amount, validation.Min(0), validation.Max(math.MaxInt32)),
	)
}

// CustomizedOrderInput describes a member-composed drink.  BranchID may
// be empty for delivery orders only.
type CustomizedOrderInput struct {
	MemberID    string `json:"memberId"`
	BranchID    string `json:"branchId"`
	Type        string `json:"type"`
	Items       []Line `json:"addItemList"`
	Ingredients []Line `json:"addIngredientList"`
}

func (in CustomizedOrderInput) Validate() error {
	branchRules := []validation.Rule{}
	if in.Type != model.OrderTypeDelivery {
		branchRules = append(branchRules, validation.Required)
	}
	return validation.ValidateStruct(&in,
		validation.Field(&in.MemberID, validation.Required),
		validation.Field(&in.BranchID, branchRules...),
		validation.Field(&in.Type, validation.Required, validation.In(orderTypes...)),
		validation.Field(&in.Items),
		validation.Field(&in.Ingredients),
	)
}

// errPotencyRange is returned when the folded potency does not fit the
// INT concentration column.
var errPotencyRange = errors.New("concentration: total is out of range")

// PotencyLine pairs an item's per-unit concentration with the amount
// ordered.
type PotencyLine struct {
	Concentration int
	Amount        int
}

// Potency folds the lines into the derived concentration of a
// customized order: the sum of concentration*amount.  No lines yield 0.
func Potency(lines []PotencyLine) int {
	total := 0
	for _, l := range lines {
		total += l.Concentration * l.Amount
	}
	return total
}

// collapse keeps one line per id, in first-seen order, carrying the
// last amount given for it.  This mirrors the overwrite semantics of
// the (id, order) key on the child tables.
func collapse(lines []Line) []Line {
	idx := make(map[string]int, len(lines))
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if i, ok := idx[l.ID]; ok {
			out[i].Amount = l.Amount
			continue
		}
		idx[l.ID] = len(out)
		out = append(out, l)
	}
	return out
}

// lockParties locks the member and, unless the order is delivered, the
// branch.
func lockParties(ctx context.Context, tx Tx, memberID, branchID, orderType string) error {
	if err := tx.LockMember(ctx, memberID); err != nil {
		return fmt.Errorf("tx.LockMember -> %w", err)
	}
	if orderType == model.OrderTypeDelivery || branchID == "" {
		return nil
	}
	if _, err := tx.LockBranch(ctx, branchID); err != nil {
		return fmt.Errorf("tx.LockBranch -> %w", err)
	}
	return nil
}

func (s *OrderService) checkParties(ctx context.Context, memberID, branchID string) error {
	if _, err := s.store.GetMember(ctx, memberID); err != nil {
		return storeErr("s.store.GetMember", err)
	}
	if branchID == "" {
		return nil
	}
	if _, err := s.store.GetBranch(ctx, branchID); err != nil {
		return storeErr("s.store.GetBranch", err)
	}
	return nil
}

// PlaceOrder writes one order per requested recipe in a single
// transaction.  Either every row commits or none does.
func (s *OrderService) PlaceOrder(ctx context.Context, in OrderInput) ([]model.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.checkParties(ctx, in.MemberID, in.BranchID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	orders := make([]model.Order, 0, len(in.RecipeIDs))
	err := s.store.InTx(ctx, func(tx Tx) error {
		orders = orders[:0]
		if err := lockParties(ctx, tx, in.MemberID, in.BranchID, in.Type); err != nil {
			return err
		}
		for _, rid := range in.RecipeIDs {
			if err := tx.RecipeExists(ctx, rid); err != nil {
				return fmt.Errorf("tx.RecipeExists(%s) -> %w", rid, err)
			}
			o := model.Order{MemberID: in.MemberID, BranchID: in.BranchID, RecipeID: rid, Type: in.Type, CreatedAt: now}
			if err := tx.InsertOrder(ctx, &o); err != nil {
				return fmt.Errorf("tx.InsertOrder -> %w", err)
			}
			orders = append(orders, o)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("place order", err)
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	s.publish(ctx, queue.OrderPlacedEvent{
		OrderIDs: ids, MemberID: in.MemberID, BranchID: in.BranchID, Type: in.Type,
		PlacedAt: now.Format(time.RFC3339),
	})
	return orders, nil
}

// PlaceCustomizedOrder writes the header, its add_item and
// add_ingredient children and finally the folded potency, strictly in
// that order inside one transaction.  Any failure leaves no trace.
func (s *OrderService) PlaceCustomizedOrder(ctx context.Context, in CustomizedOrderInput) (model.CustomizedOrder, error) {
	if err := in.Validate(); err != nil {
		return model.CustomizedOrder{}, invalid(err)
	}
	if err := s.checkParties(ctx, in.MemberID, in.BranchID); err != nil {
		return model.CustomizedOrder{}, err
	}
	items := collapse(in.Items)
	ingredients := collapse(in.Ingredients)

	var co model.CustomizedOrder
	err := s.store.InTx(ctx, func(tx Tx) error {
		co = model.CustomizedOrder{MemberID: in.MemberID, Type: in.Type}
		if in.BranchID != "" {
			b := in.BranchID
			co.BranchID = &b
		}
		if err := lockParties(ctx, tx, in.MemberID, in.BranchID, in.Type); err != nil {
			return err
		}
		if err := tx.InsertCustomizedOrder(ctx, &co); err != nil {
			return fmt.Errorf("tx.InsertCustomizedOrder -> %w", err)
		}

		lines := make([]PotencyLine, 0, len(items))
		running := 0
		for _, it := range items {
			conc, err := tx.ItemConcentration(ctx, it.ID)
			if err != nil {
				return fmt.Errorf("tx.ItemConcentration(%s) -> %w", it.ID, err)
			}
			// both factors fit in 32 bits, so the product cannot overflow int
			running += conc * it.Amount
			if running > math.MaxInt32 || running < math.MinInt32 {
				return invalid(errPotencyRange)
			}
			lines = append(lines, PotencyLine{Concentration: conc, Amount: it.Amount})
			if err := tx.UpsertAddItem(ctx, model.AddItem{ItemID: it.ID, CustomizedOrderID: co.ID, Amount: it.Amount}); err != nil {
				return fmt.Errorf("tx.UpsertAddItem -> %w", err)
			}
		}
		for _, ing := range ingredients {
			if err := tx.IngredientExists(ctx, ing.ID); err != nil {
				return fmt.Errorf("tx.IngredientExists(%s) -> %w", ing.ID, err)
			}
			if err := tx.UpsertAddIngredient(ctx, model.AddIngredient{IngredientID: ing.ID, CustomizedOrderID: co.ID, Amount: ing.Amount}); err != nil {
				return fmt.Errorf("tx.UpsertAddIngredient -> %w", err)
			}
		}

		co.Concentration = Potency(lines)
		if err := tx.SetConcentration(ctx, co.ID, co.Concentration); err != nil {
			return fmt.Errorf("tx.SetConcentration -> %w", err)
		}
		return nil
	})
	if err != nil {
		return model.CustomizedOrder{}, storeErr("place customized order", err)
	}

	s.publish(ctx, queue.OrderPlacedEvent{
		CustomizedOrderID: co.ID, MemberID: co.MemberID, BranchID: in.BranchID, Type: co.Type,
		Concentration: co.Concentration, PlacedAt: co.CreatedAt.Format(time.RFC3339),
	})
	return co, nil
}

func (s *OrderService) publish(ctx context.Context, ev queue.OrderPlacedEvent) {
	if s.events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.PublishOrderPlaced(pctx, ev); err != nil {
		zap.L().Warn("publish order.placed failed", zap.String("member_id", ev.MemberID), zap.Error(err))
	}
}
