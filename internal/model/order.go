package model

import "time"

// Order types accepted by the ordering endpoints.  Only delivery orders
// are admitted without locking the branch row.
const (
    OrderTypeDineIn   = "dine-in"
    OrderTypeTakeaway = "takeaway"
    OrderTypeDelivery = "delivery"
)

// OrderTypes lists every valid order type.
var OrderTypes = []string{OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery}

// Order is a direct purchase of an existing recipe.
type Order struct {
    ID        string    // memberorder.orderid
    MemberID  string    // memberorder.memberid
    BranchID  string    // memberorder.branchid
    RecipeID  string    // memberorder.recipeid
    Type      string    // memberorder.ordertype
    CreatedAt time.Time // memberorder.time
}

// CustomizedOrder is the header row of a member-composed drink.
// Concentration is the derived potency; it is written once, after all
// child rows have been inserted.
type CustomizedOrder struct {
    ID            string    // customized_order.customizedorderid
    MemberID      string    // customized_order.memberid
    BranchID      *string   // customized_order.branchid (nullable for delivery)
    Type          string    // customized_order.type
    Concentration int       // customized_order.concentration
    CreatedAt     time.Time // customized_order.time
}

// AddItem links an item and an amount to a customized order.  The
// (ItemID, CustomizedOrderID) pair is unique.
type AddItem struct {
    ItemID            string // add_item.itemid
    CustomizedOrderID string // add_item.customizedorderid
    Amount            int    // add_item.amount
}

// AddIngredient links an ingredient and an amount to a customized
// order.  The (IngredientID, CustomizedOrderID) pair is unique.
type AddIngredient struct {
    IngredientID      string // add_ingredient.ingredientid
    CustomizedOrderID string // add_ingredient.customizedorderid
    Amount            int    // add_ingredient.amount
}
