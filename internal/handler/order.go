package handler

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/beverage-reservation/internal/model"
    "github.com/iliyamo/beverage-reservation/internal/service"
)

type OrderService interface {
    PlaceOrder(ctx context.Context, in service.OrderInput) ([]model.Order, error)
    PlaceCustomizedOrder(ctx context.Context, in service.CustomizedOrderInput) (model.CustomizedOrder, error)
}

type OrderHandler struct {
    ErrorResponder
    Orders OrderService
}

func NewOrderHandler(orders OrderService, er ErrorResponder) *OrderHandler {
    if orders == nil {
        panic("nil order service passed to NewOrderHandler")
    }
    return &OrderHandler{ErrorResponder: er, Orders: orders}
}

type addItemReq struct {
    ItemID string `json:"itemId"`
    Amount int    `json:"amount"`
}

type addIngredientReq struct {
    IngredientID string `json:"ingredientId"`
    Amount       int    `json:"amount"`
}

// orderReq accepts both the recipe order and the customized order
// shapes.  deliveryType is an older spelling of type.
type orderReq struct {
    Type         string `json:"type"`
    DeliveryType string `json:"deliveryType"`
    MemberID     string `json:"memberId"`
    BranchID     string `json:"branchId"`
    RecipeID     string `json:"recipeId"`
    Items        []struct {
        RecipeID string `json:"recipeId"`
    } `json:"items"`
    AddItemList       []addItemReq       `json:"addItemList"`
    AddIngredientList []addIngredientReq `json:"addIngredientList"`
}

func (r orderReq) orderType() string {
    t := strings.TrimSpace(r.Type)
    if t == "" {
        t = strings.TrimSpace(r.DeliveryType)
    }
    return strings.ToLower(t)
}

func (r orderReq) customized() bool {
    return r.AddItemList != nil || r.AddIngredientList != nil
}

func (r orderReq) customizedInput() service.CustomizedOrderInput {
    in := service.CustomizedOrderInput{MemberID: r.MemberID, BranchID: r.BranchID, Type: r.orderType()}
    for _, it := range r.AddItemList {
        in.Items = append(in.Items, service.Line{ID: it.ItemID, Amount: it.Amount})
    }
    for _, ing := range r.AddIngredientList {
        in.Ingredients = append(in.Ingredients, service.Line{ID: ing.IngredientID, Amount: ing.Amount})
    }
    return in
}

func (r orderReq) recipeIDs() []string {
    var ids []string
    if r.RecipeID != "" {
        ids = append(ids, r.RecipeID)
    }
    for _, it := range r.Items {
        ids = append(ids, it.RecipeID)
    }
    return ids
}

// PostOrder handles POST /api/postOrder.  A body carrying addItemList or
// addIngredientList is treated as a customized order.
func (h *OrderHandler) PostOrder(c echo.Context) error {
    var req orderReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    if req.customized() {
        return h.placeCustomized(c, req)
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()
    orders, err := h.Orders.PlaceOrder(ctx, service.OrderInput{
        MemberID: req.MemberID, BranchID: req.BranchID, Type: req.orderType(), RecipeIDs: req.recipeIDs(),
    })
    if err != nil {
        return h.Fail(c, err)
    }
    ids := make([]string, len(orders))
    for i, o := range orders {
        ids[i] = o.ID
    }
    return c.JSON(http.StatusOK, echo.Map{"msg": "post order ok", "ids": ids})
}

// PostCustomizedOrder handles POST /api/postCustomizedOrder.
func (h *OrderHandler) PostCustomizedOrder(c echo.Context) error {
    var req orderReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    return h.placeCustomized(c, req)
}

func (h *OrderHandler) placeCustomized(c echo.Context, req orderReq) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()
    co, err := h.Orders.PlaceCustomizedOrder(ctx, req.customizedInput())
    if err != nil {
        return h.Fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "msg":           "post customized order ok",
        "id":            co.ID,
        "concentration": co.Concentration,
    })
}
