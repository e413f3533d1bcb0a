package handler

import (
    "context"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/beverage-reservation/internal/model"
)

type CatalogService interface {
    ListBranches(ctx context.Context) ([]model.Branch, error)
    ListRecipes(ctx context.Context) ([]model.Recipe, error)
    ListTypes(ctx context.Context) ([]model.DrinkType, error)
    ListItemsByType(ctx context.Context, typeID string) ([]model.Item, error)
}

// CatalogHandler serves the read-only catalog.  Responses are plain
// JSON arrays so the cache middleware can replay them verbatim.
type CatalogHandler struct {
    ErrorResponder
    Catalog CatalogService
}

func NewCatalogHandler(catalog CatalogService, er ErrorResponder) *CatalogHandler {
    if catalog == nil {
        panic("nil catalog service passed to NewCatalogHandler")
    }
    return &CatalogHandler{ErrorResponder: er, Catalog: catalog}
}

type branchJSON struct {
    ID        string `json:"id"`
    Name      string `json:"name"`
    Phone     string `json:"phone"`
    Address   string `json:"address"`
    Seats     int    `json:"seats"`
    ImageName string `json:"imageName"`
}

type recipeJSON struct {
    ID        string `json:"id"`
    DrinkName string `json:"drinkName"`
    Flavor    string `json:"flavor"`
    Mood      string `json:"mood"`
    Steps     string `json:"steps"`
    Intensity int    `json:"intensity"`
}

type namedJSON struct {
    ID   string `json:"id"`
    Name string `json:"name"`
}

func toBranchJSON(i int, b model.Branch) branchJSON {
    return branchJSON{
        ID: b.ID, Name: b.Name, Phone: b.Phone, Address: b.Address, Seats: b.Seats,
        ImageName: "branch" + strconv.Itoa(i+1),
    }
}

// GetAllBranches handles GET /api/getAllBranches.
func (h *CatalogHandler) GetAllBranches(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()
    branches, err := h.Catalog.ListBranches(ctx)
    if err != nil {
        return h.Fail(c, err)
    }
    out := make([]branchJSON, 0, len(branches))
    for i, b := range branches {
        out = append(out, toBranchJSON(i, b))
    }
    return c.JSON(http.StatusOK, out)
}

// GetAllRecipes handles GET /api/getAllRecipes.  A recipe without a
// recorded concentration reports intensity 0.
func (h *CatalogHandler) GetAllRecipes(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()
    recipes, err := h.Catalog.ListRecipes(ctx)
    if err != nil {
        return h.Fail(c, err)
    }
    out := make([]recipeJSON, 0, len(recipes))
    for _, r := range recipes {
        rj := recipeJSON{ID: r.ID, DrinkName: r.Name, Flavor: r.Flavor, Mood: r.Mood, Steps: r.Steps}
        if r.Concentration != nil {
            rj.Intensity = *r.Concentration
        }
        out = append(out, rj)
    }
    return c.JSON(http.StatusOK, out)
}

// GetAllTypes handles GET /api/getAllTypes.
func (h *CatalogHandler) GetAllTypes(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()
    types, err := h.Catalog.ListTypes(ctx)
    if err != nil {
        return h.Fail(c, err)
    }
    out := make([]namedJSON, 0, len(types))
    for _, t := range types {
        out = append(out, namedJSON{ID: t.ID, Name: t.Name})
    }
    return c.JSON(http.StatusOK, out)
}

// GetItems handles GET /api/getItems?typeId=.
func (h *CatalogHandler) GetItems(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()
    items, err := h.Catalog.ListItemsByType(ctx, c.QueryParam("typeId"))
    if err != nil {
        return h.Fail(c, err)
    }
    out := make([]namedJSON, 0, len(items))
    for _, it := range items {
        out = append(out, namedJSON{ID: it.ID, Name: it.Name})
    }
    return c.JSON(http.StatusOK, out)
}
