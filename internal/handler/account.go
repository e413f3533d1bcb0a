package handler

import (
    "context"
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/beverage-reservation/internal/model"
    "github.com/iliyamo/beverage-reservation/internal/service"
)

type AccountService interface {
    Signup(ctx context.Context, in service.SignupInput) (model.Member, error)
    Login(ctx context.Context, email, password string) (model.Member, error)
}

// AccountHandler serves signup and login.  Login is a stateless
// credential check; no session or token is issued.
type AccountHandler struct {
    ErrorResponder
    Accounts AccountService
}

func NewAccountHandler(accounts AccountService, er ErrorResponder) *AccountHandler {
    if accounts == nil {
        panic("nil account service passed to NewAccountHandler")
    }
    return &AccountHandler{ErrorResponder: er, Accounts: accounts}
}

type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type loginResp struct {
    Success bool   `json:"success"`
    ID      string `json:"id,omitempty"`
    FName   string `json:"fname,omitempty"`
    LName   string `json:"lname,omitempty"`
    Gender  string `json:"gender,omitempty"`
    Phone   string `json:"phone,omitempty"`
}

// Signup handles POST /api/signup.
func (h *AccountHandler) Signup(c echo.Context) error {
    var req service.SignupInput
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()
    m, err := h.Accounts.Signup(ctx, req)
    if err != nil {
        return h.Fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"msg": "signup ok", "id": m.ID})
}

// Login handles POST /api/login.  Wrong password and unknown email
// produce the same body.
func (h *AccountHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, loginResp{Success: false})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()
    m, err := h.Accounts.Login(ctx, req.Email, req.Password)
    if errors.Is(err, service.ErrInvalidCredentials) {
        return c.JSON(http.StatusBadRequest, loginResp{Success: false})
    }
    if err != nil {
        return h.Fail(c, err)
    }
    return c.JSON(http.StatusOK, loginResp{
        Success: true, ID: m.ID, FName: m.FirstName, LName: m.LastName, Gender: m.Gender, Phone: m.Phone,
    })
}
