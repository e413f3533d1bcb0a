package handler

import (
    "context"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/beverage-reservation/internal/model"
    "github.com/iliyamo/beverage-reservation/internal/service"
)

type ReservationService interface {
    Reserve(ctx context.Context, in service.ReserveInput) (model.Reservation, error)
    Availability(ctx context.Context, at time.Time, people int) ([]model.BranchAvailability, error)
    ListByMember(ctx context.Context, memberID string) ([]model.Reservation, error)
}

// ReservationHandler serves seat availability and reservation admission.
type ReservationHandler struct {
    ErrorResponder
    Reservations ReservationService
}

func NewReservationHandler(reservations ReservationService, er ErrorResponder) *ReservationHandler {
    if reservations == nil {
        panic("nil reservation service passed to NewReservationHandler")
    }
    return &ReservationHandler{ErrorResponder: er, Reservations: reservations}
}

// parseSlot combines a YYYY-MM-DD date and an HH:MM time into a UTC
// instant.  Longer ISO strings are cut down to those prefixes.
func parseSlot(date, clock string) (time.Time, error) {
    date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
    if len(date) > 10 {
        date = date[:10]
    }
    if len(clock) > 5 {
        clock = clock[:5]
    }
    t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.UTC)
    if err != nil {
        return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD and time HH:MM", service.ErrValidation)
    }
    return t, nil
}

type availableBranchJSON struct {
    branchJSON
    AvailableSeats int `json:"availableSeats"`
}

// GetAvailableBranches handles GET /api/getAvailableBranches?date=&time=&people=.
func (h *ReservationHandler) GetAvailableBranches(c echo.Context) error {
    at, err := parseSlot(c.QueryParam("date"), c.QueryParam("time"))
    if err != nil {
        return h.Fail(c, err)
    }
    people, err := strconv.Atoi(strings.TrimSpace(c.QueryParam("people")))
    if err != nil {
        return badRequest(c, "people must be a number")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()
    avail, err := h.Reservations.Availability(ctx, at, people)
    if err != nil {
        return h.Fail(c, err)
    }
    out := make([]availableBranchJSON, 0, len(avail))
    for _, a := range avail {
        out = append(out, availableBranchJSON{branchJSON: toBranchJSON(a.Position, a.Branch), AvailableSeats: a.AvailableSeats})
    }
    return c.JSON(http.StatusOK, out)
}

type reservationReq struct {
    MemberID string `json:"memberId"`
    BranchID string `json:"branchId"`
    Date     string `json:"date"`
    Time     string `json:"time"`
    People   int    `json:"people"`
}

type reservationJSON struct {
    ID       string    `json:"id"`
    MemberID string    `json:"memberId"`
    BranchID string    `json:"branchId"`
    People   int       `json:"people"`
    Time     time.Time `json:"time"`
}

// PostReservation handles POST /api/postReservation.  A 409 response
// means the branch or member row was busy; the client may retry after
// the advertised delay.
func (h *ReservationHandler) PostReservation(c echo.Context) error {
    var req reservationReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    at, err := parseSlot(req.Date, req.Time)
    if err != nil {
        return h.Fail(c, err)
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()
    res, err := h.Reservations.Reserve(ctx, service.ReserveInput{
        MemberID: req.MemberID, BranchID: req.BranchID, At: at, People: req.People,
    })
    if err != nil {
        return h.Fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"msg": "post reservation ok", "id": res.ID})
}

// GetReservations handles GET /api/getReservations?memberId=.
func (h *ReservationHandler) GetReservations(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()
    list, err := h.Reservations.ListByMember(ctx, c.QueryParam("memberId"))
    if err != nil {
        return h.Fail(c, err)
    }
    out := make([]reservationJSON, 0, len(list))
    for _, r := range list {
        out = append(out, reservationJSON{ID: r.ID, MemberID: r.MemberID, BranchID: r.BranchID, People: r.People, Time: r.ReservedAt})
    }
    return c.JSON(http.StatusOK, out)
}
