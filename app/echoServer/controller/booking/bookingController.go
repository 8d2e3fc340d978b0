package booking

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/n1x9s/library/app/echoServer/jwtx"
	"github.com/n1x9s/library/model"
	bs "github.com/n1x9s/library/service/booking"
)

type Controller struct {
	Svc bs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// fail logs a booking operation error and maps its code to a response.
func (h *Controller) fail(c echo.Context, op string, err error) error {
	h.Log.Error(op, "err", err)
	switch code := bs.Code(err); code {
	case bs.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "booking not found"})
	case bs.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case bs.ErrPointNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "booking point not found"})
	case bs.ErrUserNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	case bs.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case bs.ErrInvalidTransition:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "invalid status transition"})
	case bs.ErrAlreadyBooked:
		return c.JSON(http.StatusConflict, echo.Map{"message": "book is already booked"})
	case bs.ErrBookUnavailable:
		return c.JSON(http.StatusConflict, echo.Map{"message": "book is not available"})
	case bs.ErrSelfBooking:
		return c.JSON(http.StatusConflict, echo.Map{"message": "cannot book your own book"})
	case bs.ErrPickupInPast, bs.ErrReturnBeforePickup, bs.ErrBadStatus:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": string(code)})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// POST /v1/bookings
// @Summary Reserve a book
// @Success 201 {object} model.Booking
// @Failure 400,404,409,500
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	bookID, _ := uuid.Parse(req.BookID)
	pointID, _ := uuid.Parse(req.BookingPointID)
	pickup, _ := time.Parse("2006-01-02", req.PlannedPickupDate)
	ret, _ := time.Parse("2006-01-02", req.PlannedReturnDate)

	b, err := h.Svc.Create(c.Request().Context(), bs.CreateParams{
		BorrowerID:        uid,
		BookID:            bookID,
		BookingPointID:    pointID,
		PlannedPickupDate: pickup,
		PlannedReturnDate: ret,
		Notes:             req.Notes,
	})
	if err != nil {
		return h.fail(c, "booking create", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// GET /v1/bookings
func (h *Controller) List(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	p := bs.ListParams{
		AsBorrower: c.QueryParam("as_borrower") == "true",
		AsOwner:    c.QueryParam("as_owner") == "true",
	}
	if s := c.QueryParam("status"); s != "" {
		st := model.BookingStatus(s)
		p.Status = &st
	}
	p.Page, _ = strconv.Atoi(c.QueryParam("page"))
	p.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	rows, total, err := h.Svc.List(c.Request().Context(), uid, p)
	if err != nil {
		return h.fail(c, "booking list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":  rows,
		"total": total,
	})
}

// GET /v1/bookings/:id
func (h *Controller) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	b, err := h.Svc.Get(c.Request().Context(), id, uid)
	if err != nil {
		return h.fail(c, "booking get", err)
	}
	return c.JSON(http.StatusOK, b)
}

// PUT /v1/bookings/:id/status
func (h *Controller) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	b, err := h.Svc.UpdateStatus(c.Request().Context(), id, uid, model.BookingStatus(req.Status))
	if err != nil {
		return h.fail(c, "booking update status", err)
	}
	return c.JSON(http.StatusOK, b)
}

// POST /v1/bookings/:id/confirm-pickup
func (h *Controller) ConfirmPickup(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	b, err := h.Svc.ConfirmPickup(c.Request().Context(), id, uid)
	if err != nil {
		return h.fail(c, "booking confirm pickup", err)
	}
	return c.JSON(http.StatusOK, b)
}

// POST /v1/bookings/:id/confirm-return
func (h *Controller) ConfirmReturn(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	b, err := h.Svc.ConfirmReturn(c.Request().Context(), id, uid)
	if err != nil {
		return h.fail(c, "booking confirm return", err)
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /v1/bookings/:id
func (h *Controller) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := h.Svc.Cancel(c.Request().Context(), id, uid); err != nil {
		return h.fail(c, "booking cancel", err)
	}
	return c.NoContent(http.StatusNoContent)
}
