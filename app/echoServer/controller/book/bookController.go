package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/n1x9s/library/app/echoServer/jwtx"
	"github.com/n1x9s/library/model"
	booksvc "github.com/n1x9s/library/service/book"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	h.Log.Error(op, "err", err)
	switch booksvc.Code(err) {
	case booksvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case booksvc.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case booksvc.ErrActiveBooking:
		return c.JSON(http.StatusConflict, echo.Map{"message": "book has an active booking"})
	case booksvc.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payload"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func (h *Controller) bindBookReq(c echo.Context) (booksvc.CreateParams, bool) {
	var req BookReq
	if err := c.Bind(&req); err != nil {
		return booksvc.CreateParams{}, false
	}
	if err := h.V.Struct(req); err != nil {
		return booksvc.CreateParams{}, false
	}
	return booksvc.CreateParams{
		Title:           req.Title,
		Author:          req.Author,
		Description:     req.Description,
		Genre:           req.Genre,
		PublicationYear: req.PublicationYear,
		Condition:       model.BookCondition(req.Condition),
	}, true
}

// POST /v1/books
// @Summary Add a book to the shelf
// @Success 201 {object} model.Book
func (h *Controller) Create(c echo.Context) error {
	p, ok := h.bindBookReq(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	b, err := h.Svc.Create(c.Request().Context(), uid, p)
	if err != nil {
		return h.fail(c, "book create", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	p := booksvc.SearchParams{
		Search:        c.QueryParam("search"),
		Genre:         c.QueryParam("genre"),
		Author:        c.QueryParam("author"),
		AvailableOnly: c.QueryParam("available_only") == "true",
	}
	if s := c.QueryParam("owner_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid owner_id"})
		}
		p.OwnerID = &id
	}
	p.Page, _ = strconv.Atoi(c.QueryParam("page"))
	p.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	rows, total, err := h.Svc.Search(c.Request().Context(), p)
	if err != nil {
		return h.fail(c, "book list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "total": total})
}

// GET /v1/books/my
func (h *Controller) MyBooks(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.MyBooks(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, "book my", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	b, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "book detail", err)
	}
	return c.JSON(http.StatusOK, b)
}

// PUT /v1/books/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	p, ok := h.bindBookReq(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	b, err := h.Svc.Update(c.Request().Context(), id, uid, p)
	if err != nil {
		return h.fail(c, "book update", err)
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /v1/books/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := h.Svc.Delete(c.Request().Context(), id, uid); err != nil {
		return h.fail(c, "book delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}
