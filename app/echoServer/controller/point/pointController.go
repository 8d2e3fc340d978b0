package point

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	pointrepo "github.com/n1x9s/library/repository/point"
)

type Controller struct {
	Repo pointrepo.Repo
	Log  *slog.Logger
}

// GET /v1/booking-points
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Repo.ListActive(c.Request().Context())
	if err != nil {
		h.Log.Error("booking points list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
