package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/biblioteca-service/library/internal/model"
)

func (h *Handler) SubmitRequest(c echo.Context) error {
	var req model.LoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ref, err := userRef(c, strings.TrimSpace(req.UserRef))
	if err != nil {
		return httpError(err)
	}
	req.UserRef = ref

	rec, err := h.librarySvc.SubmitRequest(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListRequests(c echo.Context) error {
	ref, err := userRef(c, strings.TrimSpace(c.QueryParam("user")))
	if err != nil {
		return httpError(err)
	}
	books, err := h.librarySvc.ListRequestsByUser(c.Request().Context(), ref, c.QueryParam("kind"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) ListOutstanding(c echo.Context) error {
	ref, err := userRef(c, strings.TrimSpace(c.QueryParam("user")))
	if err != nil {
		return httpError(err)
	}
	books, err := h.librarySvc.ListOutstandingForReturn(c.Request().Context(), ref)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}
