package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/biblioteca-service/library/internal/model"
)

func (h *Handler) CreateUser(c echo.Context) error {
	var req model.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	user, err := h.librarySvc.CreateUser(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *Handler) GetUser(c echo.Context) error {
	user, err := h.librarySvc.GetUser(c.Request().Context(), c.Param("userRef"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) GetUsers(c echo.Context) error {
	users, err := h.librarySvc.ListUsers(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUserLoans(c echo.Context) error {
	loans, err := h.librarySvc.UserLoans(c.Request().Context(), c.Param("userRef"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}
