package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/biblioteca-service/library/internal/model"
)

func (h *Handler) CreateBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	book, err := h.librarySvc.CreateBook(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) GetBook(c echo.Context) error {
	book, err := h.librarySvc.GetBook(c.Request().Context(), c.Param("bookId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) GetBooks(c echo.Context) error {
	page, size, err := pagingParams(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var showAll bool
	if showAllParam := c.QueryParam("showAll"); showAllParam != "" {
		if showAll, err = strconv.ParseBool(showAllParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "showAll is invalid")
		}
	}

	books, err := h.librarySvc.ListBooks(c.Request().Context(), showAll, page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBalance(c echo.Context) error {
	balance, err := h.librarySvc.GetBalance(c.Request().Context(), c.Param("bookId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, balance)
}

func (h *Handler) GetBalances(c echo.Context) error {
	balances, err := h.librarySvc.ListBalances(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, balances)
}
