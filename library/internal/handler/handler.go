package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/biblioteca-service/library/internal/errs"
	"github.com/Astemirdum/biblioteca-service/pkg/auth"
	md "github.com/Astemirdum/biblioteca-service/pkg/middleware"
	"github.com/Astemirdum/biblioteca-service/pkg/validate"
)

type Handler struct {
	librarySvc LibraryService
	log        *zap.Logger
}

func New(librarySrv LibraryService, log *zap.Logger) *Handler {
	return &Handler{
		librarySvc: librarySrv,
		log:        log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPost},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.POST("/requests", h.SubmitRequest, auth.MiddlewareUserName)
	api.GET("/requests", h.ListRequests, auth.MiddlewareUserName)
	api.GET("/requests/outstanding", h.ListOutstanding, auth.MiddlewareUserName)

	api.POST("/books", h.CreateBook)
	api.GET("/books", h.GetBooks)
	api.GET("/books/:bookId", h.GetBook)

	api.GET("/balances", h.GetBalances)
	api.GET("/balances/:bookId", h.GetBalance)

	api.POST("/users", h.CreateUser)
	api.GET("/users", h.GetUsers)
	api.GET("/users/:userRef", h.GetUser)
	api.GET("/users/:userRef/loans", h.GetUserLoans)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps service errors onto response codes. Anything unknown,
// storage failures included, is a 500.
func httpError(err error) *echo.HTTPError {
	switch {
	case errs.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrInvalidRequestKind), errors.Is(err, errs.ErrUserName):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errs.IsConflict(err):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// userRef takes the explicit reference first and falls back to the
// X-User-Name header.
func userRef(c echo.Context, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	userName, err := auth.GetUserName(c)
	if err != nil {
		return "", errs.ErrUserName
	}
	return userName, nil
}

func pagingParams(c echo.Context) (page, size int, err error) {
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if page, err = strconv.Atoi(pageParam); err != nil || page < 0 {
			return 0, 0, errors.New("page is invalid")
		}
	}
	if sizeParam := c.QueryParam("size"); sizeParam != "" {
		if size, err = strconv.Atoi(sizeParam); err != nil || size < 0 {
			return 0, 0, errors.New("size is invalid")
		}
	}
	return page, size, nil
}
