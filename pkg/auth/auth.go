package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	XUserNameHeader = "X-User-Name"

	userNameKeyString = "userNameKey"
)

var ErrNoUserName = errors.New("user name is not set")

// MiddlewareUserName copies the X-User-Name header into the echo context.
// Requests without the header pass through untouched.
func MiddlewareUserName(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if userName := strings.TrimSpace(c.Request().Header.Get(XUserNameHeader)); userName != "" {
			c.Set(userNameKeyString, userName)
		}
		return next(c)
	}
}

func GetUserName(c echo.Context) (string, error) {
	username, ok := c.Get(userNameKeyString).(string)
	if !ok || username == "" {
		return "", ErrNoUserName
	}
	return username, nil
}
