package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// requesterKey identifies the caller for rate limiting: the user id
// when JWTAuth ran, otherwise "anon".
func requesterKey(c echo.Context) string {
	if uid, ok := c.Get(CtxUserID).(uint64); ok && uid != 0 {
		return strconv.FormatUint(uid, 10)
	}
	return "anon"
}
