package middleware // middleware holds the echo middleware shared by every route group

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/logging"
	"github.com/iliyamo/cinema-booking/internal/utils"
)

// Context keys set by JWTAuth.
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxTokenID  = "token_jti"
	CtxTokenExp = "token_exp"
)

// RevocationChecker reports whether a token id was revoked at logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTAuth validates the Bearer access token and stores the user id (uint64),
// role, jti and expiry in the echo context.  Tokens revoked through logout
// are rejected; if the revocation store cannot be reached the request is let
// through, since the signature and expiry were already verified.
func JWTAuth(secret string, revoked RevocationChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid or expired token"})
			}
			if revoked != nil {
				ctx := c.Request().Context()
				gone, err := revoked.IsRevoked(ctx, claims.ID)
				if err != nil {
					logging.FromContext(ctx).WithError(err).Warn("token revocation check failed")
				} else if gone {
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "token has been revoked"})
				}
			}
			uid, _ := claims.UserID() // validated by ParseAccessToken
			c.Set(CtxUserID, uid)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxTokenID, claims.ID)
			if claims.ExpiresAt != nil {
				c.Set(CtxTokenExp, claims.ExpiresAt.Time)
			}
			return next(c)
		}
	}
}
