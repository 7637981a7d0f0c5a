package middleware

import (
	"net/http"
	"strings"

	"github.com/eventify/eventify-api/internal/models"
	"github.com/eventify/eventify-api/pkg/token"
	"github.com/labstack/echo/v4"
)

// Identity is the verified caller identity extracted from the access token.
// Handlers pass it into services explicitly; nothing downstream reads the
// request again.
type Identity struct {
	UserID uint
	Role   models.Role
}

const identityKey = "identity"

func Authenticate(tokens *token.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token not found")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "malformed authorization header")
			}

			claims, err := tokens.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "expired or invalid token")
			}

			c.Set(identityKey, Identity{UserID: claims.UserID, Role: models.Role(claims.Role)})
			return next(c)
		}
	}
}

func RequireRole(role models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "token not found")
			}
			if id.Role != role {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}

func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}

// SetIdentity places an identity on the context directly, for tests.
func SetIdentity(c echo.Context, id Identity) {
	c.Set(identityKey, id)
}
