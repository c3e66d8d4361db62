package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"restaurant-booking/internal/core/auth"
	"restaurant-booking/internal/domain"
	resp "restaurant-booking/internal/transport/http/response"
)

const (
	KeyClaims = "claims"
	KeyUserID = "userId"
	KeyRole   = "role"
	KeyActor  = "actor"
)

// UserLookup returns the stored user, or nil when the id is unknown.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// AuthJWT verifies the bearer token and stores the caller's identity on the
// context. With users set, the role comes from the stored account rather than
// the token claim, so role changes apply to tokens already issued. A
// non-empty requireRole rejects every other role.
func AuthJWT(j *auth.JWTer, rev *auth.Revoker, users UserLookup, requireRole domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		revoked, err := rev.Revoked(c.Request.Context(), claims.TokenID())
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeServerError, ""))
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "token revoked"))
			return
		}
		actor := domain.Actor{ID: claims.UID, Role: domain.Role(claims.Role)}
		if users != nil {
			u, err := users.FindByID(c.Request.Context(), claims.UID)
			if err != nil {
				_ = c.Error(err)
				c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeServerError, ""))
				return
			}
			if u == nil {
				c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "account not found"))
				return
			}
			actor.Role = u.Role
		}
		if !actor.Authenticated() {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if requireRole != "" && actor.Role != requireRole {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(KeyUserID, actor.ID)
		c.Set(KeyRole, string(actor.Role))
		c.Set(KeyActor, actor)
		c.Next()
	}
}

// ActorFrom returns the caller set by AuthJWT, or the zero Actor.
func ActorFrom(c *gin.Context) domain.Actor {
	if v, ok := c.Get(KeyActor); ok {
		if a, ok := v.(domain.Actor); ok {
			return a
		}
	}
	return domain.Actor{}
}

// TokenFrom returns the verified token id and its remaining lifetime.
func TokenFrom(c *gin.Context) (string, time.Duration) {
	v, ok := c.Get(KeyClaims)
	if !ok {
		return "", 0
	}
	cl, ok := v.(*auth.Claims)
	if !ok {
		return "", 0
	}
	return cl.TokenID(), cl.Remaining(time.Now())
}
