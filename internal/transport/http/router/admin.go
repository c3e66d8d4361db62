package router

import (
	"github.com/gin-gonic/gin"

	"restaurant-booking/internal/domain"
	mdw "restaurant-booking/internal/transport/http/middleware"
)

// NewAdminEngine serves /admin/v1; every route requires an admin token.
func NewAdminEngine(d Deps, reg *Registry) *gin.Engine {
	r := newEngine(d)

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWT, d.Revoker, d.Users, domain.RoleAdmin))
	reg.MountAdmin(admin)
	return r
}
