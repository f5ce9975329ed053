package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/tokenkeeper/internal/logging"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
)

// NewRouter builds the gin engine with all routes mounted. The admin group
// is guarded by the access-token middleware requiring the admin role.
func NewRouter(engine Engine, parser TokenParser, logger logging.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	h := NewHandler(engine, logger)

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.POST("/refresh", h.refresh)
		authGroup.POST("/revoke", h.revoke)
	}

	adminGroup := r.Group("/api/admin", RequireRole(parser, models.RoleAdmin))
	{
		adminGroup.POST("/users/:id/promote", h.promote)
		adminGroup.POST("/users/:id/demote", h.demote)
	}

	return r
}
