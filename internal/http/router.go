package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/Jonah-Douglas/Campfire/internal/http/handlers"
	"github.com/Jonah-Douglas/Campfire/internal/http/middleware"
)

// BuildRouter wires all endpoints. Per-resource authorization (superuser vs
// owner) is handled by the casbin middleware on the protected groups.
func BuildRouter(ah *handlers.AuthHandlers, uh *handlers.UserHandlers, jwtmw *middleware.AuthMW, cb *middleware.CasbinMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/request-otp", ah.RequestOTP)
	auth.POST("/verify-otp", ah.VerifyOTP)
	auth.POST("/refresh-token", ah.Refresh)

	authed := r.Group("/").Use(jwtmw.WithJWT())
	authed.GET("/auth/me", ah.Me)
	authed.POST("/auth/logout", ah.Logout)
	authed.POST("/auth/logout-others", ah.LogoutOthers)
	authed.PATCH("/users/me/complete-profile", uh.CompleteProfile)

	users := r.Group("/users").Use(jwtmw.WithJWT(), cb.Enforce())
	users.GET("", uh.List)
	users.GET("/:user_id", uh.Get)
	users.PATCH("/:user_id", uh.Update)
	users.DELETE("/:user_id", uh.Delete)

	return r
}
