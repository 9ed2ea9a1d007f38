package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/ErlanBelekov/secure-login/internal/transport/http/handler"
	"github.com/ErlanBelekov/secure-login/internal/transport/http/middleware"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, sessions middleware.SessionValidator) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(handler.MethodNotAllowed)
	r.NoRoute(handler.NotFound)

	r.Use(gin.CustomRecovery(handler.Recovery))
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	api := r.Group("/api", middleware.SessionToken())
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.POST("/session/refresh", authHandler.Refresh)

	authed := api.Group("", middleware.RequireSession(sessions))
	authed.GET("/session", authHandler.Session)

	return r
}
