package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/wanderwise/account-service/internal/transport/http/handler"
	"github.com/wanderwise/account-service/internal/transport/http/middleware"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, accountHandler *handler.AccountHandler, jwtKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	accounts := r.Group("/accounts")
	accounts.POST("/register", accountHandler.Register)
	accounts.GET("/confirm-email/:id/:token", accountHandler.ConfirmEmail)
	accounts.GET("/confirm-email/:id/:token/", accountHandler.ConfirmEmail)
	accounts.POST("/resend-confirmation", accountHandler.ResendConfirmation)
	accounts.POST("/login", accountHandler.Login)

	// Authenticated routes
	accounts.GET("/me", middleware.Auth(jwtKey), accountHandler.Me)

	return r
}
