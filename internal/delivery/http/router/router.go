// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"folio/internal/delivery/http/middleware"
	"folio/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// RouterParams holds the handlers and middlewares, injected by Fx.
type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	AccessHandler  *handler.AccessHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	accessHandler  *handler.AccessHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		userHandler:    params.UserHandler,
		accessHandler:  params.AccessHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Session lifecycle, public
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/google", r.authHandler.GoogleLogin)
		authGroup.POST("/refresh", r.authHandler.Refresh)
		authGroup.POST("/logout", r.authHandler.Logout)
		authGroup.POST("/password-reset/request", r.authHandler.RequestPasswordReset)
		authGroup.POST("/password-reset/confirm", r.authHandler.ConfirmPasswordReset)
		authGroup.POST("/verify-email", r.authHandler.VerifyEmail)
		authGroup.POST("/resend-verification", r.authHandler.ResendVerification)
	}

	// Bearer introspection and self-service profile
	e.GET("/auth/me", r.authHandler.Me, r.authMiddleware.Authenticate)

	meGroup := e.Group("/users/me")
	meGroup.Use(r.authMiddleware.Authenticate)
	{
		meGroup.PATCH("", r.userHandler.UpdateProfile)
		meGroup.PUT("/password", r.userHandler.UpdatePassword)
	}

	// Administration: account listing and the role/permission model.
	// Guarded by the access-management permission, with the admin role
	// as a fallback.
	adminGroup := e.Group("/admin")
	adminGroup.Use(r.authMiddleware.Authenticate)
	adminGroup.Use(r.authMiddleware.RequireAccessManager)
	{
		adminGroup.GET("/users", r.userHandler.ListUsers)
		adminGroup.GET("/users/:id", r.userHandler.GetUser)
		adminGroup.DELETE("/users/:id", r.userHandler.DeleteUser)

		adminGroup.POST("/roles", r.accessHandler.CreateRole)
		adminGroup.GET("/roles", r.accessHandler.ListRoles)
		adminGroup.POST("/permissions", r.accessHandler.CreatePermission)
		adminGroup.POST("/roles/:name/permissions", r.accessHandler.GrantPermission)
		adminGroup.GET("/roles/:name/permissions", r.accessHandler.ListRolePermissions)
		adminGroup.POST("/users/:id/roles", r.accessHandler.AssignRole)
		adminGroup.DELETE("/users/:id/roles/:role", r.accessHandler.RemoveRole)
		adminGroup.GET("/users/:id/roles", r.accessHandler.ListUserRoles)
	}
}
