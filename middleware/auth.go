package middleware

import (
	"pickup-scheduler/constants"

	"github.com/gofiber/fiber/v2"
)

// RequirePermissions creates a middleware that requires one of the given permissions
func RequirePermissions(permissions ...string) fiber.Handler {
	return IsAuthenticated(permissions)
}

// RequireAnyPermission allows access if user has any valid token
func RequireAnyPermission(permissions ...string) fiber.Handler {
	allPerms := append(permissions, constants.PermAny)
	return IsAuthenticated(allPerms)
}

// RequireAuthentication only requires valid authentication without specific permissions
func RequireAuthentication() fiber.Handler {
	return IsAuthenticated([]string{constants.PermAny})
}
