package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"healthcare-scheduling-server/internal/config"
	"healthcare-scheduling-server/internal/models"
	"healthcare-scheduling-server/internal/utils"
)

const actorKey = "actor"

// ActorResolver completes an authenticated actor, for example by mapping a
// doctor account to its directory profile.
type ActorResolver interface {
	ResolveActor(ctx context.Context, actor models.Actor) (models.Actor, error)
}

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(cfg *config.Config, resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		actor := models.Actor{ID: claims.UserID, Role: claims.Role}
		if resolver != nil {
			actor, err = resolver.ResolveActor(c.Request.Context(), actor)
			if err != nil {
				utils.RespondError(c, err)
				c.Abort()
				return
			}
		}

		c.Set("userID", actor.ID)
		c.Set("userRole", actor.Role)
		c.Set(actorKey, actor)

		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok {
			utils.InternalServerError(c, "User role not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				c.Next()
				return
			}
		}

		utils.Forbidden(c, "You do not have permission to access this resource.")
		c.Abort()
	}
}

// GetActorFromContext returns the actor set by AuthMiddleware.
func GetActorFromContext(c *gin.Context) (models.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

// Helper function to get user ID from context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}

// Helper function to get user role from context
func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	userRole, exists := c.Get("userRole")
	if !exists {
		return "", false
	}
	role, ok := userRole.(models.Role)
	return role, ok
}
