package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskdeck/backend/internal/model"
	"github.com/taskdeck/backend/internal/service"
)

const authUserKey = "auth_user"

// AuthMiddleware is the authorization gate for protected endpoints: it
// verifies the bearer token and resolves its subject to a user record.
// Every rejection is a 403 with a stable reason string.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusForbidden, model.ErrorResponse{Detail: "Authorization header missing or invalid"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			c.JSON(http.StatusForbidden, model.ErrorResponse{Detail: "Authorization header missing or invalid"})
			c.Abort()
			return
		}

		username, err := authService.VerifyAccessToken(token)
		if err != nil {
			c.JSON(http.StatusForbidden, model.ErrorResponse{Detail: "Invalid token"})
			c.Abort()
			return
		}

		user, err := authService.ResolveUser(c.Request.Context(), username)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				c.JSON(http.StatusForbidden, model.ErrorResponse{Detail: "user not found"})
			} else {
				c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "server error"})
			}
			c.Abort()
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

func GetAuthUser(c *gin.Context) *model.AuthUser {
	if value, ok := c.Get(authUserKey); ok {
		if user, ok := value.(*model.AuthUser); ok {
			return user
		}
	}
	return nil
}
