package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quillbase/blogserver/internal/constants"
	"github.com/quillbase/blogserver/internal/repository"
	"github.com/quillbase/blogserver/internal/service"
	ctxutil "github.com/quillbase/blogserver/pkg/context"
	"github.com/quillbase/blogserver/pkg/logger"
	"go.uber.org/zap"
)

type JWTMiddleware struct {
	jwtService *service.JWTService
	userRepo   *repository.UserRepository
}

func NewJWTMiddleware(jwtService *service.JWTService, userRepo *repository.UserRepository) *JWTMiddleware {
	return &JWTMiddleware{
		jwtService: jwtService,
		userRepo:   userRepo,
	}
}

func abortUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"message": constants.MsgUnauthorized,
	})
	c.Abort()
}

// RequireAuth validates the bearer token and stamps the caller's
// identity into both the gin context and the request context.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			logger.GetLogger().Warn("Missing Authorization header",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			abortUnauthorized(c)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.GetLogger().Warn("Invalid Authorization header format",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			abortUnauthorized(c)
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenParts[1])
		if err != nil {
			logger.GetLogger().Warn("Invalid or expired token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err))
			abortUnauthorized(c)
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			logger.GetLogger().Warn("Invalid user ID in token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			abortUnauthorized(c)
			return
		}
		userID := uint(userIDFloat)

		// The token may outlive the account; check the user still exists
		// and read the current authority rather than trusting the claim.
		ctx := c.Request.Context()
		user, err := m.userRepo.FindByID(ctx, userID)
		if err != nil {
			logger.GetLogger().Warn("Token user no longer exists",
				zap.String("path", c.Request.URL.Path),
				zap.Uint("user_id", userID),
				zap.Error(err))
			abortUnauthorized(c)
			return
		}

		c.Set(string(constants.CtxKeyUserID), user.ID)
		c.Set(string(constants.CtxKeyUsername), user.Username)
		c.Set(string(constants.CtxKeyAuthority), user.Authority)

		c.Request = c.Request.WithContext(ctxutil.WithCaller(ctx, user.ID, user.Username, user.Authority))
		c.Next()
	}
}

// RequireAuthority allows the request through only when the caller's
// authority matches. Must run after RequireAuth.
func (m *JWTMiddleware) RequireAuthority(authority string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := c.GetString(string(constants.CtxKeyAuthority))
		if current != authority {
			logger.GetLogger().Warn("Insufficient authority",
				zap.String("path", c.Request.URL.Path),
				zap.String("required", authority),
				zap.String("actual", current))
			c.JSON(http.StatusForbidden, gin.H{
				"message": constants.MsgForbidden,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
