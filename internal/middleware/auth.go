package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/thereayou/roomly/pkg/auth"
)

// UserIDKey is the gin context key the resolved user id is stored under.
const UserIDKey = "userID"

// AuthMiddleware authenticates REST requests from the Authorization
// header. Revoked tokens are rejected via the Redis blacklist before the
// signature is even checked.
func AuthMiddleware(jwtManager *auth.JWTManager, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			abort(c, "missing or invalid token")
			return
		}
		resolve(c, jwtManager, redisClient, token)
	}
}

// WSAuthMiddleware authenticates websocket upgrades. Browsers cannot set
// headers on an upgrade request, so the token may arrive as a query
// parameter instead.
func WSAuthMiddleware(jwtManager *auth.JWTManager, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			if header := c.GetHeader("Authorization"); header != "" {
				parts := strings.SplitN(header, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
					token = parts[1]
				}
			}
		}
		if token == "" {
			abort(c, "missing token")
			return
		}
		resolve(c, jwtManager, redisClient, token)
	}
}

// resolve validates the token and stores the user id in the context.
func resolve(c *gin.Context, jwtManager *auth.JWTManager, redisClient *redis.Client, token string) {
	exists, err := redisClient.Exists(context.Background(), "blacklist:"+token).Result()
	if err != nil || exists > 0 {
		abort(c, "token is blacklisted")
		return
	}

	claims, err := jwtManager.Verify(token)
	if err != nil {
		abort(c, "invalid token")
		return
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		abort(c, "invalid user id")
		return
	}

	c.Set(UserIDKey, userID)
	c.Next()
}

func abort(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
	c.Abort()
}
