// Package middleware provides authentication, logging, rate limiting, tracing
// and metrics middleware for the application.
package middleware

import (
	"context"
	"strconv"
	"strings"

	"connecto/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// AuthConfig configures bearer-token validation.
type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
	// Redis holds the revoked-token list under "blacklist:<jti>". Optional.
	Redis *redis.Client
	// IsBanned reports whether the authenticated account is banned. Optional.
	IsBanned func(ctx context.Context, userID uint) (bool, error)
}

// RevokedTokenKey returns the redis key marking a token ID as revoked.
func RevokedTokenKey(jti string) string {
	return "blacklist:" + jti
}

// AuthRequired validates the bearer token and stores the caller's ID in
// c.Locals("userID") and in the request context.
func AuthRequired(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := authenticate(c, cfg)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		if cfg.IsBanned != nil {
			banned, banErr := cfg.IsBanned(c.UserContext(), userID)
			if banErr != nil {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Unable to verify account"))
			}
			if banned {
				return models.RespondWithError(c, fiber.StatusForbidden,
					models.NewForbiddenError("Account is banned"))
			}
		}

		c.Locals("userID", userID)
		ctx := context.WithValue(c.UserContext(), UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, cfg AuthConfig) (uint, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, models.NewUnauthorizedError("Authorization header required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, models.NewUnauthorizedError("Invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return 0, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid token claims")
	}

	if cfg.Issuer != "" {
		if issuer, _ := claims["iss"].(string); issuer != cfg.Issuer {
			return 0, models.NewUnauthorizedError("Invalid token issuer")
		}
	}
	if cfg.Audience != "" {
		aud, err := claims.GetAudience()
		if err != nil || !containsString(aud, cfg.Audience) {
			return 0, models.NewUnauthorizedError("Invalid token audience")
		}
	}

	// Subject claim per RFC 7519
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid token structure - missing subject")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, models.NewUnauthorizedError("Invalid user ID in token")
	}

	if jti, _ := claims["jti"].(string); jti != "" && cfg.Redis != nil {
		revoked, err := cfg.Redis.Exists(c.UserContext(), RevokedTokenKey(jti)).Result()
		if err == nil && revoked > 0 {
			return 0, models.NewUnauthorizedError("Token has been revoked")
		}
	}

	return uint(userID), nil
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
