package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"shoot-workflow-backend/internal/config"
)

const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "missing authorization header", "")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, http.StatusUnauthorized, "invalid authorization header format", "")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "empty token", "")
			return
		}

		// Some clients URL-encode the token
		if decoded, err := url.QueryUnescape(tokenString); err == nil {
			tokenString = decoded
		}

		if strings.Count(tokenString, ".") != 2 {
			abort(c, http.StatusUnauthorized, "invalid token format", "JWT token must have 3 parts separated by dots")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			if cfg.SupabaseJWTSecret == "" {
				return nil, jwt.ErrSignatureInvalid
			}
			// Supabase JWT secret is used directly as the signing key
			return []byte(cfg.SupabaseJWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			var errorMsg string
			switch {
			case strings.Contains(err.Error(), "signature is invalid"):
				errorMsg = "token signature is invalid - check JWT secret"
			case strings.Contains(err.Error(), "token is expired"):
				errorMsg = "token has expired"
			case strings.Contains(err.Error(), "could not JSON decode"):
				errorMsg = "token is malformed - ensure you're using a valid Supabase JWT token"
			default:
				errorMsg = err.Error()
			}
			abort(c, http.StatusUnauthorized, "invalid token", errorMsg)
			return
		}
		if !token.Valid {
			abort(c, http.StatusUnauthorized, "invalid token", "")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abort(c, http.StatusUnauthorized, "invalid token claims", "")
			return
		}

		// Extract user_id from "sub" claim
		sub, ok := claims["sub"].(string)
		if !ok {
			abort(c, http.StatusUnauthorized, "missing user id in token", "")
			return
		}
		if _, err := uuid.Parse(sub); err != nil {
			abort(c, http.StatusUnauthorized, "invalid user id in token", "")
			return
		}

		c.Set(UserIDKey, sub)
		c.Set(RoleKey, roleFromClaims(claims))
		c.Next()
	}
}

// roleFromClaims reads the application role. Supabase keeps it in
// app_metadata; the top-level "role" is the database role and is only used
// when nothing else is set.
func roleFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"app_metadata", "user_metadata"} {
		if meta, ok := claims[key].(map[string]interface{}); ok {
			if role, ok := meta["role"].(string); ok && role != "" {
				return role
			}
		}
	}
	role, _ := claims["role"].(string)
	return role
}

// RequireRole lets the request through only for the given roles. It must run
// after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[Role(c)] {
			abort(c, http.StatusForbidden, "insufficient role", "this action requires one of: "+strings.Join(roles, ", "))
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user. ok is false outside AuthMiddleware.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	s, _ := v.(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func Role(c *gin.Context) string {
	return c.GetString(RoleKey)
}

func abort(c *gin.Context, status int, msg, detail string) {
	body := gin.H{"error": msg}
	if detail != "" {
		body["message"] = detail
	}
	c.AbortWithStatusJSON(status, body)
}
