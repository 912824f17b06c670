// middleware/auth.go
package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const devJWTSecret = "ingresosgo-dev-secret-change-in-production"

// AdminAuth signs and checks the dashboard tokens.
type AdminAuth struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAdminAuth(secret string, ttl time.Duration) *AdminAuth {
	if secret == "" {
		secret = devJWTSecret
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AdminAuth{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken issues an HS256 token for an admin user.
func (a *AdminAuth) GenerateToken(userID, username string) (string, time.Time, error) {
	exp := a.now().Add(a.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"is_admin": true,
		"exp":      exp.Unix(),
		"iat":      a.now().Unix(),
	})
	signed, err := token.SignedString(a.secret)
	return signed, exp, err
}

func (a *AdminAuth) parse(tokenString string) (jwt.MapClaims, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(401, "Invalid signing method")
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}

// Middleware rejects requests without a valid admin bearer token.
func (a *AdminAuth) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"success": false, "error": "Falta el encabezado de autorización"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(401).JSON(fiber.Map{"success": false, "error": "Formato de autorización inválido"})
		}

		claims, ok := a.parse(parts[1])
		if !ok {
			return c.Status(401).JSON(fiber.Map{"success": false, "error": "Token inválido o expirado"})
		}

		isAdmin, ok := claims["is_admin"].(bool)
		if !ok || !isAdmin {
			return c.Status(403).JSON(fiber.Map{"success": false, "error": "Acceso denegado. Se requieren privilegios de administrador."})
		}

		c.Locals("userId", claims["user_id"])
		c.Locals("username", claims["username"])
		c.Locals("isAdmin", true)

		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) (string, error) {
	userID := c.Locals("userId")
	if id, ok := userID.(string); ok && id != "" {
		return id, nil
	}
	return "", fiber.NewError(401, "User not authenticated")
}

func GetUsername(c *fiber.Ctx) (string, error) {
	username := c.Locals("username")
	if username == nil {
		return "", fiber.NewError(401, "User not authenticated")
	}

	if name, ok := username.(string); ok {
		return name, nil
	}

	return "", fiber.NewError(401, "Invalid username format")
}
