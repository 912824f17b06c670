package admin

import (
	"github.com/gofiber/fiber/v2"

	"ingresosgo/apperr"
	"ingresosgo/utils"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresAt int64  `json:"expires_at"`
}

// Login authenticates an admin user
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Cuerpo de solicitud inválido")
	}

	if req.Username == "" || req.Password == "" {
		return utils.Fail(c, apperr.Validation("Usuario y contraseña son requeridos"))
	}

	user, err := userService.AdminLogin(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return utils.Fail(c, err)
	}

	token, expiresAt, err := adminAuth.GenerateToken(user.ID, user.Username)
	if err != nil {
		return utils.Fail(c, apperr.Internal("No se pudo generar el token", err))
	}

	return utils.JSONSuccess(c, LoginResponse{
		Token:     token,
		Username:  user.Username,
		ExpiresAt: expiresAt.Unix(),
	})
}

// VerifyToken reports the identity carried by the token the middleware accepted
func VerifyToken(c *fiber.Ctx) error {
	return utils.JSONSuccess(c, fiber.Map{
		"valid":    true,
		"user_id":  c.Locals("userId"),
		"username": c.Locals("username"),
		"is_admin": c.Locals("isAdmin"),
	})
}

// Logout handles admin logout (client-side token removal)
func Logout(c *fiber.Ctx) error {
	return utils.JSONMessage(c, fiber.StatusOK, "Sesión cerrada", nil)
}
