// handlers/auth.go - player registration, login and account
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ingresosgo/services"
	"ingresosgo/utils"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CheckUserRequest struct {
	Username string `json:"username"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Register creates a player account
// POST /api/auth/register
func Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	u, err := userService.Register(c.UserContext(), req)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusCreated, "Usuario registrado exitosamente", u)
}

// Login checks the credentials and applies the login streak
// POST /api/auth/login
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	u, err := userService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, "Login exitoso", u)
}

// CheckUser reports whether a username is taken
// POST /api/auth/check
func CheckUser(c *fiber.Ctx) error {
	var req CheckUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	exists, err := userService.Exists(c.UserContext(), req.Username)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.Map{"exists": exists})
}

// GetMe returns a player without credentials
// GET /api/auth/me/:id
func GetMe(c *fiber.Ctx) error {
	u, err := userService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, u)
}

// ChangePassword replaces the password after checking the current one
// PUT /api/auth/change-password/:id
func ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := userService.ChangePassword(c.UserContext(), c.Params("id"), req.CurrentPassword, req.NewPassword); err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, "Contraseña actualizada exitosamente", nil)
}
