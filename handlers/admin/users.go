package admin

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"ingresosgo/models"
	"ingresosgo/services"
	"ingresosgo/utils"
)

// GetUsers returns users with pagination and an optional search over
// username, name and email
func GetUsers(c *fiber.Ctx) error {
	page := max(utils.QueryInt(c, "page", 1), 1)
	limit := utils.QueryInt(c, "limit", 20)
	if limit <= 0 {
		limit = 20
	}
	search := strings.ToLower(c.Query("search"))

	all, err := userService.List(c.UserContext())
	if err != nil {
		return utils.Fail(c, err)
	}

	users := make([]models.User, 0, len(all))
	for _, u := range all {
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Username), search) &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		users = append(users, u)
	}
	total := len(users)

	offset := min((page-1)*limit, total)
	end := min(offset+limit, total)

	return utils.JSONSuccess(c, fiber.Map{
		"data":  users[offset:end],
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetUser returns a single user by ID
func GetUser(c *fiber.Ctx) error {
	user, err := userService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, user)
}

// CreateUser registers a player from the dashboard. The generated password
// is only ever returned here.
func CreateUser(c *fiber.Ctx) error {
	var req services.CreateUserInput
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Cuerpo de solicitud inválido")
	}
	created, err := userService.CreateUser(c.UserContext(), req)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusCreated, "Usuario creado exitosamente", created)
}

// UpdateUser updates a user's profile and flags
func UpdateUser(c *fiber.Ctx) error {
	var req services.UserUpdate
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Cuerpo de solicitud inválido")
	}
	user, err := userService.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, "Usuario actualizado exitosamente", user)
}

// DeleteUser removes a user and everything recorded for them
func DeleteUser(c *fiber.Ctx) error {
	user, err := userService.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, "Usuario eliminado exitosamente", user)
}
