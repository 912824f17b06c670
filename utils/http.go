// utils/http.go - JSON envelope helpers for fiber handlers
package utils

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"ingresosgo/apperr"
)

// HideInternalErrors replaces 500 messages with a generic text. main sets it
// in production.
var HideInternalErrors bool

const genericError = "Ocurrió un error. Intenta nuevamente más tarde."

// ErrorHandler answers errors returned by handlers, including *fiber.Error
// from the framework, with the standard error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Error interno del servidor"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	} else {
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
	}
	return JSONError(c, code, message)
}

// JSON sends body with the given status.
func JSON(c *fiber.Ctx, status int, body fiber.Map) error {
	return c.Status(status).JSON(body)
}

// JSONError sends {success:false, error}.
func JSONError(c *fiber.Ctx, status int, message string) error {
	if HideInternalErrors && status >= fiber.StatusInternalServerError {
		message = genericError
	}
	return JSON(c, status, fiber.Map{
		"success": false,
		"error":   message,
	})
}

// JSONSuccess sends {success:true, data}. A fiber.Map is merged into the
// top level instead, for responses that carry count or total next to data.
func JSONSuccess(c *fiber.Ctx, data interface{}) error {
	response := fiber.Map{"success": true}
	if dataMap, ok := data.(fiber.Map); ok {
		for k, v := range dataMap {
			response[k] = v
		}
	} else if data != nil {
		response["data"] = data
	}
	return JSON(c, fiber.StatusOK, response)
}

// JSONMessage sends {success:true, message, data?} with status.
func JSONMessage(c *fiber.Ctx, status int, message string, data interface{}) error {
	response := fiber.Map{"success": true, "message": message}
	if data != nil {
		response["data"] = data
	}
	return JSON(c, status, response)
}

// Fail maps a service error to its status and envelope.
func Fail(c *fiber.Ctx, err error) error {
	status := apperr.Status(err)
	if status >= fiber.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
	}
	return JSONError(c, status, apperr.Message(err))
}

// QueryInt reads an integer query parameter, falling back to def when it is
// missing or malformed.
func QueryInt(c *fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// QueryBool reads "true"/"false" query parameters.
func QueryBool(c *fiber.Ctx, key string, def bool) bool {
	switch c.Query(key) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	return def
}
