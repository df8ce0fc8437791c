package httperr

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the JSON body returned for every failed request. RayID
// echoes the X-Ray-ID request id so a response can be matched to its logs.
type ErrorResponse struct {
	Message string `json:"message"`
	RayID   string `json:"ray_id"`
}

// Respond writes the standard error body with the given status.
func Respond(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Message: message,
		RayID:   c.GetRespHeader("X-Ray-ID"),
	})
}
