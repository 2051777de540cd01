package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/conradkoh/goals-sub001/internal/carryover"
	"github.com/conradkoh/goals-sub001/internal/store"
)

// Carryover is the move engine shared by all handlers, wired in main.
var Carryover *carryover.Service

func Init(svc *carryover.Service) {
	Carryover = svc
}

// fail maps engine errors onto HTTP statuses.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, store.ErrUnauthorized):
		status = fiber.StatusForbidden
	case errors.Is(err, carryover.ErrInvalidArgument):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
