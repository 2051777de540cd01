package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/conradkoh/goals-sub001/internal/cache"
	"github.com/conradkoh/goals-sub001/internal/carryover"
	"github.com/conradkoh/goals-sub001/internal/middleware"
	"github.com/conradkoh/goals-sub001/internal/period"
)

func MoveWeek(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	var req carryover.WeekMoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	res, err := Carryover.MoveWeek(c.Context(), actor, req)
	if err != nil {
		return fail(c, err)
	}
	if req.DryRun {
		return c.JSON(res.Preview)
	}
	return c.JSON(res)
}

func MoveDay(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	var req carryover.DayMoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	res, err := Carryover.MoveDay(c.Context(), actor, req)
	if err != nil {
		return fail(c, err)
	}
	if req.DryRun {
		return c.JSON(fiber.Map{"tasks": res.Tasks})
	}
	return c.JSON(res)
}

func MoveQuarter(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	var req carryover.QuarterMoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	res, err := Carryover.MoveQuarter(c.Context(), actor, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

type moveQuarterlyGoalRequest struct {
	From carryover.QuarterPeriod `json:"from"`
	To   carryover.QuarterPeriod `json:"to"`
}

func MoveQuarterlyGoal(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	goalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}

	var req moveQuarterlyGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	res, err := Carryover.MoveQuarterlyGoal(c.Context(), actor, goalID, req.From, req.To)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

// ListAvailableWeeks lists labeled move targets around the given week. The
// response only depends on the week, so it is cached.
func ListAvailableWeeks(c *fiber.Ctx) error {
	current := carryover.Period{
		Year:       c.QueryInt("year"),
		Quarter:    c.QueryInt("quarter"),
		WeekNumber: c.QueryInt("week"),
	}

	key := fmt.Sprintf("weeks:%d:%d:%d", current.Year, current.Quarter, current.WeekNumber)
	var cached []period.AvailableWeek
	if cache.GetJSON(c.Context(), key, &cached) {
		return c.JSON(cached)
	}

	weeks, err := Carryover.ListAvailableWeeks(current)
	if err != nil {
		return fail(c, err)
	}
	cache.SetJSON(c.Context(), key, weeks, 12*time.Hour)
	return c.JSON(weeks)
}
