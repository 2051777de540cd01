package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/conradkoh/goals-sub001/internal/carryover"
	"github.com/conradkoh/goals-sub001/internal/database"
	"github.com/conradkoh/goals-sub001/internal/middleware"
	"github.com/conradkoh/goals-sub001/internal/models"
	"github.com/conradkoh/goals-sub001/internal/store"
)

// CreateGoal creates a quarterly goal, or a weekly/daily goal under the
// given parent, together with its state for the requested week.
func CreateGoal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.CreateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	goal := models.Goal{
		UserID:  userID,
		Year:    req.Year,
		Quarter: req.Quarter,
		Title:   req.Title,
		Details: req.Details,
		DueDate: req.DueDate,
		Depth:   models.DepthQuarterly,
		InPath:  store.RootPath,
	}

	if req.ParentID != nil {
		var parent models.Goal
		if err := database.DB.First(&parent, "id = ?", *req.ParentID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Parent goal not found",
			})
		}
		if parent.UserID != userID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Parent goal not found",
			})
		}
		if parent.Depth != models.DepthQuarterly && parent.Depth != models.DepthWeekly {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Goals nest only under quarterly or weekly goals",
			})
		}
		goal.Depth = parent.Depth + 1
		goal.ParentID = &parent.ID
		goal.InPath = store.JoinPath(parent.InPath, parent.ID)
	}

	if err := database.DB.Create(&goal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create goal",
		})
	}

	if req.WeekNumber != nil {
		state := models.GoalState{
			UserID:     userID,
			GoalID:     goal.ID,
			Year:       req.Year,
			Quarter:    req.Quarter,
			WeekNumber: *req.WeekNumber,
		}
		if goal.Depth == models.DepthDaily {
			state.DayOfWeek = req.DayOfWeek
		}
		if err := database.DB.Create(&state).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create goal state",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(goal)
}

func CreateAdhocGoal(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	var req models.CreateAdhocGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	goal, err := Carryover.CreateAdhocGoal(c.Context(), actor, req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

func MoveAdhocGoals(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)

	var req carryover.AdhocMoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	res, err := Carryover.MoveAdhocWeek(c.Context(), actor, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

type completeGoalRequest struct {
	Year       int  `json:"year"`
	Quarter    int  `json:"quarter"`
	WeekNumber int  `json:"weekNumber"`
	IsComplete bool `json:"isComplete"`
}

func CompleteGoal(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	goalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}

	var req completeGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	goal, err := Carryover.CompleteGoal(c.Context(), actor, goalID, carryover.Period{
		Year:       req.Year,
		Quarter:    req.Quarter,
		WeekNumber: req.WeekNumber,
	}, req.IsComplete)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(goal)
}

func SetFireFlag(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	goalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}
	if err := Carryover.SetFireFlag(c.Context(), actor, goalID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"goalId": goalID, "onFire": true})
}

func ClearFireFlag(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	goalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}
	if err := Carryover.ClearFireFlag(c.Context(), actor, goalID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"goalId": goalID, "onFire": false})
}

// DeleteGoal cascades over the goal's subtree. With ?dryRun=true it returns
// the preview tree instead of deleting.
func DeleteGoal(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	goalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}

	if c.QueryBool("dryRun") {
		tree, err := Carryover.PreviewDelete(c.Context(), actor, goalID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(tree)
	}

	deleted, err := Carryover.DeleteGoal(c.Context(), actor, goalID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"deletedGoalId": deleted})
}
