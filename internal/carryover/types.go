package carryover

import (
	"github.com/google/uuid"

	"github.com/conradkoh/goals-sub001/internal/models"
)

// Actor identifies the authenticated owner a move runs as. It is threaded
// explicitly through every planner/executor call; the core holds no ambient
// session state.
type Actor struct {
	UserID uuid.UUID
}

// Period is a (year, quarter, weekNumber) partition key.
type Period struct {
	Year       int `json:"year"`
	Quarter    int `json:"quarter"`
	WeekNumber int `json:"weekNumber"`
}

// DayPeriod narrows a Period to one ISO day of week (1=Monday .. 7=Sunday).
type DayPeriod struct {
	Year       int `json:"year"`
	Quarter    int `json:"quarter"`
	WeekNumber int `json:"weekNumber"`
	DayOfWeek  int `json:"dayOfWeek"`
}

// QuarterPeriod is a (year, quarter) partition key.
type QuarterPeriod struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

type WeekMoveRequest struct {
	From        Period `json:"from"`
	To          Period `json:"to"`
	ToDayOfWeek *int   `json:"toDayOfWeek"`
	DryRun      bool   `json:"dryRun"`
}

// QuarterlyGoalToUpdate carries a quarterly goal's flags into the target
// week. IsPinned is already forced false here when IsStarred is set.
type QuarterlyGoalToUpdate struct {
	GoalID    uuid.UUID `json:"goalId"`
	Title     string    `json:"title"`
	IsStarred bool      `json:"isStarred"`
	IsPinned  bool      `json:"isPinned"`
}

// DailyGoalToMove is a daily child brought along with its weekly parent.
type DailyGoalToMove struct {
	Goal  models.Goal      `json:"goal"`
	State models.GoalState `json:"state"`
}

// WeekStateToCopy is one weekly goal qualifying for carry-over, with its
// source state, the bumped lineage, its quarterly parent, and the daily
// children moving with it.
type WeekStateToCopy struct {
	Goal            models.Goal       `json:"goal"`
	State           models.GoalState  `json:"state"`
	CarryOver       models.CarryOver  `json:"carryOver"`
	QuarterlyGoalID uuid.UUID         `json:"quarterlyGoalId"`
	DailyGoals      []DailyGoalToMove `json:"dailyGoals"`
}

type WeekMovePreview struct {
	CanPull                bool                    `json:"canPull"`
	WeekStatesToCopy       []WeekStateToCopy       `json:"weekStatesToCopy"`
	DailyGoalsToMove       []DailyGoalToMove       `json:"dailyGoalsToMove"`
	QuarterlyGoalsToUpdate []QuarterlyGoalToUpdate `json:"quarterlyGoalsToUpdate"`
}

type WeekMoveResult struct {
	WeekStatesCopied      int             `json:"weekStatesCopied"`
	DailyGoalsMoved       int             `json:"dailyGoalsMoved"`
	QuarterlyGoalsUpdated int             `json:"quarterlyGoalsUpdated"`
	Preview               WeekMovePreview `json:"preview"`
}

type DayMoveRequest struct {
	From               DayPeriod `json:"from"`
	To                 DayPeriod `json:"to"`
	DryRun             bool      `json:"dryRun"`
	MoveOnlyIncomplete *bool     `json:"moveOnlyIncomplete"`
}

type GoalRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type QuarterlyGoalRef struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	IsStarred bool      `json:"isStarred"`
	IsPinned  bool      `json:"isPinned"`
}

// TaskSummary describes one daily task in a day-move preview, with its
// weekly and quarterly context.
type TaskSummary struct {
	ID            uuid.UUID         `json:"id"`
	Title         string            `json:"title"`
	WeeklyGoal    *GoalRef          `json:"weeklyGoal,omitempty"`
	QuarterlyGoal *QuarterlyGoalRef `json:"quarterlyGoal,omitempty"`
}

type DayMoveResult struct {
	TasksMoved int           `json:"tasksMoved"`
	Tasks      []TaskSummary `json:"tasks"`
}

type QuarterMoveRequest struct {
	From                     QuarterPeriod `json:"from"`
	To                       QuarterPeriod `json:"to"`
	SelectedQuarterlyGoalIDs []uuid.UUID   `json:"selectedQuarterlyGoalIds"`
	SelectedAdhocGoalIDs     []uuid.UUID   `json:"selectedAdhocGoalIds"`
}

// QuarterMoveEntry is the per-quarterly-goal outcome of a quarter migration.
// Error is set, and the other fields zero, when that goal's migration failed;
// other goals are unaffected.
type QuarterMoveEntry struct {
	GoalID                  uuid.UUID  `json:"goalId"`
	NewGoalID               *uuid.UUID `json:"newGoalId,omitempty"`
	WeeklyGoalsMigrated     int        `json:"weeklyGoalsMigrated"`
	WeeklyGoalsReused       int        `json:"weeklyGoalsReused"`
	DailyGoalsMigrated      int        `json:"dailyGoalsMigrated"`
	DailyGoalsReused        int        `json:"dailyGoalsReused"`
	QuarterlyGoalWasCreated bool       `json:"quarterlyGoalWasCreated"`
	Error                   string     `json:"error,omitempty"`
}

type QuarterMoveResult struct {
	QuarterlyGoalsCopied int                `json:"quarterlyGoalsCopied"`
	AdhocGoalsMoved      int                `json:"adhocGoalsMoved"`
	Results              []QuarterMoveEntry `json:"results"`
}

type MoveQuarterlyGoalResult struct {
	NewGoalID               uuid.UUID `json:"newGoalId"`
	WeeklyGoalsMigrated     int       `json:"weeklyGoalsMigrated"`
	WeeklyGoalsReused       int       `json:"weeklyGoalsReused"`
	DailyGoalsMigrated      int       `json:"dailyGoalsMigrated"`
	DailyGoalsReused        int       `json:"dailyGoalsReused"`
	QuarterlyGoalWasCreated bool      `json:"quarterlyGoalWasCreated"`
}

// DeletePreviewNode is one node of a deletion dry-run tree. Weeks lists the
// week numbers the node has states in.
type DeletePreviewNode struct {
	ID       uuid.UUID            `json:"_id"`
	Title    string               `json:"title"`
	Depth    models.GoalDepth     `json:"depth"`
	Children []*DeletePreviewNode `json:"children"`
	Weeks    []int                `json:"weeks"`
}

// AdhocWeek is the (year, weekNumber) partition key of the adhoc lane.
type AdhocWeek struct {
	Year       int `json:"year"`
	WeekNumber int `json:"weekNumber"`
}

type AdhocMoveRequest struct {
	From               AdhocWeek `json:"from"`
	To                 AdhocWeek `json:"to"`
	DryRun             bool      `json:"dryRun"`
	MoveOnlyIncomplete *bool     `json:"moveOnlyIncomplete"`
}

type AdhocMoveResult struct {
	GoalsMoved int       `json:"goalsMoved"`
	Goals      []GoalRef `json:"goals"`
}
