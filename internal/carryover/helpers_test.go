package carryover

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/conradkoh/goals-sub001/internal/models"
	"github.com/conradkoh/goals-sub001/internal/period"
	"github.com/conradkoh/goals-sub001/internal/store"
)

var testDBSeq int64

// newTestService opens a fresh in-memory database per test. The single
// connection keeps the shared-cache database alive for the test's duration.
func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	svc, st, _ := newTestServiceDB(t)
	return svc, st
}

// newTestServiceDB also exposes the gorm handle, for tests that hook into
// its callbacks.
func newTestServiceDB(t *testing.T) (*Service, *store.Store, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:carryover_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Domain{},
		&models.Goal{},
		&models.GoalState{},
		&models.FireFlag{},
	))

	st := store.New(db)
	return New(st, nil), st, db
}

func mustGoal(t *testing.T, st *store.Store, g *models.Goal) *models.Goal {
	t.Helper()
	require.NoError(t, st.InsertGoal(context.Background(), g))
	return g
}

func mustState(t *testing.T, st *store.Store, s *models.GoalState) *models.GoalState {
	t.Helper()
	require.NoError(t, st.InsertState(context.Background(), s))
	return s
}

func quarterlyGoal(user uuid.UUID, year, quarter int, title string) *models.Goal {
	return &models.Goal{
		UserID:  user,
		Year:    year,
		Quarter: quarter,
		Title:   title,
		Depth:   models.DepthQuarterly,
		InPath:  store.RootPath,
	}
}

func childGoal(parent *models.Goal, depth models.GoalDepth, title string) *models.Goal {
	pid := parent.ID
	return &models.Goal{
		UserID:   parent.UserID,
		Year:     parent.Year,
		Quarter:  parent.Quarter,
		Title:    title,
		Depth:    depth,
		ParentID: &pid,
		InPath:   store.JoinPath(parent.InPath, parent.ID),
	}
}

func adhocGoal(user uuid.UUID, year, week int, title string) *models.Goal {
	wk := week
	return &models.Goal{
		UserID:     user,
		Year:       year,
		Quarter:    period.QuarterOfWeek(year, week),
		Title:      title,
		Depth:      models.DepthAdhoc,
		InPath:     store.RootPath,
		WeekNumber: &wk,
	}
}

func weekState(user, goal uuid.UUID, year, quarter, week int) *models.GoalState {
	return &models.GoalState{
		UserID:     user,
		GoalID:     goal,
		Year:       year,
		Quarter:    quarter,
		WeekNumber: week,
	}
}

func intPtr(v int) *int { return &v }
