// Package carryover is the migration engine: it decides what moves across
// day/week/quarter boundaries, creates or reuses target-period goals and
// states, keeps the carry-over lineage chain so repeated runs are idempotent,
// and offers a dry-run preview before committing. Each invocation runs as one
// transaction; only the quarter migrator spans several (one per quarterly
// goal) in exchange for partial-failure isolation.
package carryover

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/conradkoh/goals-sub001/internal/period"
	"github.com/conradkoh/goals-sub001/internal/store"
)

type Service struct {
	store *store.Store
	log   *zap.Logger
}

func New(st *store.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, log: log}
}

func validatePeriod(p Period) error {
	if err := period.ValidateWeek(p.Year, p.Quarter, p.WeekNumber); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}

func validateDay(day int) error {
	if err := period.ValidateDay(day); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}

func validateDayPeriod(p DayPeriod) error {
	if err := period.ValidateWeek(p.Year, p.Quarter, p.WeekNumber); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return validateDay(p.DayOfWeek)
}

func validateQuarter(q QuarterPeriod) error {
	if q.Year < 1 || q.Quarter < 1 || q.Quarter > 4 {
		return fmt.Errorf("%w: invalid quarter %d-Q%d", ErrInvalidArgument, q.Year, q.Quarter)
	}
	return nil
}
