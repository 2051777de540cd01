package carryover

import (
	"fmt"

	"github.com/conradkoh/goals-sub001/internal/period"
)

// ListAvailableWeeks lists labeled move targets around the given week:
// the previous two weeks, the current one, and the next.
func (s *Service) ListAvailableWeeks(current Period) ([]period.AvailableWeek, error) {
	if err := validatePeriod(current); err != nil {
		return nil, err
	}
	w := period.Week{Year: current.Year, Quarter: current.Quarter, WeekNumber: current.WeekNumber}
	if got := period.QuarterOfWeek(w.Year, w.WeekNumber); got != w.Quarter {
		return nil, fmt.Errorf("%w: week %d of %d is in Q%d, not Q%d",
			ErrInvalidArgument, w.WeekNumber, w.Year, got, w.Quarter)
	}
	return period.AvailableWeeks(w), nil
}
