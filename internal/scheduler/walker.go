package scheduler

import (
	"fmt"
	"time"

	"github.com/julianstephens/hsplan/internal/constants"
	"github.com/julianstephens/hsplan/internal/utils"
)

// Enumerate returns every date in [from, to] whose weekday is permitted by mask,
// in ascending order. Bounds are inclusive and compared as calendar dates.
func Enumerate(from, to time.Time, mask int) ([]time.Time, error) {
	from = utils.TruncateToDate(from)
	to = utils.TruncateToDate(to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, utils.FormatDate(from), utils.FormatDate(to))
	}

	dates := []time.Time{}
	if mask&constants.AllDaysMask == 0 {
		return dates, nil
	}
	for d := from; !d.After(to); d = utils.AddDays(d, 1) {
		if utils.MaskAllows(mask, d) {
			dates = append(dates, d)
		}
	}
	return dates, nil
}
