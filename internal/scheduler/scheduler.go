package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/hsplan/internal/constants"
	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/utils"
)

var (
	// ErrInvalidArgument is returned for out-of-range or malformed request parameters
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidRange is returned by Enumerate when from is after to
	ErrInvalidRange = errors.New("invalid date range")
	// ErrPlanRangeInverted is returned when a plan starts after it ends
	ErrPlanRangeInverted = errors.New("plan start date is after end date")
	// ErrResourceMisconfigured marks a resource that cannot produce work.
	// It is never returned by Materialize; the preview carries it as a warning instead.
	ErrResourceMisconfigured = errors.New("resource misconfigured")
)

// Request carries the snapshots a single materialization reads.
// Nothing in it is mutated.
type Request struct {
	Plan     models.Plan
	Resource models.Resource
	// UnitCount is the size of the resource's unit catalog (book/custom only).
	UnitCount int
	// Occurrences are the persisted occurrences of the plan. Locked ones are
	// echoed when inside the window and their dates and unit indices are never
	// reassigned.
	Occurrences []models.TaskOccurrence
	// Completions is the completion evidence used by catchup and smart.
	Completions []models.CompletionLog
	// AsOf is "today" (YYYY-MM-DD), required for catchup and smart.
	AsOf string
	From string // YYYY-MM-DD
	Days int
}

type Scheduler struct{}

func New() *Scheduler {
	return &Scheduler{}
}

// ParseStrategy normalizes a strategy name. Unknown or empty names fall back to push.
func ParseStrategy(s constants.Strategy) constants.Strategy {
	switch constants.Strategy(strings.ToLower(strings.TrimSpace(string(s)))) {
	case constants.StrategyCatchUp:
		return constants.StrategyCatchUp
	case constants.StrategySmart:
		return constants.StrategySmart
	default:
		return constants.StrategyPush
	}
}

// Materialize computes the occurrences of req.Plan inside [From, From+Days-1],
// clamped to the plan's own range. It is a pure function of req: identical
// requests always produce identical previews.
func (s *Scheduler) Materialize(req Request) (models.SchedulePreview, error) {
	strategy := ParseStrategy(req.Plan.Strategy)
	preview := models.SchedulePreview{
		PlanID:   req.Plan.ID,
		Strategy: strategy,
		Items:    []models.TaskOccurrence{},
	}

	if req.Days < constants.MinPreviewDays || req.Days > constants.MaxPreviewDays {
		return preview, fmt.Errorf("%w: days must be between %d and %d, got %d",
			ErrInvalidArgument, constants.MinPreviewDays, constants.MaxPreviewDays, req.Days)
	}
	from, err := utils.ParseDate(req.From)
	if err != nil {
		return preview, fmt.Errorf("%w: from: %v", ErrInvalidArgument, err)
	}
	planStart, err := utils.ParseDate(req.Plan.StartDate)
	if err != nil {
		return preview, fmt.Errorf("%w: plan start: %v", ErrInvalidArgument, err)
	}
	planEnd, err := utils.ParseDate(req.Plan.EndDate)
	if err != nil {
		return preview, fmt.Errorf("%w: plan end: %v", ErrInvalidArgument, err)
	}
	if planStart.After(planEnd) {
		return preview, fmt.Errorf("%w: %s > %s", ErrPlanRangeInverted, req.Plan.StartDate, req.Plan.EndDate)
	}

	var asOf time.Time
	if strategy != constants.StrategyPush {
		if req.AsOf == "" {
			return preview, fmt.Errorf("%w: as-of date is required for the %s strategy", ErrInvalidArgument, strategy)
		}
		if asOf, err = utils.ParseDate(req.AsOf); err != nil {
			return preview, fmt.Errorf("%w: as-of: %v", ErrInvalidArgument, err)
		}
	}

	to := utils.AddDays(from, req.Days-1)
	windowStart := utils.MaxDate(from, planStart)
	windowEnd := utils.MinDate(to, planEnd)
	if windowStart.After(windowEnd) {
		return preview, nil
	}
	preview.From = utils.FormatDate(windowStart)
	preview.To = utils.FormatDate(windowEnd)

	dates, err := Enumerate(windowStart, windowEnd, req.Plan.AllowedDaysMask)
	if err != nil {
		return preview, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	locked := lockedExclusions(req.Occurrences, preview.From, preview.To)
	candidates := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if !locked.dates[utils.FormatDate(d)] {
			candidates = append(candidates, d)
		}
	}

	done := tally(req.Occurrences, req.Completions)
	consumed := locked.units
	if strategy != constants.StrategyPush {
		consumed = append(append([]int{}, consumed...), done.unitList()...)
	}

	var items []models.TaskOccurrence
	resolver, err := NewResolver(req.Resource, req.UnitCount, consumed)
	switch {
	case errors.Is(err, ErrResourceMisconfigured):
		preview.Warnings = append(preview.Warnings, err.Error())
	case err != nil:
		return preview, err
	default:
		lookahead := req.Plan.LookaheadDays
		if lookahead < 1 {
			lookahead = constants.DefaultLookaheadDays
		}
		p := &pacer{
			planID:     req.Plan.ID,
			candidates: candidates,
			resolver:   resolver,
			maxPerDay:  req.Resource.MaxPerDay(),
			lookahead:  lookahead,
		}

		switch strategy {
		case constants.StrategyPush:
			items = p.push()
		case constants.StrategyCatchUp, constants.StrategySmart:
			ideal, err := Enumerate(planStart, planEnd, req.Plan.AllowedDaysMask)
			if err != nil {
				return preview, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
			}
			b := computeBacklog(ideal, windowStart, asOf, resolver, done)
			weight := 1.0
			if strategy == constants.StrategySmart {
				weight = b.completionRate()
			}
			items, preview.Outstanding = p.catchUp(b, weight)
		}
	}

	preview.Items = append(preview.Items, locked.echo...)
	preview.Items = append(preview.Items, items...)
	sort.SliceStable(preview.Items, func(i, j int) bool {
		a, b := preview.Items[i], preview.Items[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if unitKey(a) != unitKey(b) {
			return unitKey(a) < unitKey(b)
		}
		return a.Slot < b.Slot
	})

	return preview, nil
}

// exclusions is the locked-occurrence set handed to the pacing engine.
type exclusions struct {
	echo  []models.TaskOccurrence // locked occurrences inside the window, returned unchanged
	dates map[string]bool         // every date holding a locked occurrence
	units []int                   // every unit index held by a locked occurrence
}

func lockedExclusions(occurrences []models.TaskOccurrence, from, to string) exclusions {
	ex := exclusions{dates: make(map[string]bool)}
	for _, occ := range occurrences {
		if !occ.Locked {
			continue
		}
		ex.dates[occ.Date] = true
		if occ.UnitIndex != nil {
			ex.units = append(ex.units, *occ.UnitIndex)
		}
		if occ.Date >= from && occ.Date <= to {
			ex.echo = append(ex.echo, occ)
		}
	}
	sort.Ints(ex.units)
	return ex
}

func unitKey(occ models.TaskOccurrence) int {
	if occ.UnitIndex == nil {
		return 0
	}
	return *occ.UnitIndex
}
