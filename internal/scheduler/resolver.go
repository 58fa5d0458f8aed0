package scheduler

import (
	"fmt"
	"time"

	"github.com/julianstephens/hsplan/internal/constants"
	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/utils"
)

// WorkItem is the work attached to a single occurrence: a unit index for
// book/custom resources or a minute count for time resources.
type WorkItem struct {
	UnitIndex int
	Minutes   int
}

func (w WorkItem) occurrence(planID string, date time.Time) models.TaskOccurrence {
	occ := models.TaskOccurrence{
		PlanID: planID,
		Date:   utils.FormatDate(date),
	}
	if w.UnitIndex > 0 {
		idx := w.UnitIndex
		occ.UnitIndex = &idx
	} else {
		minutes := w.Minutes
		occ.MinutesPlanned = &minutes
	}
	return occ
}

// Resolver turns a resource into a stream of work items.
//
// Book and custom resources draw unit indices from a counter seeded just past
// the highest consumed index and stop once the counter passes the catalog size.
// Time resources yield the same minute count forever.
type Resolver struct {
	kind    constants.ResourceKind
	total   int
	minutes int
	next    int
	skip    map[int]bool
}

// NewResolver builds a resolver for res with a catalog of unitCount units.
// consumed lists unit indices that must never be yielded again.
//
// A misconfigured resource (time without minutes, book/custom without units,
// unknown kind) returns an inert resolver together with an error wrapping
// ErrResourceMisconfigured; callers may treat it as "nothing to schedule".
func NewResolver(res models.Resource, unitCount int, consumed []int) (*Resolver, error) {
	r := &Resolver{
		kind: res.Kind,
		skip: make(map[int]bool, len(consumed)),
		next: 1,
	}
	for _, idx := range consumed {
		r.skip[idx] = true
		if idx >= r.next {
			r.next = idx + 1
		}
	}

	switch res.Kind {
	case constants.ResourceKindBook, constants.ResourceKindCustom:
		if unitCount <= 0 {
			return r, fmt.Errorf("%w: %s resource %q has no units registered", ErrResourceMisconfigured, res.Kind, res.ID)
		}
		r.total = unitCount
	case constants.ResourceKindTime:
		if res.MinutesPerOccurrence == nil || *res.MinutesPerOccurrence <= 0 {
			return r, fmt.Errorf("%w: time resource %q has no minutes per occurrence", ErrResourceMisconfigured, res.ID)
		}
		r.minutes = *res.MinutesPerOccurrence
	default:
		return r, fmt.Errorf("%w: unknown resource kind %q", ErrResourceMisconfigured, res.Kind)
	}
	return r, nil
}

// Next returns the next work item, or false once the resolver is exhausted.
func (r *Resolver) Next() (WorkItem, bool) {
	switch r.kind {
	case constants.ResourceKindBook, constants.ResourceKindCustom:
		for r.next <= r.total && r.skip[r.next] {
			r.next++
		}
		if r.next > r.total {
			return WorkItem{}, false
		}
		item := WorkItem{UnitIndex: r.next}
		r.next++
		return item, true
	case constants.ResourceKindTime:
		if r.minutes <= 0 {
			return WorkItem{}, false
		}
		return WorkItem{Minutes: r.minutes}, true
	default:
		return WorkItem{}, false
	}
}

// Exhausted reports whether Next would return false.
func (r *Resolver) Exhausted() bool {
	switch r.kind {
	case constants.ResourceKindBook, constants.ResourceKindCustom:
		for i := r.next; i <= r.total; i++ {
			if !r.skip[i] {
				return false
			}
		}
		return true
	case constants.ResourceKindTime:
		return r.minutes <= 0
	default:
		return true
	}
}

// UnitPaced reports whether work is drawn from a unit catalog.
func (r *Resolver) UnitPaced() bool {
	return r.kind == constants.ResourceKindBook || r.kind == constants.ResourceKindCustom
}

// Total returns the catalog size (zero for time resources).
func (r *Resolver) Total() int {
	return r.total
}

// Unit returns the work item for a specific catalog index.
func (r *Resolver) Unit(index int) WorkItem {
	return WorkItem{UnitIndex: index}
}

// Minutes returns the work item attached to a time-paced occurrence.
func (r *Resolver) Minutes() WorkItem {
	return WorkItem{Minutes: r.minutes}
}

// seedAt restarts the unit counter at index. Consumed indices stay excluded.
func (r *Resolver) seedAt(index int) {
	if index < 1 {
		index = 1
	}
	r.next = index
}
