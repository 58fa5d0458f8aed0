package scheduler

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/utils"
)

// pacer holds the inputs shared by every pacing strategy.
// candidates are the allowed dates of the window minus dates held by locked occurrences.
type pacer struct {
	planID     string
	candidates []time.Time
	resolver   *Resolver
	maxPerDay  int
	lookahead  int
}

// push assigns exactly one work item to each candidate date, in order,
// until either the dates or the work run out.
func (p *pacer) push() []models.TaskOccurrence {
	var out []models.TaskOccurrence
	for _, d := range p.candidates {
		item, ok := p.resolver.Next()
		if !ok {
			break
		}
		out = append(out, item.occurrence(p.planID, d))
	}
	return out
}

// catchUp front-loads backlog onto the first lookahead candidate dates before
// resuming one regular item per date, never exceeding maxPerDay on a date.
//
// For unit-paced resources backlog is placed first and takes up to backlogCap
// slots; the regular item only gets a date with capacity left, so the regular
// counter does not advance on dates backlog fills. Time-paced sessions are
// interchangeable, so each date keeps its own session and backlog only uses
// the spare capacity.
//
// weight scales backlogCap (1 for catchup, the completion rate for smart).
// It returns the occurrences and the number of backlog items left outstanding.
func (p *pacer) catchUp(b backlog, weight float64) ([]models.TaskOccurrence, int) {
	unitPaced := p.resolver.UnitPaced()
	if unitPaced {
		p.resolver.seedAt(b.resume)
	}

	limit := p.backlogCap(weight)
	pending := b.items
	var out []models.TaskOccurrence
	for i, d := range p.candidates {
		var day []WorkItem
		if !unitPaced {
			if item, ok := p.resolver.Next(); ok {
				day = append(day, item)
			}
		}
		if i < p.lookahead && len(pending) > 0 {
			n := min(limit, p.maxPerDay-len(day), len(pending))
			day = append(day, pending[:n]...)
			pending = pending[n:]
		}
		if unitPaced && len(day) < p.maxPerDay {
			if item, ok := p.resolver.Next(); ok {
				day = append(day, item)
			}
		}
		for slot, w := range day {
			occ := w.occurrence(p.planID, d)
			if occ.MinutesPlanned != nil {
				occ.Slot = slot
			}
			out = append(out, occ)
		}
	}
	return out, len(pending)
}

// backlogCap is the number of backlog items a single date may take. It is at
// least one so a plan that has fallen behind can always recover.
func (p *pacer) backlogCap(weight float64) int {
	n := int(math.Round(float64(p.maxPerDay) * weight))
	return max(1, min(n, p.maxPerDay))
}

// backlog is the catch-up state derived from ideal pacing and completion evidence.
type backlog struct {
	items  []WorkItem // due on or before the cutoff with no completion, ascending
	due    int        // ideal items dated before as-of
	done   int        // due items with completion evidence
	resume int        // first unit index whose ideal date is inside or after the window
}

// completionRate is the share of due work that has been completed.
// A plan with nothing due yet counts as fully on pace.
func (b backlog) completionRate() float64 {
	if b.due == 0 {
		return 1
	}
	return float64(b.done) / float64(b.due)
}

// progress is the completion and reservation evidence of a plan's persisted occurrences.
type progress struct {
	units    map[int]bool   // completed unit indices
	reserved map[int]string // latest date an uncompleted unit is locked to
	sessions []session      // time-paced occurrences that are locked or completed
}

type session struct {
	date      string
	completed bool
}

func tally(occurrences []models.TaskOccurrence, completions []models.CompletionLog) progress {
	p := progress{
		units:    make(map[int]bool),
		reserved: make(map[int]string),
	}
	completed := make(map[string]bool, len(completions))
	for _, c := range completions {
		completed[c.TaskOccurrenceID] = true
	}
	for _, occ := range occurrences {
		if occ.ID == "" {
			continue
		}
		done := completed[occ.ID]
		if occ.UnitIndex == nil {
			if done || occ.Locked {
				p.sessions = append(p.sessions, session{date: occ.Date, completed: done})
			}
			continue
		}
		unit := *occ.UnitIndex
		switch {
		case done:
			p.units[unit] = true
		case occ.Locked && occ.Date > p.reserved[unit]:
			p.reserved[unit] = occ.Date
		}
	}
	return p
}

func (p progress) unitList() []int {
	units := make([]int, 0, len(p.units))
	for u := range p.units {
		units = append(units, u)
	}
	sort.Ints(units)
	return units
}

// computeBacklog replays ideal pacing (one item per allowed plan date from the
// plan start) and collects the items that should have been completed by the
// cutoff but were not. The cutoff is the day before the earlier of as-of and
// the window start: work dated today is not overdue yet, and work dated
// inside the window is never counted twice.
//
// A locked occurrence only holds its work while its date is still ahead. Once
// the date passes without a completion the work is due again and, past the
// cutoff, backlog.
func computeBacklog(ideal []time.Time, windowStart, asOf time.Time, r *Resolver, done progress) backlog {
	cutoff := utils.AddDays(utils.MinDate(asOf, windowStart), -1)
	cutoffKey := utils.FormatDate(cutoff)
	asOfKey := utils.FormatDate(asOf)
	b := backlog{resume: 1}

	if r.UnitPaced() {
		for i, d := range ideal {
			if !d.Before(windowStart) {
				break
			}
			b.resume = i + 2
		}
		for i, d := range ideal {
			unit := i + 1
			if unit > r.Total() || !d.Before(asOf) {
				break
			}
			held, isHeld := done.reserved[unit]
			switch {
			case done.units[unit]:
				b.due++
				b.done++
			case isHeld && held >= asOfKey:
				// still scheduled for today or later
			default:
				b.due++
				if !d.After(cutoff) && !(isHeld && held > cutoffKey) {
					b.items = append(b.items, r.Unit(unit))
				}
			}
		}
		return b
	}

	// Time-paced work has no identity, so evidence is counted rather than
	// matched: every completed session on or before the cutoff covers one
	// overdue date, and every session beyond the first on a later date is
	// backlog that has already been scheduled.
	overdue := 0
	for _, d := range ideal {
		if !d.Before(asOf) {
			break
		}
		b.due++
		if !d.After(cutoff) {
			overdue++
		}
	}
	perDate := make(map[string]int)
	covered := 0
	for _, s := range done.sessions {
		if s.completed && s.date < asOfKey {
			b.done++
		}
		if s.date <= cutoffKey {
			if s.completed {
				covered++
			}
			continue
		}
		perDate[s.date]++
		if perDate[s.date] > 1 {
			covered++
		}
	}
	b.done = min(b.done, b.due)
	for n := overdue - covered; n > 0; n-- {
		b.items = append(b.items, r.Minutes())
	}
	return b
}
