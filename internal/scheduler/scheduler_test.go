package scheduler

import (
	"errors"
	"reflect"
	"testing"

	"github.com/julianstephens/hsplan/internal/constants"
	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/utils"
)

// januaryPlan mirrors the plan used when a resource is first scheduled:
// all of January 2025, Monday through Friday.
func januaryPlan(strategy constants.Strategy) models.Plan {
	return models.Plan{
		ID:              "plan-1",
		ResourceID:      "resource-1",
		StartDate:       "2025-01-01",
		EndDate:         "2025-01-31",
		AllowedDaysMask: constants.WeekdaysMask,
		Strategy:        strategy,
		LookaheadDays:   7,
	}
}

func book(maxPerDay int) models.Resource {
	r := models.Resource{ID: "resource-1", Kind: constants.ResourceKindBook, Title: "Algebra"}
	if maxPerDay > 0 {
		r.MaxUnitsPerDay = intPtr(maxPerDay)
	}
	return r
}

func unitsOf(items []models.TaskOccurrence) []int {
	var units []int
	for _, item := range items {
		if item.UnitIndex != nil {
			units = append(units, *item.UnitIndex)
		}
	}
	return units
}

func perDate(items []models.TaskOccurrence) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		counts[item.Date]++
	}
	return counts
}

func TestMaterialize_NoUnitsYieldsEmpty(t *testing.T) {
	s := New()
	preview, err := s.Materialize(Request{
		Plan:      januaryPlan(constants.StrategyPush),
		Resource:  book(0),
		UnitCount: 0,
		From:      "2025-01-01",
		Days:      7,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if len(preview.Items) != 0 {
		t.Errorf("expected empty preview, got %d items", len(preview.Items))
	}
	if len(preview.Warnings) != 1 {
		t.Errorf("expected one misconfiguration warning, got %v", preview.Warnings)
	}
}

func TestMaterialize_TwoUnitsOnFirstAllowedDays(t *testing.T) {
	s := New()
	preview, err := s.Materialize(Request{
		Plan:      januaryPlan(constants.StrategyPush),
		Resource:  book(0),
		UnitCount: 2,
		From:      "2025-01-01",
		Days:      7,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if len(preview.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(preview.Items))
	}

	// 2025-01-01 is a Wednesday, so the first two allowed weekdays are Jan 1 and Jan 2
	wantDates := []string{"2025-01-01", "2025-01-02"}
	for i, item := range preview.Items {
		if item.Date != wantDates[i] {
			t.Errorf("items[%d].Date = %s, want %s", i, item.Date, wantDates[i])
		}
		if item.UnitIndex == nil || *item.UnitIndex != i+1 {
			t.Errorf("items[%d].UnitIndex = %v, want %d", i, item.UnitIndex, i+1)
		}
		if item.MinutesPlanned != nil {
			t.Errorf("items[%d].MinutesPlanned should be unset for a book resource", i)
		}
		if item.PlanID != "plan-1" || item.Locked {
			t.Errorf("items[%d] = %+v, want unlocked occurrence of plan-1", i, item)
		}
	}
}

func TestMaterialize_Clamping(t *testing.T) {
	s := New()
	tests := []struct {
		name string
		from string
		days int
	}{
		{"entirely before plan", "2024-12-01", 31},
		{"ends the day before plan", "2024-12-25", 7},
		{"entirely after plan", "2025-02-01", 30},
		{"starts the day after plan", "2025-02-01", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preview, err := s.Materialize(Request{
				Plan:      januaryPlan(constants.StrategyPush),
				Resource:  book(0),
				UnitCount: 50,
				From:      tt.from,
				Days:      tt.days,
			})
			if err != nil {
				t.Fatalf("Materialize failed: %v", err)
			}
			if len(preview.Items) != 0 {
				t.Errorf("expected empty preview for disjoint window, got %d items", len(preview.Items))
			}
			if preview.From != "" || preview.To != "" {
				t.Errorf("expected empty window bounds, got %s..%s", preview.From, preview.To)
			}
		})
	}
}

func TestMaterialize_ClampsToPlanRange(t *testing.T) {
	s := New()
	preview, err := s.Materialize(Request{
		Plan:      januaryPlan(constants.StrategyPush),
		Resource:  book(0),
		UnitCount: 100,
		From:      "2024-12-20",
		Days:      60,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if preview.From != "2025-01-01" || preview.To != "2025-01-31" {
		t.Errorf("window = %s..%s, want 2025-01-01..2025-01-31", preview.From, preview.To)
	}
	for _, item := range preview.Items {
		if item.Date < "2025-01-01" || item.Date > "2025-01-31" {
			t.Errorf("occurrence %s falls outside the plan range", item.Date)
		}
	}
	// January 2025 has 23 weekdays
	if len(preview.Items) != 23 {
		t.Errorf("expected 23 occurrences, got %d", len(preview.Items))
	}
}

func TestMaterialize_InvalidArguments(t *testing.T) {
	s := New()
	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr error
	}{
		{"zero days", func(r *Request) { r.Days = 0 }, ErrInvalidArgument},
		{"negative days", func(r *Request) { r.Days = -3 }, ErrInvalidArgument},
		{"too many days", func(r *Request) { r.Days = 366 }, ErrInvalidArgument},
		{"malformed from", func(r *Request) { r.From = "01/01/2025" }, ErrInvalidArgument},
		{"inverted plan", func(r *Request) { r.Plan.StartDate, r.Plan.EndDate = "2025-02-01", "2025-01-01" }, ErrPlanRangeInverted},
		{"catchup without as-of", func(r *Request) { r.Plan.Strategy = constants.StrategyCatchUp }, ErrInvalidArgument},
		{"smart with bad as-of", func(r *Request) { r.Plan.Strategy = constants.StrategySmart; r.AsOf = "yesterday" }, ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{
				Plan:      januaryPlan(constants.StrategyPush),
				Resource:  book(0),
				UnitCount: 5,
				From:      "2025-01-01",
				Days:      7,
			}
			tt.mutate(&req)
			_, err := s.Materialize(req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Materialize() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMaterialize_BoundaryDays(t *testing.T) {
	s := New()
	for _, days := range []int{1, 365} {
		_, err := s.Materialize(Request{
			Plan:      januaryPlan(constants.StrategyPush),
			Resource:  book(0),
			UnitCount: 5,
			From:      "2025-01-01",
			Days:      days,
		})
		if err != nil {
			t.Errorf("Materialize(days=%d) returned unexpected error: %v", days, err)
		}
	}
}

func TestMaterialize_WeekendMask(t *testing.T) {
	s := New()
	plan := januaryPlan(constants.StrategyPush)
	plan.AllowedDaysMask = constants.WeekendMask

	preview, err := s.Materialize(Request{
		Plan:     plan,
		Resource: models.Resource{Kind: constants.ResourceKindTime, MinutesPerOccurrence: intPtr(30)},
		From:     "2025-01-01",
		Days:     31,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if len(preview.Items) == 0 {
		t.Fatal("expected weekend occurrences")
	}
	for _, item := range preview.Items {
		wd := mustDate(t, item.Date).Weekday()
		if wd != 0 && wd != 6 {
			t.Errorf("occurrence on %s falls on a %s", item.Date, wd)
		}
		if item.MinutesPlanned == nil || *item.MinutesPlanned != 30 {
			t.Errorf("occurrence on %s has minutes %v, want 30", item.Date, item.MinutesPlanned)
		}
		if item.UnitIndex != nil {
			t.Errorf("occurrence on %s should not carry a unit index", item.Date)
		}
	}
}

func TestMaterialize_PushContiguity(t *testing.T) {
	s := New()
	const n = 12
	preview, err := s.Materialize(Request{
		Plan:      januaryPlan(constants.StrategyPush),
		Resource:  book(3),
		UnitCount: n,
		From:      "2025-01-01",
		Days:      31,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	units := unitsOf(preview.Items)
	if len(units) != n {
		t.Fatalf("expected %d units, got %d", n, len(units))
	}
	for i, u := range units {
		if u != i+1 {
			t.Errorf("units[%d] = %d, want %d", i, u, i+1)
		}
	}
	for date, count := range perDate(preview.Items) {
		if count != 1 {
			t.Errorf("push placed %d occurrences on %s", count, date)
		}
	}
	for i := 1; i < len(preview.Items); i++ {
		if preview.Items[i-1].Date >= preview.Items[i].Date {
			t.Errorf("dates not strictly increasing: %s then %s", preview.Items[i-1].Date, preview.Items[i].Date)
		}
	}
}

func TestMaterialize_ResourceExhaustsBeforeDates(t *testing.T) {
	s := New()
	preview, err := s.Materialize(Request{
		Plan:      januaryPlan(constants.StrategyPush),
		Resource:  book(0),
		UnitCount: 4,
		From:      "2025-01-01",
		Days:      31,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if len(preview.Items) != 4 {
		t.Errorf("expected 4 items, got %d", len(preview.Items))
	}
}

func TestMaterialize_LockedExclusion(t *testing.T) {
	s := New()
	locked := models.TaskOccurrence{
		ID:        "occ-locked",
		PlanID:    "plan-1",
		Date:      "2025-01-03",
		UnitIndex: intPtr(3),
		Locked:    true,
	}
	unlocked := models.TaskOccurrence{
		ID:        "occ-draft",
		PlanID:    "plan-1",
		Date:      "2025-01-02",
		UnitIndex: intPtr(9),
	}

	preview, err := s.Materialize(Request{
		Plan:        januaryPlan(constants.StrategyPush),
		Resource:    book(0),
		UnitCount:   10,
		Occurrences: []models.TaskOccurrence{locked, unlocked},
		From:        "2025-01-01",
		Days:        7,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	var echoed bool
	for _, item := range preview.Items {
		if item.ID == locked.ID {
			echoed = true
			if !reflect.DeepEqual(item, locked) {
				t.Errorf("locked occurrence changed: got %+v, want %+v", item, locked)
			}
			continue
		}
		if item.UnitIndex != nil && *item.UnitIndex == 3 {
			t.Errorf("unit 3 reassigned to %s", item.Date)
		}
		if item.Date == locked.Date {
			t.Errorf("locked date %s received another occurrence", item.Date)
		}
	}
	if !echoed {
		t.Error("locked occurrence was not echoed")
	}

	// Jan 1, 2, 6, 7 remain; the counter resumes after the locked unit
	want := []int{4, 5, 3, 6, 7}
	if got := unitsOf(preview.Items); !reflect.DeepEqual(got, want) {
		t.Errorf("units = %v, want %v", got, want)
	}
}

func TestMaterialize_Idempotent(t *testing.T) {
	s := New()
	plan := januaryPlan(constants.StrategyCatchUp)
	plan.StartDate = "2024-12-02"
	req := Request{
		Plan:      plan,
		Resource:  book(2),
		UnitCount: 40,
		Occurrences: []models.TaskOccurrence{
			{ID: "a", PlanID: "plan-1", Date: "2024-12-02", UnitIndex: intPtr(1), Locked: true},
			{ID: "b", PlanID: "plan-1", Date: "2024-12-03", UnitIndex: intPtr(2), Locked: true},
			{ID: "c", PlanID: "plan-1", Date: "2025-01-08", UnitIndex: intPtr(20), Locked: true},
		},
		Completions: []models.CompletionLog{{ID: "log-1", TaskOccurrenceID: "a"}},
		AsOf:        "2025-01-06",
		From:        "2025-01-06",
		Days:        14,
	}

	first, err := s.Materialize(req)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	second, err := s.Materialize(req)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated materialization differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestMaterialize_UnknownStrategyFallsBackToPush(t *testing.T) {
	s := New()
	plan := januaryPlan("weird")
	preview, err := s.Materialize(Request{
		Plan:      plan,
		Resource:  book(0),
		UnitCount: 3,
		From:      "2025-01-01",
		Days:      7,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if preview.Strategy != constants.StrategyPush {
		t.Errorf("Strategy = %s, want push", preview.Strategy)
	}
	if len(preview.Items) != 3 {
		t.Errorf("expected 3 items, got %d", len(preview.Items))
	}
}

func catchUpPlan(strategy constants.Strategy, lookahead int) models.Plan {
	return models.Plan{
		ID:              "plan-1",
		ResourceID:      "resource-1",
		StartDate:       "2025-01-06", // Monday
		EndDate:         "2025-02-28",
		AllowedDaysMask: constants.WeekdaysMask,
		Strategy:        strategy,
		LookaheadDays:   lookahead,
	}
}

func TestMaterialize_CatchUpFrontLoadsBacklog(t *testing.T) {
	s := New()
	// A week of work (units 1-5) was never done; today is the second Monday.
	// Two allowed days at two units a day absorb four of them.
	preview, err := s.Materialize(Request{
		Plan:      catchUpPlan(constants.StrategyCatchUp, 2),
		Resource:  book(2),
		UnitCount: 20,
		AsOf:      "2025-01-13",
		From:      "2025-01-13",
		Days:      7,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	type dated struct {
		date string
		unit int
	}
	want := []dated{
		{"2025-01-13", 1}, {"2025-01-13", 2},
		{"2025-01-14", 3}, {"2025-01-14", 4},
		{"2025-01-15", 6},
		{"2025-01-16", 7},
		{"2025-01-17", 8},
	}
	if len(preview.Items) != len(want) {
		t.Fatalf("expected %d items, got %d: %v", len(want), len(preview.Items), unitsOf(preview.Items))
	}
	for i, w := range want {
		got := preview.Items[i]
		if got.Date != w.date || got.UnitIndex == nil || *got.UnitIndex != w.unit {
			t.Errorf("items[%d] = %s/%v, want %s/%d", i, got.Date, got.UnitIndex, w.date, w.unit)
		}
	}
	if preview.Outstanding != 1 {
		t.Errorf("Outstanding = %d, want 1", preview.Outstanding)
	}
}

func TestMaterialize_CatchUpCap(t *testing.T) {
	s := New()
	for _, maxPerDay := range []int{1, 2, 3} {
		plan := catchUpPlan(constants.StrategyCatchUp, 30)
		preview, err := s.Materialize(Request{
			Plan:      plan,
			Resource:  book(maxPerDay),
			UnitCount: 200,
			AsOf:      "2025-02-17",
			From:      "2025-02-17",
			Days:      7,
		})
		if err != nil {
			t.Fatalf("Materialize failed: %v", err)
		}
		for date, count := range perDate(preview.Items) {
			if count > maxPerDay {
				t.Errorf("maxUnitsPerDay=%d: %s carries %d occurrences", maxPerDay, date, count)
			}
		}
		for _, item := range preview.Items {
			if item.Date > plan.EndDate {
				t.Errorf("maxUnitsPerDay=%d: occurrence on %s after plan end", maxPerDay, item.Date)
			}
		}
		if preview.Outstanding == 0 {
			t.Errorf("maxUnitsPerDay=%d: expected backlog to remain outstanding", maxPerDay)
		}
	}
}

func TestMaterialize_CatchUpSkipsCompletedUnits(t *testing.T) {
	s := New()
	var occurrences []models.TaskOccurrence
	var completions []models.CompletionLog
	// Units 1-3 were persisted on their ideal dates and completed.
	for i, date := range []string{"2025-01-06", "2025-01-07", "2025-01-08"} {
		id := "occ-" + date
		occurrences = append(occurrences, models.TaskOccurrence{ID: id, PlanID: "plan-1", Date: date, UnitIndex: intPtr(i + 1)})
		completions = append(completions, models.CompletionLog{ID: "log-" + date, TaskOccurrenceID: id})
	}

	preview, err := s.Materialize(Request{
		Plan:        catchUpPlan(constants.StrategyCatchUp, 7),
		Resource:    book(2),
		UnitCount:   20,
		Occurrences: occurrences,
		Completions: completions,
		AsOf:        "2025-01-13",
		From:        "2025-01-13",
		Days:        2,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	// Units 4 and 5 fill the first day; regular pacing resumes with unit 6.
	want := []int{4, 5, 6}
	if got := unitsOf(preview.Items); !reflect.DeepEqual(got, want) {
		t.Errorf("units = %v, want %v", got, want)
	}
	if preview.Outstanding != 0 {
		t.Errorf("Outstanding = %d, want 0", preview.Outstanding)
	}
}

func TestMaterialize_CatchUpOnPaceMatchesIdeal(t *testing.T) {
	s := New()
	// Nothing is due before the window, so catch-up degenerates to ideal pacing.
	preview, err := s.Materialize(Request{
		Plan:      catchUpPlan(constants.StrategyCatchUp, 7),
		Resource:  book(3),
		UnitCount: 20,
		AsOf:      "2025-01-06",
		From:      "2025-01-06",
		Days:      7,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	want := []int{1, 2, 3, 4, 5}
	if got := unitsOf(preview.Items); !reflect.DeepEqual(got, want) {
		t.Errorf("units = %v, want %v", got, want)
	}
}

func TestMaterialize_CatchUpFutureWindowStartsAtIdealUnit(t *testing.T) {
	s := New()
	// Viewing the third week while today is the first Monday: the first two
	// weeks are expected to happen on time, so nothing is backlog.
	preview, err := s.Materialize(Request{
		Plan:      catchUpPlan(constants.StrategyCatchUp, 7),
		Resource:  book(2),
		UnitCount: 30,
		AsOf:      "2025-01-06",
		From:      "2025-01-20",
		Days:      5,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	want := []int{11, 12, 13, 14, 15}
	if got := unitsOf(preview.Items); !reflect.DeepEqual(got, want) {
		t.Errorf("units = %v, want %v", got, want)
	}
}

func TestMaterialize_CatchUpTimeResource(t *testing.T) {
	s := New()
	plan := models.Plan{
		ID:              "plan-time",
		StartDate:       "2025-01-01",
		EndDate:         "2025-03-31",
		AllowedDaysMask: constants.AllDaysMask,
		Strategy:        constants.StrategyCatchUp,
		LookaheadDays:   7,
	}
	preview, err := s.Materialize(Request{
		Plan:     plan,
		Resource: models.Resource{Kind: constants.ResourceKindTime, MinutesPerOccurrence: intPtr(30), MaxUnitsPerDay: intPtr(2)},
		AsOf:     "2025-01-04",
		From:     "2025-01-04",
		Days:     3,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	counts := perDate(preview.Items)
	for _, date := range []string{"2025-01-04", "2025-01-05", "2025-01-06"} {
		if counts[date] != 2 {
			t.Errorf("%s carries %d occurrences, want 2", date, counts[date])
		}
	}
	for i, item := range preview.Items {
		if want := i % 2; item.Slot != want {
			t.Errorf("items[%d] on %s has slot %d, want %d", i, item.Date, item.Slot, want)
		}
	}
	if preview.Outstanding != 0 {
		t.Errorf("Outstanding = %d, want 0", preview.Outstanding)
	}

	// With one session a day there is no spare capacity to recover missed time.
	single, err := s.Materialize(Request{
		Plan:     plan,
		Resource: models.Resource{Kind: constants.ResourceKindTime, MinutesPerOccurrence: intPtr(30)},
		AsOf:     "2025-01-04",
		From:     "2025-01-04",
		Days:     3,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if len(single.Items) != 3 || single.Outstanding != 3 {
		t.Errorf("got %d items and %d outstanding, want 3 and 3", len(single.Items), single.Outstanding)
	}
}

func TestMaterialize_SmartWeightsByCompletionRate(t *testing.T) {
	s := New()

	// Nothing done at all: smart absorbs a single backlog unit a day.
	slow, err := s.Materialize(Request{
		Plan:      catchUpPlan(constants.StrategySmart, 7),
		Resource:  book(3),
		UnitCount: 20,
		AsOf:      "2025-01-13",
		From:      "2025-01-13",
		Days:      5,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if got, want := unitsOf(slow.Items), []int{1, 6, 2, 7, 3, 8, 4, 9, 5, 10}; !reflect.DeepEqual(got, want) {
		t.Errorf("slow learner units = %v, want %v", got, want)
	}
	if slow.Outstanding != 0 {
		t.Errorf("slow learner Outstanding = %d, want 0", slow.Outstanding)
	}

	// Catchup on the same history uses the whole daily cap for backlog.
	plain, err := s.Materialize(Request{
		Plan:      catchUpPlan(constants.StrategyCatchUp, 7),
		Resource:  book(3),
		UnitCount: 20,
		AsOf:      "2025-01-13",
		From:      "2025-01-13",
		Days:      5,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if got, want := unitsOf(plain.Items), []int{1, 2, 3, 4, 5, 6, 7, 8, 9}; !reflect.DeepEqual(got, want) {
		t.Errorf("catchup units = %v, want %v", got, want)
	}

	// Three of five due units done: two backlog units a day.
	var occurrences []models.TaskOccurrence
	var completions []models.CompletionLog
	for i, date := range []string{"2025-01-06", "2025-01-07", "2025-01-08"} {
		id := "occ-" + date
		occurrences = append(occurrences, models.TaskOccurrence{ID: id, PlanID: "plan-1", Date: date, UnitIndex: intPtr(i + 1)})
		completions = append(completions, models.CompletionLog{ID: "log-" + date, TaskOccurrenceID: id})
	}
	steady, err := s.Materialize(Request{
		Plan:        catchUpPlan(constants.StrategySmart, 7),
		Resource:    book(3),
		UnitCount:   20,
		Occurrences: occurrences,
		Completions: completions,
		AsOf:        "2025-01-13",
		From:        "2025-01-13",
		Days:        5,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if got, want := unitsOf(steady.Items), []int{4, 5, 6, 7, 8, 9, 10}; !reflect.DeepEqual(got, want) {
		t.Errorf("steady learner units = %v, want %v", got, want)
	}
	if got := perDate(steady.Items)["2025-01-13"]; got != 3 {
		t.Errorf("2025-01-13 carries %d occurrences, want 3", got)
	}
}

func TestMaterialize_CatchUpDefaultCapRecoversBacklog(t *testing.T) {
	s := New()
	// Nothing done in the first week; one unit a day goes to backlog first.
	preview, err := s.Materialize(Request{
		Plan:      januaryPlan(constants.StrategyCatchUp),
		Resource:  book(0),
		UnitCount: 30,
		AsOf:      "2025-01-08",
		From:      "2025-01-08",
		Days:      7,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	wantDates := []string{"2025-01-08", "2025-01-09", "2025-01-10", "2025-01-13", "2025-01-14"}
	if got, want := unitsOf(preview.Items), []int{1, 2, 3, 4, 5}; !reflect.DeepEqual(got, want) {
		t.Fatalf("units = %v, want %v", got, want)
	}
	for i, item := range preview.Items {
		if item.Date != wantDates[i] {
			t.Errorf("unit %d on %s, want %s", *item.UnitIndex, item.Date, wantDates[i])
		}
	}
	if preview.Outstanding != 0 {
		t.Errorf("Outstanding = %d, want 0", preview.Outstanding)
	}
}

func TestMaterialize_MissedLockedWorkReturnsAsBacklog(t *testing.T) {
	s := New()
	// Units 1-5 were locked onto the first week but only unit 1 was done.
	var occurrences []models.TaskOccurrence
	for i, date := range []string{"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-06", "2025-01-07"} {
		occurrences = append(occurrences, models.TaskOccurrence{
			ID: "occ-" + date, PlanID: "plan-1", Date: date, UnitIndex: intPtr(i + 1), Locked: true,
		})
	}
	preview, err := s.Materialize(Request{
		Plan:        januaryPlan(constants.StrategyCatchUp),
		Resource:    book(0),
		UnitCount:   30,
		Occurrences: occurrences,
		Completions: []models.CompletionLog{{ID: "log-1", TaskOccurrenceID: "occ-2025-01-01"}},
		AsOf:        "2025-01-08",
		From:        "2025-01-08",
		Days:        7,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if got, want := unitsOf(preview.Items), []int{2, 3, 4, 5, 6}; !reflect.DeepEqual(got, want) {
		t.Errorf("units = %v, want %v", got, want)
	}
}

func TestComputeBacklog_LockedWork(t *testing.T) {
	ideal, err := Enumerate(mustDate(t, "2025-01-01"), mustDate(t, "2025-01-31"), constants.WeekdaysMask)
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	locked := func(unit int, day string) models.TaskOccurrence {
		return models.TaskOccurrence{ID: "occ-" + day, PlanID: "plan-1", Date: day, UnitIndex: intPtr(unit), Locked: true}
	}
	firstDone := []models.CompletionLog{{ID: "log-1", TaskOccurrenceID: "occ-2025-01-01"}}

	tests := []struct {
		name        string
		occurrences []models.TaskOccurrence
		wantDue     int
		wantDone    int
		wantItems   []int
	}{
		{
			name: "missed locked work is due and overdue",
			occurrences: []models.TaskOccurrence{
				locked(1, "2025-01-01"), locked(2, "2025-01-02"), locked(3, "2025-01-03"),
				locked(4, "2025-01-06"), locked(5, "2025-01-07"),
			},
			wantDue:   5,
			wantDone:  1,
			wantItems: []int{2, 3, 4, 5},
		},
		{
			name:        "work locked for a later date is held",
			occurrences: []models.TaskOccurrence{locked(1, "2025-01-01"), locked(2, "2025-01-09")},
			wantDue:     4,
			wantDone:    1,
			wantItems:   []int{3, 4, 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResolver(book(0), 30, nil)
			if err != nil {
				t.Fatalf("NewResolver failed: %v", err)
			}
			asOf := mustDate(t, "2025-01-08")
			b := computeBacklog(ideal, asOf, asOf, r, tally(tt.occurrences, firstDone))
			if b.due != tt.wantDue || b.done != tt.wantDone {
				t.Errorf("due/done = %d/%d, want %d/%d", b.due, b.done, tt.wantDue, tt.wantDone)
			}
			var items []int
			for _, w := range b.items {
				items = append(items, w.UnitIndex)
			}
			if !reflect.DeepEqual(items, tt.wantItems) {
				t.Errorf("backlog = %v, want %v", items, tt.wantItems)
			}
		})
	}
}

func TestComputeBacklog_TimeSessions(t *testing.T) {
	ideal, err := Enumerate(mustDate(t, "2025-01-01"), mustDate(t, "2025-01-31"), constants.WeekdaysMask)
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	res := models.Resource{Kind: constants.ResourceKindTime, MinutesPerOccurrence: intPtr(30), MaxUnitsPerDay: intPtr(2)}
	session := func(id, day string) models.TaskOccurrence {
		return models.TaskOccurrence{ID: id, PlanID: "plan-1", Date: day, MinutesPlanned: intPtr(30), Locked: true}
	}

	// Jan 1-3 were due; Jan 2 was done and Jan 6 already carries one extra session.
	occurrences := []models.TaskOccurrence{
		session("a", "2025-01-02"),
		session("b", "2025-01-06"),
		session("c", "2025-01-06"),
	}
	r, err := NewResolver(res, 0, nil)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	asOf := mustDate(t, "2025-01-06")
	b := computeBacklog(ideal, asOf, asOf, r, tally(occurrences, []models.CompletionLog{{ID: "log-a", TaskOccurrenceID: "a"}}))
	if b.due != 3 || b.done != 1 {
		t.Errorf("due/done = %d/%d, want 3/1", b.due, b.done)
	}
	if len(b.items) != 1 {
		t.Errorf("backlog has %d sessions, want 1", len(b.items))
	}
}

func TestMaterialize_CatchUpFinishesBacklogWhenRegularWorkRunsOut(t *testing.T) {
	s := New()
	// Every unit is already overdue, so each day takes backlog only.
	preview, err := s.Materialize(Request{
		Plan:      catchUpPlan(constants.StrategyCatchUp, 5),
		Resource:  book(1),
		UnitCount: 5,
		AsOf:      "2025-01-13",
		From:      "2025-01-13",
		Days:      7,
	})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if got, want := unitsOf(preview.Items), []int{1, 2, 3, 4, 5}; !reflect.DeepEqual(got, want) {
		t.Errorf("units = %v, want %v", got, want)
	}
	for date, count := range perDate(preview.Items) {
		if count != 1 {
			t.Errorf("%s carries %d occurrences, want 1", date, count)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	tests := map[constants.Strategy]constants.Strategy{
		"push":    constants.StrategyPush,
		"CatchUp": constants.StrategyCatchUp,
		" smart ": constants.StrategySmart,
		"":        constants.StrategyPush,
		"later":   constants.StrategyPush,
	}
	for in, want := range tests {
		if got := ParseStrategy(in); got != want {
			t.Errorf("ParseStrategy(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestMaterialize_DatesAreFormatted(t *testing.T) {
	s := New()
	preview, _ := s.Materialize(Request{
		Plan:      januaryPlan(constants.StrategyPush),
		Resource:  book(0),
		UnitCount: 1,
		From:      "2025-01-01",
		Days:      1,
	})
	if len(preview.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(preview.Items))
	}
	if _, err := utils.ParseDate(preview.Items[0].Date); err != nil {
		t.Errorf("occurrence date %q is not YYYY-MM-DD: %v", preview.Items[0].Date, err)
	}
}
