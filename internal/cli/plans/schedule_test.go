package plans

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/hsplan/internal/cli/clitest"
	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/scheduler"
	"github.com/julianstephens/hsplan/internal/storage"
)

func window(from string, days int) Window {
	return Window{From: from, Days: days, AsOf: from, Timezone: "UTC"}
}

func decodePreview(t *testing.T, raw string) models.SchedulePreview {
	t.Helper()
	var preview models.SchedulePreview
	if err := json.Unmarshal([]byte(raw), &preview); err != nil {
		t.Fatalf("schedule --json produced invalid JSON: %v\n%s", err, raw)
	}
	return preview
}

func units(items []models.TaskOccurrence) []int {
	out := make([]int, 0, len(items))
	for _, item := range items {
		if item.UnitIndex != nil {
			out = append(out, *item.UnitIndex)
		}
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestScheduleCmd_JSON(t *testing.T) {
	ctx, out := clitest.NewContext(t)
	f := clitest.Seed(t, ctx, 10)

	cmd := &ScheduleCmd{PlanID: f.Plan.ID, Window: window("2025-01-01", 7), JSON: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	preview := decodePreview(t, out.String())
	if preview.From != "2025-01-01" || preview.To != "2025-01-07" {
		t.Errorf("window = %s..%s, want 2025-01-01..2025-01-07", preview.From, preview.To)
	}
	if got, want := units(preview.Items), []int{1, 2, 3, 4, 5}; !equalInts(got, want) {
		t.Errorf("units = %v, want %v", got, want)
	}
	if preview.Items[3].Date != "2025-01-06" {
		t.Errorf("fourth item on %s, want the Monday 2025-01-06", preview.Items[3].Date)
	}

	persisted, _ := ctx.Store.GetOccurrencesForPlan(f.Plan.ID)
	if len(persisted) != 0 {
		t.Errorf("schedule must not write, found %d occurrences", len(persisted))
	}
}

func TestScheduleCmd_Table(t *testing.T) {
	ctx, out := clitest.NewContext(t)
	f := clitest.Seed(t, ctx, 10)

	cmd := &ScheduleCmd{PlanID: f.Plan.ID, Window: window("2025-01-01", 3)}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	for _, want := range []string{"Saxon 5/4", "2025-01-01", "Wed", "#1 Lesson", "#3 Lesson", "planned"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("table output missing %q:\n%s", want, out.String())
		}
	}
}

func TestScheduleCmd_OutsidePlan(t *testing.T) {
	ctx, out := clitest.NewContext(t)
	f := clitest.Seed(t, ctx, 10)

	cmd := &ScheduleCmd{PlanID: f.Plan.ID, Window: window("2025-03-01", 7)}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if !strings.Contains(out.String(), "does not overlap") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestScheduleCmd_MisconfiguredResourceWarns(t *testing.T) {
	ctx, out := clitest.NewContext(t)
	f := clitest.Seed(t, ctx, 0)

	cmd := &ScheduleCmd{PlanID: f.Plan.ID, Window: window("2025-01-01", 7), JSON: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	preview := decodePreview(t, out.String())
	if len(preview.Items) != 0 || len(preview.Warnings) == 0 {
		t.Errorf("expected zero items and a warning, got %+v", preview)
	}
}

func TestScheduleCmd_Errors(t *testing.T) {
	ctx, _ := clitest.NewContext(t)
	f := clitest.Seed(t, ctx, 10)

	tests := []struct {
		name string
		cmd  ScheduleCmd
		want error
	}{
		{"zero days", ScheduleCmd{PlanID: f.Plan.ID, Window: window("2025-01-01", 0)}, scheduler.ErrInvalidArgument},
		{"too many days", ScheduleCmd{PlanID: f.Plan.ID, Window: window("2025-01-01", 366)}, scheduler.ErrInvalidArgument},
		{"unknown plan", ScheduleCmd{PlanID: "missing", Window: window("2025-01-01", 7)}, storage.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Run(ctx); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	bad := ScheduleCmd{PlanID: f.Plan.ID, Window: window("01/01/2025", 7)}
	if err := bad.Run(ctx); err == nil || !strings.Contains(err.Error(), "--from") {
		t.Errorf("expected an invalid --from error, got %v", err)
	}
}
