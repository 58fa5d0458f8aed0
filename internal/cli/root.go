package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/hsplan/internal/backup"
	"github.com/julianstephens/hsplan/internal/logger"
	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/scheduler"
	"github.com/julianstephens/hsplan/internal/storage"
	"github.com/julianstephens/hsplan/internal/storage/sqlite"
	"github.com/julianstephens/hsplan/internal/validation"
)

type Context struct {
	Store     storage.Provider
	Scheduler *scheduler.Scheduler
	Validator *validation.Validator

	// Out receives command output. Nil means stdout.
	Out io.Writer
	// Confirm asks a yes/no question. Nil means an interactive huh prompt.
	Confirm func(title, description string) (bool, error)
}

func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Stdout(), args...)
}

// Ask asks the user to confirm a destructive action.
func (c *Context) Ask(title, description string) (bool, error) {
	if c.Confirm != nil {
		return c.Confirm(title, description)
	}
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeDracula())
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return ok, nil
}

// Validate checks record's struct tags, building the validator on first use.
func (c *Context) Validate(record any) error {
	if c.Validator == nil {
		c.Validator = validation.New()
	}
	return c.Validator.Struct(record)
}

// IsSQLite reports whether the active store is a SQLite file.
func (c *Context) IsSQLite() bool {
	_, ok := c.Store.(*sqlite.Store)
	return ok
}

// PerformAutomaticBackup snapshots a SQLite database before a write that
// changes persisted occurrences. Failures are logged and never interrupt the command.
func (c *Context) PerformAutomaticBackup() {
	if !c.IsSQLite() {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// PlanSnapshot reads the plan together with everything materialization and
// validation consume.
type PlanSnapshot struct {
	Plan        models.Plan
	Resource    models.Resource
	UnitCount   int
	Occurrences []models.TaskOccurrence
	Completions []models.CompletionLog
}

func (c *Context) LoadPlanSnapshot(planID string) (PlanSnapshot, error) {
	var snap PlanSnapshot
	plan, err := c.Store.GetPlan(planID)
	if err != nil {
		return snap, fmt.Errorf("failed to load plan: %w", err)
	}
	resource, err := c.Store.GetResource(plan.ResourceID)
	if err != nil {
		return snap, fmt.Errorf("failed to load resource of plan %s: %w", plan.ID, err)
	}
	count, err := c.Store.CountUnits(resource.ID)
	if err != nil {
		return snap, fmt.Errorf("failed to count units: %w", err)
	}
	occurrences, err := c.Store.GetOccurrencesForPlan(plan.ID)
	if err != nil {
		return snap, fmt.Errorf("failed to load occurrences: %w", err)
	}
	completions, err := c.Store.GetCompletionsForPlan(plan.ID)
	if err != nil {
		return snap, fmt.Errorf("failed to load completions: %w", err)
	}
	return PlanSnapshot{
		Plan:        plan,
		Resource:    resource,
		UnitCount:   count,
		Occurrences: occurrences,
		Completions: completions,
	}, nil
}

// Request builds the materialization request for a window of the snapshot.
func (s PlanSnapshot) Request(from string, days int, asOf string) scheduler.Request {
	return scheduler.Request{
		Plan:        s.Plan,
		Resource:    s.Resource,
		UnitCount:   s.UnitCount,
		Occurrences: s.Occurrences,
		Completions: s.Completions,
		AsOf:        asOf,
		From:        from,
		Days:        days,
	}
}

// Preview loads the plan and materializes the requested window. Warnings are
// logged against the plan; they never fail the command.
func (c *Context) Preview(planID, from string, days int, asOf string) (models.SchedulePreview, PlanSnapshot, error) {
	snap, err := c.LoadPlanSnapshot(planID)
	if err != nil {
		return models.SchedulePreview{}, snap, err
	}
	preview, err := c.Scheduler.Materialize(snap.Request(from, days, asOf))
	if err != nil {
		return preview, snap, err
	}
	if l := logger.ForPlan(planID); l != nil {
		for _, w := range preview.Warnings {
			l.Warn("materialization warning", "warning", w)
		}
	}
	return preview, snap, nil
}
