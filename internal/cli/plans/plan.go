package plans

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/hsplan/internal/cli"
	"github.com/julianstephens/hsplan/internal/constants"
	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/utils"
)

type PlanCmd struct {
	Create PlanCreateCmd `cmd:"" help:"Create a plan for a resource."`
	List   PlanListCmd   `cmd:"" help:"List plans." default:"1"`
	Show   PlanShowCmd   `cmd:"" help:"Show a plan and its persisted occurrences."`
	Check  PlanCheckCmd  `cmd:"" help:"Check plans for configuration problems."`
}

type PlanCreateCmd struct {
	ResourceID string `arg:"" help:"Resource ID."`
	Start      string `required:"" help:"First day of the plan (YYYY-MM-DD)."`
	End        string `required:"" help:"Last day of the plan (YYYY-MM-DD)."`
	Days       string `help:"Allowed weekdays: names, ISO numbers (1=Mon..7=Sun), weekdays, weekends or all." default:"weekdays"`
	Strategy   string `help:"Pacing strategy." default:"push" enum:"push,catchup,smart"`
	Lookahead  int    `help:"Allowed days over which catchup spreads backlog." default:"7"`
}

func (c *PlanCreateCmd) Run(ctx *cli.Context) error {
	resource, err := ctx.Store.GetResource(c.ResourceID)
	if err != nil {
		return fmt.Errorf("failed to find resource: %w", err)
	}
	mask, err := utils.ParseWeekdayMask(c.Days)
	if err != nil {
		return err
	}
	lookahead := c.Lookahead
	if lookahead == 0 {
		lookahead = constants.DefaultLookaheadDays
	}

	plan := models.Plan{
		ID:              uuid.NewString(),
		ResourceID:      resource.ID,
		StartDate:       strings.TrimSpace(c.Start),
		EndDate:         strings.TrimSpace(c.End),
		AllowedDaysMask: mask,
		Strategy:        constants.Strategy(strings.ToLower(c.Strategy)),
		LookaheadDays:   lookahead,
		CreatedAt:       time.Now().UTC(),
	}
	if err := ctx.Validate(plan); err != nil {
		return err
	}
	if err := ctx.Store.AddPlan(plan); err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}

	ctx.Printf("Created %s plan for %q: %s..%s on %s (%s)\n",
		plan.Strategy, resource.Title, plan.StartDate, plan.EndDate, utils.FormatWeekdayMask(plan.AllowedDaysMask), plan.ID)
	if mask == 0 {
		ctx.Println(cli.WarningStyle.Render("Warning: no weekdays are allowed, this plan will never schedule anything."))
	}
	return nil
}

type PlanListCmd struct{}

func (c *PlanListCmd) Run(ctx *cli.Context) error {
	plans, err := ctx.Store.GetAllPlans()
	if err != nil {
		return fmt.Errorf("failed to list plans: %w", err)
	}
	if len(plans) == 0 {
		ctx.Println("No plans found. Create one with 'hsplan plan create'.")
		return nil
	}

	for _, p := range plans {
		title := p.ResourceID
		if r, err := ctx.Store.GetResource(p.ResourceID); err == nil {
			title = r.Title
		}
		ctx.Printf("- %s  %s..%s  %-8s %-8s (ID: %s)\n",
			cli.ItemStyle.Render(title), p.StartDate, p.EndDate, utils.FormatWeekdayMask(p.AllowedDaysMask), p.Strategy, p.ID)
	}
	return nil
}

type PlanShowCmd struct {
	PlanID string `arg:"" help:"Plan ID."`
}

func (c *PlanShowCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.LoadPlanSnapshot(c.PlanID)
	if err != nil {
		return err
	}
	p := snap.Plan

	ctx.Println(cli.HeaderStyle.Render(snap.Resource.Title))
	ctx.Printf("ID:         %s\n", p.ID)
	ctx.Printf("Range:      %s..%s\n", p.StartDate, p.EndDate)
	ctx.Printf("Days:       %s\n", utils.FormatWeekdayMask(p.AllowedDaysMask))
	ctx.Printf("Strategy:   %s (lookahead %d)\n", p.Strategy, p.LookaheadDays)
	if snap.Resource.Kind != constants.ResourceKindTime {
		ctx.Printf("Units:      %d (up to %d/day)\n", snap.UnitCount, snap.Resource.MaxPerDay())
	}

	if len(snap.Occurrences) == 0 {
		ctx.Println("\nNo persisted occurrences. Use 'hsplan lock' to persist a schedule.")
		return nil
	}

	completed := make(map[string]bool, len(snap.Completions))
	for _, log := range snap.Completions {
		completed[log.TaskOccurrenceID] = true
	}
	done := 0
	ctx.Println("\nOccurrences:")
	for _, occ := range snap.Occurrences {
		status := "planned"
		if occ.Locked {
			status = "locked"
		}
		if completed[occ.ID] {
			status = "done"
			done++
		}
		ctx.Printf("  %s  %-12s %-8s %s\n", occ.Date, describe(occ, nil), status, occ.ID)
	}
	ctx.Printf("\n%d of %d occurrences completed\n", done, len(snap.Occurrences))
	return nil
}

// describe renders the work an occurrence stands for, with the unit label when known.
func describe(occ models.TaskOccurrence, labels map[int]string) string {
	switch {
	case occ.UnitIndex != nil:
		if label, ok := labels[*occ.UnitIndex]; ok {
			return fmt.Sprintf("#%d %s", *occ.UnitIndex, label)
		}
		return fmt.Sprintf("unit %d", *occ.UnitIndex)
	case occ.MinutesPlanned != nil:
		return fmt.Sprintf("%d min", *occ.MinutesPlanned)
	default:
		return "-"
	}
}
