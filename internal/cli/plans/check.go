package plans

import (
	"fmt"

	"github.com/julianstephens/hsplan/internal/cli"
	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/utils"
	"github.com/julianstephens/hsplan/internal/validation"
)

type PlanCheckCmd struct {
	PlanID   string `arg:"" optional:"" help:"Plan ID. Checks every plan when omitted."`
	AsOf     string `help:"Occurrences before this date are history when looking for duplicate units (YYYY-MM-DD or today)." name:"as-of" default:"today"`
	Timezone string `help:"Timezone used to resolve 'today'." default:"Local"`
}

func (c *PlanCheckCmd) Run(ctx *cli.Context) error {
	asOf, err := utils.ResolveDate(c.AsOf, c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid --as-of: %w", err)
	}

	var plans []models.Plan
	if c.PlanID != "" {
		p, err := ctx.Store.GetPlan(c.PlanID)
		if err != nil {
			return fmt.Errorf("failed to load plan: %w", err)
		}
		plans = append(plans, p)
	} else {
		all, err := ctx.Store.GetAllPlans()
		if err != nil {
			return fmt.Errorf("failed to load plans: %w", err)
		}
		plans = all
	}

	if ctx.Validator == nil {
		ctx.Validator = validation.New()
	}

	ctx.Printf("Checking %d plan(s)...\n", len(plans))
	combined := validation.ValidationResult{Conflicts: []validation.Conflict{}}
	for _, p := range plans {
		snap, err := ctx.LoadPlanSnapshot(p.ID)
		if err != nil {
			return err
		}
		result := ctx.Validator.CheckPlan(validation.PlanSnapshot{
			Plan:        snap.Plan,
			Resource:    snap.Resource,
			UnitCount:   snap.UnitCount,
			Occurrences: snap.Occurrences,
			AsOf:        asOf,
		})
		combined.Conflicts = append(combined.Conflicts, result.Conflicts...)
	}

	ctx.Println()
	ctx.Println(combined.FormatReport())
	return nil
}
