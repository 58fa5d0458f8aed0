package resources

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/hsplan/internal/cli"
	"github.com/julianstephens/hsplan/internal/constants"
	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/utils"
)

type ResourceCmd struct {
	Add   ResourceAddCmd   `cmd:"" help:"Add a resource to a subject."`
	List  ResourceListCmd  `cmd:"" help:"List the resources of a subject."`
	Show  ResourceShowCmd  `cmd:"" help:"Show a resource, its units and plans."`
	Units ResourceUnitsCmd `cmd:"" help:"Append units to a resource's catalog."`
}

type ResourceAddCmd struct {
	SubjectID  string `arg:"" help:"Subject ID."`
	Title      string `arg:"" help:"Resource title."`
	Kind       string `help:"Resource kind: book, time or custom." default:"book" enum:"book,time,custom"`
	Minutes    int    `help:"Minutes per occurrence (time resources)."`
	MaxPerDay  int    `help:"Maximum units per day when catching up." name:"max-per-day"`
	Lessons    int    `help:"Generate this many numbered units (Lesson 1..N)."`
	UnitPrefix string `help:"Label prefix for generated units." default:"Lesson"`
}

func (c *ResourceAddCmd) Run(ctx *cli.Context) error {
	subject, err := ctx.Store.GetSubject(c.SubjectID)
	if err != nil {
		return fmt.Errorf("failed to find subject: %w", err)
	}

	kind := constants.ResourceKind(strings.ToLower(c.Kind))
	resource := models.Resource{
		ID:        uuid.NewString(),
		SubjectID: subject.ID,
		Kind:      kind,
		Title:     strings.TrimSpace(c.Title),
		CreatedAt: time.Now().UTC(),
	}
	if c.Minutes > 0 {
		resource.MinutesPerOccurrence = &c.Minutes
	}
	if c.MaxPerDay > 0 {
		resource.MaxUnitsPerDay = &c.MaxPerDay
	}

	switch {
	case kind == constants.ResourceKindTime && resource.MinutesPerOccurrence == nil:
		return errors.New("time resources need --minutes")
	case kind == constants.ResourceKindTime && c.Lessons > 0:
		return errors.New("time resources have no unit catalog")
	case c.Lessons < 0:
		return errors.New("--lessons cannot be negative")
	}

	if err := ctx.Validate(resource); err != nil {
		return err
	}
	if err := ctx.Store.AddResource(resource); err != nil {
		return fmt.Errorf("failed to add resource: %w", err)
	}
	ctx.Printf("Added %s resource %q to %s (%s)\n", resource.Kind, resource.Title, subject.Title, resource.ID)

	if c.Lessons > 0 {
		labels := make([]string, c.Lessons)
		for i := range labels {
			labels[i] = fmt.Sprintf("%s %d", c.UnitPrefix, i+1)
		}
		units, err := ctx.Store.AppendUnits(resource.ID, labels)
		if err != nil {
			return fmt.Errorf("failed to add units: %w", err)
		}
		ctx.Printf("Added %d units\n", len(units))
	}
	return nil
}

type ResourceListCmd struct {
	SubjectID string `arg:"" help:"Subject ID."`
}

func (c *ResourceListCmd) Run(ctx *cli.Context) error {
	subject, err := ctx.Store.GetSubject(c.SubjectID)
	if err != nil {
		return fmt.Errorf("failed to find subject: %w", err)
	}
	resources, err := ctx.Store.GetResourcesForSubject(subject.ID)
	if err != nil {
		return fmt.Errorf("failed to list resources: %w", err)
	}
	if len(resources) == 0 {
		ctx.Printf("No resources found for %s.\n", subject.Title)
		return nil
	}

	ctx.Printf("Resources for %s:\n", subject.Title)
	for _, r := range resources {
		ctx.Printf("- %s [%s] %s (ID: %s)\n", cli.ItemStyle.Render(r.Title), r.Kind, quantity(ctx, r), r.ID)
	}
	return nil
}

// quantity describes how much work one occurrence of r represents.
func quantity(ctx *cli.Context, r models.Resource) string {
	if r.Kind == constants.ResourceKindTime {
		if r.MinutesPerOccurrence == nil {
			return "no minutes set"
		}
		return fmt.Sprintf("%d min/day", *r.MinutesPerOccurrence)
	}
	n, err := ctx.Store.CountUnits(r.ID)
	if err != nil {
		return "units unknown"
	}
	return fmt.Sprintf("%d units, up to %d/day", n, r.MaxPerDay())
}

type ResourceShowCmd struct {
	ResourceID string `arg:"" help:"Resource ID."`
}

func (c *ResourceShowCmd) Run(ctx *cli.Context) error {
	r, err := ctx.Store.GetResource(c.ResourceID)
	if err != nil {
		return fmt.Errorf("failed to find resource: %w", err)
	}

	ctx.Println(cli.HeaderStyle.Render(r.Title))
	ctx.Printf("ID:      %s\n", r.ID)
	ctx.Printf("Kind:    %s\n", r.Kind)
	ctx.Printf("Pacing:  %s\n", quantity(ctx, r))

	if r.Kind != constants.ResourceKindTime {
		units, err := ctx.Store.GetUnits(r.ID)
		if err != nil {
			return fmt.Errorf("failed to load units: %w", err)
		}
		if len(units) > 0 {
			ctx.Println("\nUnits:")
			for _, u := range units {
				ctx.Printf("  %3d. %s\n", u.Index, u.Label)
			}
		}
	}

	plans, err := ctx.Store.GetPlansForResource(r.ID)
	if err != nil {
		return fmt.Errorf("failed to load plans: %w", err)
	}
	if len(plans) > 0 {
		ctx.Println("\nPlans:")
		for _, p := range plans {
			ctx.Printf("  %s  %s..%s  %s  %s\n", p.ID, p.StartDate, p.EndDate, utils.FormatWeekdayMask(p.AllowedDaysMask), p.Strategy)
		}
	}
	return nil
}

type ResourceUnitsCmd struct {
	ResourceID string   `arg:"" help:"Resource ID."`
	Labels     []string `arg:"" help:"Unit labels, appended in order."`
}

func (c *ResourceUnitsCmd) Run(ctx *cli.Context) error {
	r, err := ctx.Store.GetResource(c.ResourceID)
	if err != nil {
		return fmt.Errorf("failed to find resource: %w", err)
	}
	if r.Kind == constants.ResourceKindTime {
		return fmt.Errorf("resource %q is time based and has no unit catalog", r.Title)
	}

	labels := make([]string, 0, len(c.Labels))
	for _, l := range c.Labels {
		l = strings.TrimSpace(l)
		if l == "" {
			return errors.New("unit labels cannot be empty")
		}
		if err := ctx.Validate(models.ResourceUnit{Label: l}); err != nil {
			return err
		}
		labels = append(labels, l)
	}

	units, err := ctx.Store.AppendUnits(r.ID, labels)
	if err != nil {
		return fmt.Errorf("failed to add units: %w", err)
	}
	for _, u := range units {
		ctx.Printf("  %3d. %s\n", u.Index, u.Label)
	}
	ctx.Printf("Added %d units to %s\n", len(units), r.Title)
	return nil
}
