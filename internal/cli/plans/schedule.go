package plans

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/hsplan/internal/cli"
	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/utils"
)

// Window selects the dates a command materializes.
type Window struct {
	From     string `help:"First day of the window (YYYY-MM-DD or today)." default:"today"`
	Days     int    `help:"Number of days in the window (1-365)." default:"7"`
	AsOf     string `help:"Date progress is measured against for catchup and smart (YYYY-MM-DD or today)." name:"as-of" default:"today"`
	Timezone string `help:"Timezone used to resolve 'today'." default:"Local"`
}

// Resolve turns the relative dates of the window into YYYY-MM-DD strings.
func (w Window) Resolve() (from, asOf string, err error) {
	if from, err = utils.ResolveDate(w.From, w.Timezone); err != nil {
		return "", "", fmt.Errorf("invalid --from: %w", err)
	}
	if asOf, err = utils.ResolveDate(w.AsOf, w.Timezone); err != nil {
		return "", "", fmt.Errorf("invalid --as-of: %w", err)
	}
	return from, asOf, nil
}

type ScheduleCmd struct {
	PlanID string `arg:"" help:"Plan ID."`
	Window `embed:""`
	JSON   bool `help:"Print the preview as JSON." name:"json"`
}

func (c *ScheduleCmd) Run(ctx *cli.Context) error {
	from, asOf, err := c.Resolve()
	if err != nil {
		return err
	}
	preview, snap, err := ctx.Preview(c.PlanID, from, c.Days, asOf)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(ctx.Stdout())
		enc.SetIndent("", "  ")
		return enc.Encode(preview)
	}

	labels, err := unitLabels(ctx, snap.Resource.ID)
	if err != nil {
		return err
	}
	ctx.Println(cli.HeaderStyle.Render(fmt.Sprintf("%s (%s)", snap.Resource.Title, preview.Strategy)))
	RenderPreview(ctx, preview, labels)
	return nil
}

func unitLabels(ctx *cli.Context, resourceID string) (map[int]string, error) {
	units, err := ctx.Store.GetUnits(resourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load units: %w", err)
	}
	labels := make(map[int]string, len(units))
	for _, u := range units {
		labels[u.Index] = u.Label
	}
	return labels, nil
}

// RenderPreview prints the preview as a table followed by its outstanding
// backlog and warnings.
func RenderPreview(ctx *cli.Context, preview models.SchedulePreview, labels map[int]string) {
	for _, w := range preview.Warnings {
		ctx.Println(cli.WarningStyle.Render("⚠ " + w))
	}
	if preview.From == "" {
		ctx.Println("The window does not overlap the plan's date range.")
		return
	}
	if len(preview.Items) == 0 {
		ctx.Printf("Nothing scheduled between %s and %s.\n", preview.From, preview.To)
	} else {
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return cli.HeaderStyle.Padding(0, 1)
				}
				return lipgloss.NewStyle().Padding(0, 1)
			}).
			Headers("Date", "Day", "Work", "Status")
		for _, item := range preview.Items {
			day := ""
			if d, err := utils.ParseDate(item.Date); err == nil {
				day = d.Weekday().String()[:3]
			}
			status := "planned"
			if item.Locked {
				status = cli.LockedStyle.Render("locked")
			}
			t.Row(item.Date, day, describe(item, labels), status)
		}
		ctx.Println(t.String())
	}
	if preview.Outstanding > 0 {
		ctx.Println(cli.WarningStyle.Render(strconv.Itoa(preview.Outstanding) + " backlog item(s) still outstanding after this window"))
	}
}
