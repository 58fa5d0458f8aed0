package reports

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/hsplan/internal/cli"
	"github.com/julianstephens/hsplan/internal/report"
	"github.com/julianstephens/hsplan/internal/utils"
)

type ReportCmd struct {
	Weekly WeeklyCmd `cmd:"" help:"Weekly planned/done CSV for a learner."`
}

type WeeklyCmd struct {
	LearnerID string `arg:"" help:"Learner ID."`
	From      string `help:"First day of the week (YYYY-MM-DD or today)." default:"today"`
	Timezone  string `help:"Timezone used to resolve 'today'." default:"Local"`
	Output    string `short:"o" help:"Write the CSV to this file instead of stdout."`
}

func (c *WeeklyCmd) Run(ctx *cli.Context) error {
	learner, err := ctx.Store.GetLearner(c.LearnerID)
	if err != nil {
		return fmt.Errorf("failed to find learner: %w", err)
	}
	from, err := utils.ResolveDate(c.From, c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}

	rows, err := report.Weekly(ctx.Store, learner.ID, from)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	var w io.Writer = ctx.Stdout()
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := report.WriteCSV(w, rows); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if c.Output != "" {
		ctx.Printf("✓ Wrote %d row(s) for %s to %s\n", len(rows), learner.Name, c.Output)
	}
	return nil
}
