package plans

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/hsplan/internal/cli"
	"github.com/julianstephens/hsplan/internal/logger"
	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/storage"
)

// LockCmd persists a materialized window as locked occurrences, so later
// previews keep those dates and units fixed.
type LockCmd struct {
	PlanID string `arg:"" help:"Plan ID."`
	Window `embed:""`
}

func (c *LockCmd) Run(ctx *cli.Context) error {
	from, asOf, err := c.Resolve()
	if err != nil {
		return err
	}
	preview, _, err := ctx.Preview(c.PlanID, from, c.Days, asOf)
	if err != nil {
		return err
	}

	var pending []models.TaskOccurrence
	for _, item := range preview.Items {
		if item.ID != "" {
			continue
		}
		item.ID = uuid.NewString()
		item.Locked = true
		pending = append(pending, item)
	}
	if len(pending) == 0 {
		ctx.Println("Nothing new to lock in this window.")
		return nil
	}

	ctx.PerformAutomaticBackup()
	inserted, err := ctx.Store.SaveOccurrences(pending)
	if err != nil {
		return fmt.Errorf("failed to save occurrences: %w", err)
	}

	ctx.Printf("✓ Locked %d occurrence(s) between %s and %s\n", inserted, preview.From, preview.To)
	if skipped := len(pending) - inserted; skipped > 0 {
		logger.Warn("skipped occurrences whose slot is taken", "plan", c.PlanID, "skipped", skipped)
		ctx.Println(cli.WarningStyle.Render(fmt.Sprintf("Skipped %d occurrence(s) whose slot is already taken", skipped)))
	}
	return nil
}

type UnlockCmd struct {
	OccurrenceID string `arg:"" help:"Occurrence ID."`
	Yes          bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *UnlockCmd) Run(ctx *cli.Context) error {
	occ, err := ctx.Store.GetOccurrence(c.OccurrenceID)
	if err != nil {
		return fmt.Errorf("failed to find occurrence: %w", err)
	}

	if !c.Yes {
		ok, err := ctx.Ask(
			fmt.Sprintf("Unlock %s on %s?", describe(occ, nil), occ.Date),
			"The occurrence is removed and the next preview may schedule different work on that date.",
		)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Unlock cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Store.DeleteOccurrence(occ.ID); err != nil {
		if errors.Is(err, storage.ErrOccurrenceCompleted) {
			return fmt.Errorf("cannot unlock %s: it has been completed", occ.ID)
		}
		return fmt.Errorf("failed to unlock occurrence: %w", err)
	}
	ctx.Printf("✓ Unlocked occurrence on %s\n", occ.Date)
	return nil
}
