package plans

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/hsplan/internal/cli"
	"github.com/julianstephens/hsplan/internal/models"
)

type CompleteCmd struct {
	OccurrenceID string `arg:"" help:"Occurrence ID."`
	Minutes      int    `help:"Minutes actually spent."`
	Notes        string `help:"Free-form notes."`
}

func (c *CompleteCmd) Run(ctx *cli.Context) error {
	occ, err := ctx.Store.GetOccurrence(c.OccurrenceID)
	if err != nil {
		return fmt.Errorf("failed to find occurrence: %w", err)
	}

	entry := models.CompletionLog{
		ID:               uuid.NewString(),
		TaskOccurrenceID: occ.ID,
		CompletedUTC:     time.Now().UTC(),
		Notes:            strings.TrimSpace(c.Notes),
	}
	if c.Minutes != 0 {
		entry.MinutesActual = &c.Minutes
	}
	if err := ctx.Validate(entry); err != nil {
		return err
	}
	if err := ctx.Store.AddCompletion(entry); err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}

	ctx.Printf("✓ Completed %s on %s\n", describe(occ, nil), occ.Date)
	return nil
}
