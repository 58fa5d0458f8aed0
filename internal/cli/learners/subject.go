package learners

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/hsplan/internal/cli"
	"github.com/julianstephens/hsplan/internal/models"
)

type SubjectCmd struct {
	Add  SubjectAddCmd  `cmd:"" help:"Add a subject for a learner."`
	List SubjectListCmd `cmd:"" help:"List the subjects of a learner."`
}

type SubjectAddCmd struct {
	LearnerID string `arg:"" help:"Learner ID."`
	Title     string `arg:"" help:"Subject title (e.g. Math)."`
	Color     string `help:"Display color as a hex string (e.g. #ff8800)."`
}

func (c *SubjectAddCmd) Run(ctx *cli.Context) error {
	learner, err := ctx.Store.GetLearner(c.LearnerID)
	if err != nil {
		return fmt.Errorf("failed to find learner: %w", err)
	}

	subject := models.Subject{
		ID:        uuid.NewString(),
		LearnerID: learner.ID,
		Title:     strings.TrimSpace(c.Title),
		ColorHex:  strings.TrimSpace(c.Color),
		CreatedAt: time.Now().UTC(),
	}
	if err := ctx.Validate(subject); err != nil {
		return err
	}
	if err := ctx.Store.AddSubject(subject); err != nil {
		return fmt.Errorf("failed to add subject: %w", err)
	}

	ctx.Printf("Added subject %s for %s (%s)\n", subject.Title, learner.Name, subject.ID)
	return nil
}

type SubjectListCmd struct {
	LearnerID string `arg:"" help:"Learner ID."`
}

func (c *SubjectListCmd) Run(ctx *cli.Context) error {
	learner, err := ctx.Store.GetLearner(c.LearnerID)
	if err != nil {
		return fmt.Errorf("failed to find learner: %w", err)
	}
	subjects, err := ctx.Store.GetSubjectsForLearner(learner.ID)
	if err != nil {
		return fmt.Errorf("failed to list subjects: %w", err)
	}
	if len(subjects) == 0 {
		ctx.Printf("No subjects found for %s.\n", learner.Name)
		return nil
	}

	ctx.Printf("Subjects for %s:\n", learner.Name)
	for _, s := range subjects {
		ctx.Printf("- %s (ID: %s)\n", cli.ItemStyle.Render(s.Title), s.ID)
	}
	return nil
}
