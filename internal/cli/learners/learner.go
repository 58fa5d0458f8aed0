package learners

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/julianstephens/hsplan/internal/cli"
	"github.com/julianstephens/hsplan/internal/models"
)

type LearnerCmd struct {
	Add  LearnerAddCmd  `cmd:"" help:"Add a learner."`
	List LearnerListCmd `cmd:"" help:"List learners." default:"1"`
}

type LearnerAddCmd struct {
	Name  string `arg:"" optional:"" help:"Learner name. Prompted for when omitted."`
	Grade string `help:"Grade level (e.g. 4, K)."`
}

func (c *LearnerAddCmd) Run(ctx *cli.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		if err := c.prompt(); err != nil {
			return err
		}
	}

	learner := models.Learner{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(c.Name),
		Grade:     strings.TrimSpace(c.Grade),
		CreatedAt: time.Now().UTC(),
	}
	if err := ctx.Validate(learner); err != nil {
		return err
	}
	if err := ctx.Store.AddLearner(learner); err != nil {
		return fmt.Errorf("failed to add learner: %w", err)
	}

	ctx.Printf("Added learner: %s (%s)\n", learner.Name, learner.ID)
	return nil
}

func (c *LearnerAddCmd) prompt() error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Learner Name").
				Value(&c.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("learner name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Grade").
				Description("Optional").
				Value(&c.Grade),
		),
	).WithTheme(huh.ThemeDracula())
	if err := form.Run(); err != nil {
		return fmt.Errorf("learner form error: %w", err)
	}
	return nil
}

type LearnerListCmd struct{}

func (c *LearnerListCmd) Run(ctx *cli.Context) error {
	learners, err := ctx.Store.GetAllLearners()
	if err != nil {
		return fmt.Errorf("failed to list learners: %w", err)
	}
	if len(learners) == 0 {
		ctx.Println("No learners found. Add one with 'hsplan learner add'.")
		return nil
	}

	for _, l := range learners {
		grade := ""
		if l.Grade != "" {
			grade = " [grade " + l.Grade + "]"
		}
		ctx.Printf("- %s%s (ID: %s)\n", cli.ItemStyle.Render(l.Name), grade, l.ID)
	}
	return nil
}
