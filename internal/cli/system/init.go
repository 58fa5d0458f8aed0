package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/hsplan/internal/cli"
	"github.com/julianstephens/hsplan/internal/models"
	"github.com/julianstephens/hsplan/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing SQLite database before initialization."`
	Yes    bool   `short:"y" help:"Skip the confirmation prompt for --force."`
	Source string `help:"Source database path or PostgreSQL connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized hsplan storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return errors.New("--force is only supported for SQLite databases")
	}
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to access existing database: %w", err)
	}

	if !c.Yes {
		ok, err := ctx.Ask("Delete the existing database?", dbPath+" and every plan in it will be removed.")
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("init cancelled")
		}
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	ctx.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

func (c *InitCmd) copyFrom(ctx *cli.Context) error {
	src, err := cli.OpenStore(c.Source)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	counts, err := Copy(src, ctx.Store)
	if err != nil {
		return err
	}
	ctx.Printf("  Copied %d learners, %d subjects, %d resources, %d units, %d plans, %d occurrences, %d completions\n",
		counts.Learners, counts.Subjects, counts.Resources, counts.Units, counts.Plans, counts.Occurrences, counts.Completions)
	return nil
}

// CopyCounts tallies the records Copy wrote.
type CopyCounts struct {
	Learners    int
	Subjects    int
	Resources   int
	Units       int
	Plans       int
	Occurrences int
	Completions int
}

// Copy walks every learner of src and writes the whole tree below it to dst,
// keeping record ids. Unit catalogs are re-appended in index order, so indices
// are preserved as well.
func Copy(src, dst storage.Provider) (CopyCounts, error) {
	var n CopyCounts
	learners, err := src.GetAllLearners()
	if err != nil {
		return n, fmt.Errorf("failed to read learners: %w", err)
	}
	for _, learner := range learners {
		if err := dst.AddLearner(learner); err != nil {
			return n, fmt.Errorf("failed to add learner %s: %w", learner.ID, err)
		}
		n.Learners++

		subjects, err := src.GetSubjectsForLearner(learner.ID)
		if err != nil {
			return n, fmt.Errorf("failed to read subjects: %w", err)
		}
		for _, subject := range subjects {
			if err := dst.AddSubject(subject); err != nil {
				return n, fmt.Errorf("failed to add subject %s: %w", subject.ID, err)
			}
			n.Subjects++

			resources, err := src.GetResourcesForSubject(subject.ID)
			if err != nil {
				return n, fmt.Errorf("failed to read resources: %w", err)
			}
			for _, resource := range resources {
				if err := copyResource(src, dst, resource, &n); err != nil {
					return n, err
				}
			}
		}
	}
	return n, nil
}

func copyResource(src, dst storage.Provider, resource models.Resource, n *CopyCounts) error {
	if err := dst.AddResource(resource); err != nil {
		return fmt.Errorf("failed to add resource %s: %w", resource.ID, err)
	}
	n.Resources++

	units, err := src.GetUnits(resource.ID)
	if err != nil {
		return fmt.Errorf("failed to read units: %w", err)
	}
	if len(units) > 0 {
		labels := make([]string, len(units))
		for i, u := range units {
			labels[i] = u.Label
		}
		created, err := dst.AppendUnits(resource.ID, labels)
		if err != nil {
			return fmt.Errorf("failed to add units of %s: %w", resource.ID, err)
		}
		n.Units += len(created)
	}

	plans, err := src.GetPlansForResource(resource.ID)
	if err != nil {
		return fmt.Errorf("failed to read plans: %w", err)
	}
	for _, plan := range plans {
		if err := dst.AddPlan(plan); err != nil {
			return fmt.Errorf("failed to add plan %s: %w", plan.ID, err)
		}
		n.Plans++

		occurrences, err := src.GetOccurrencesForPlan(plan.ID)
		if err != nil {
			return fmt.Errorf("failed to read occurrences: %w", err)
		}
		saved, err := dst.SaveOccurrences(occurrences)
		if err != nil {
			return fmt.Errorf("failed to save occurrences of %s: %w", plan.ID, err)
		}
		n.Occurrences += saved

		completions, err := src.GetCompletionsForPlan(plan.ID)
		if err != nil {
			return fmt.Errorf("failed to read completions: %w", err)
		}
		for _, completion := range completions {
			if err := dst.AddCompletion(completion); err != nil {
				return fmt.Errorf("failed to add completion %s: %w", completion.ID, err)
			}
			n.Completions++
		}
	}
	return nil
}
