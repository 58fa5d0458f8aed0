package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/hsplan/internal/backup"
	"github.com/julianstephens/hsplan/internal/cli"
	"github.com/julianstephens/hsplan/internal/keyring"
	"github.com/julianstephens/hsplan/internal/utils"
	"github.com/julianstephens/hsplan/internal/validation"
)

// versioned is implemented by both the SQLite and PostgreSQL stores.
type versioned interface {
	SchemaVersion() (current, latest int, err error)
}

type DoctorCmd struct{}

type check struct {
	name string
	// warnOnly checks never fail the command
	warnOnly bool
	// needsDB checks are skipped when the database is not reachable
	needsDB bool
	run     func(*cli.Context) error
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Plan validation", needsDB: true, run: checkPlans},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "OS keyring", warnOnly: true, run: checkKeyring},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			if c.name == "Database reachable" {
				dbReachable = false
			}
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Store.GetAllLearners(); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	v, ok := ctx.Store.(versioned)
	if !ok {
		return nil
	}
	current, latest, err := v.SchemaVersion()
	if err != nil {
		return err
	}
	switch {
	case current < latest:
		return fmt.Errorf("schema version %d is behind %d, run 'hsplan migrate'", current, latest)
	case current > latest:
		return fmt.Errorf("schema version %d is newer than this binary supports (%d)", current, latest)
	}
	return nil
}

func checkPlans(ctx *cli.Context) error {
	plans, err := ctx.Store.GetAllPlans()
	if err != nil {
		return err
	}
	if ctx.Validator == nil {
		ctx.Validator = validation.New()
	}
	asOf, err := utils.TodayInTimezone("Local")
	if err != nil {
		return err
	}
	conflicts := 0
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
		conflicts += len(result.Conflicts)
	}
	if conflicts > 0 {
		return fmt.Errorf("%d conflict(s) found, run 'hsplan plan check' for details", conflicts)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s, run 'hsplan backup create'", mgr.Dir())
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if ctx.IsSQLite() {
		return nil
	}
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	today, err := utils.TodayInTimezone("Local")
	if err != nil {
		return err
	}
	if _, err := utils.ParseDate(today); err != nil {
		return fmt.Errorf("local date %q does not parse: %w", today, err)
	}
	return nil
}
