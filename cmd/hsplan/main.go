package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/hsplan/internal/cli"
	"github.com/julianstephens/hsplan/internal/cli/backups"
	"github.com/julianstephens/hsplan/internal/cli/learners"
	"github.com/julianstephens/hsplan/internal/cli/plans"
	"github.com/julianstephens/hsplan/internal/cli/reports"
	"github.com/julianstephens/hsplan/internal/cli/resources"
	"github.com/julianstephens/hsplan/internal/cli/system"
	"github.com/julianstephens/hsplan/internal/constants"
	"github.com/julianstephens/hsplan/internal/errors"
	"github.com/julianstephens/hsplan/internal/logger"
	"github.com/julianstephens/hsplan/internal/scheduler"
	"github.com/julianstephens/hsplan/internal/storage"
	"github.com/julianstephens/hsplan/internal/utils"
	"github.com/julianstephens/hsplan/internal/validation"
)

var CLI struct {
	Version  kong.VersionFlag
	Database string `name:"config" help:"SQLite database path, a PostgreSQL connection string without a password, or 'postgres' to use HSPLAN_DB_CONNECTION or the OS keyring." env:"HSPLAN_CONFIG" default:"~/.config/hsplan/hsplan.db"`
	Debug    bool   `help:"Enable debug logging to stderr." env:"HSPLAN_DEBUG"`

	Init     system.InitCmd        `cmd:"" help:"Initialize hsplan storage."`
	Migrate  system.MigrateCmd     `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd      `cmd:"" help:"Run health checks and diagnostics."`
	Learner  learners.LearnerCmd   `cmd:"" help:"Manage learners."`
	Subject  learners.SubjectCmd   `cmd:"" help:"Manage subjects."`
	Resource resources.ResourceCmd `cmd:"" help:"Manage resources and their unit catalogs."`
	Plan     plans.PlanCmd         `cmd:"" help:"Manage plans."`
	Schedule plans.ScheduleCmd     `cmd:"" help:"Preview a plan's schedule for a window of days."`
	Lock     plans.LockCmd         `cmd:"" help:"Persist a window of the schedule as locked occurrences."`
	Unlock   plans.UnlockCmd       `cmd:"" help:"Remove a persisted occurrence that has not been completed."`
	Complete plans.CompleteCmd     `cmd:"" help:"Record that an occurrence was done."`
	Report   reports.ReportCmd     `cmd:"" help:"Progress reports."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage SQLite database backups."`
	Config struct {
		SetConnection    system.SetConnectionCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		DeleteConnection system.DeleteConnectionCmd `cmd:"" help:"Delete the stored PostgreSQL connection string."`
		Status           system.ConnectionStatusCmd `cmd:"" help:"Show keyring availability and the stored connection string."`
	} `cmd:"" help:"Manage the stored PostgreSQL connection."`
}

// storeless commands run without opening the configured database.
var storeless = map[string]bool{"config": true}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Homeschool plan scheduler"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir(CLI.Database)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	appCtx := &cli.Context{
		Scheduler: scheduler.New(),
		Validator: validation.New(),
	}

	command := strings.Fields(ctx.Command())[0]
	if !storeless[command] {
		store, err := cli.OpenStore(CLI.Database)
		if err != nil {
			errors.Fatal(err)
		}
		defer store.Close()
		appCtx.Store = store

		// Init creates the database itself.
		if command != "init" {
			if err := store.Load(); err != nil {
				errors.Fatal(err)
			}
		}
	}

	logger.Debug("running command", "command", ctx.Command())
	if err := ctx.Run(appCtx); err != nil {
		errors.Fatal(err)
	}
}

// configDir is where logs live: next to a SQLite database, or under the
// default config directory for PostgreSQL.
func configDir(config string) string {
	isKeyword := strings.EqualFold(config, "postgres") || strings.EqualFold(config, "postgresql")
	if config != "" && !isKeyword && !storage.IsPostgres(config) {
		if path, err := utils.ExpandHome(config); err == nil {
			return filepath.Dir(path)
		}
	}
	if path, err := utils.ExpandHome(constants.DefaultConfigPath); err == nil {
		return filepath.Dir(path)
	}
	return "."
}
