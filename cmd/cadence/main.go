package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/points"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/sync"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Storage path (.db for SQLite, .json for JSON) or a postgres:// URL." type:"path" default:"~/.config/cadence/cadence.db"`
	Debug   bool   `help:"Enable debug logging."`

	Init     cli.InitCmd     `cmd:"" help:"Initialize cadence storage."`
	Day      cli.DayCmd      `cmd:"" help:"Show what's due on a day." default:"1"`
	Validate cli.ValidateCmd `cmd:"" help:"Check stored data for inconsistencies."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks on storage and settings."`
	Streak   cli.StreakCmd   `cmd:"" help:"Show a task's completion streak."`
	Backup   cli.BackupCmd   `cmd:"" help:"Create, list, or restore storage backups."`
	Task     struct {
		Add     cli.TaskAddCmd     `cmd:"" help:"Add a new task."`
		List    cli.TaskListCmd    `cmd:"" help:"List tasks."`
		Done    cli.TaskDoneCmd    `cmd:"" help:"Toggle a task's completion for a day."`
		Subitem cli.TaskSubitemCmd `cmd:"" help:"Toggle one subitem's completion for a day."`
		Effort  cli.TaskEffortCmd  `cmd:"" help:"Record measured focus time."`
		Rate    cli.TaskRateCmd    `cmd:"" help:"Record difficulty/quality ratings."`
		Delete  cli.TaskDeleteCmd  `cmd:"" help:"Delete a task."`
		Restore cli.TaskRestoreCmd `cmd:"" help:"Restore a soft-deleted task."`
	} `cmd:"" help:"Manage tasks."`
	Rule struct {
		Check cli.RuleCheckCmd `cmd:"" help:"Check whether a task occurs on a day."`
		Next  cli.RuleNextCmd  `cmd:"" help:"Show a task's next occurrences."`
	} `cmd:"" help:"Inspect recurrence rules."`
	Sync struct {
		Status cli.SyncStatusCmd `cmd:"" help:"Show sync state."`
	} `cmd:"" help:"Sync operations."`
	Journal struct {
		Add    cli.JournalAddCmd    `cmd:"" help:"Add a journal entry."`
		List   cli.JournalListCmd   `cmd:"" help:"List journal entries."`
		Delete cli.JournalDeleteCmd `cmd:"" help:"Delete a journal entry."`
	} `cmd:"" help:"Manage journal entries."`
	Settings struct {
		Show cli.SettingsShowCmd `cmd:"" help:"Show settings."`
		Set  cli.SettingsSetCmd  `cmd:"" help:"Change settings."`
	} `cmd:"" help:"Manage settings."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Recurring task tracker and journal with multi-device sync"),
		kong.UsageOnError(),
		kong.Vars{"version": constants.Version},
	)

	logDir := filepath.Dir(CLI.Config)
	if strings.Contains(CLI.Config, "://") {
		home, err := os.UserHomeDir()
		if err != nil {
			errors.Fatal(err)
		}
		logDir = filepath.Join(home, ".config", constants.AppName)
	}
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: logDir,
	}); err != nil {
		errors.Fatal(err)
	}

	var store storage.Provider
	switch {
	case strings.HasPrefix(CLI.Config, "postgres://"), strings.HasPrefix(CLI.Config, "postgresql://"):
		store = storage.NewPostgresStore(CLI.Config)
	case strings.HasSuffix(CLI.Config, ".json"):
		store = storage.NewJSONStore(CLI.Config)
	default:
		store = storage.NewSQLiteStore(CLI.Config)
	}

	orchestrator := sync.NewOrchestrator(store, sync.DiscardChannel{},
		sync.WithPoints(points.NewMemoryLedger()),
	)

	appCtx := &cli.Context{
		Store: store,
		Sync:  orchestrator,
	}

	err := ctx.Run(appCtx)
	if closeErr := store.Close(); err == nil {
		err = closeErr
	}
	errors.Fatal(err)
}
