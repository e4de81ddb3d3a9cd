package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/mdminegoub-netizen/suqya-bot/internal/cli"
	"github.com/mdminegoub-netizen/suqya-bot/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database file path." type:"path" default:"~/.config/suqya/suqya.db" env:"SUQYA_DB"`

	Init    cli.InitCmd    `cmd:"" help:"Initialize suqya storage."`
	Migrate cli.MigrateCmd `cmd:"" help:"Import a legacy snapshot JSON file."`
	Run     cli.RunCmd     `cmd:"" help:"Run the notification dispatcher."`
	Doctor  cli.DoctorCmd  `cmd:"" help:"Run health checks on the installation."`
	Backup  struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a database backup."`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore a database backup."`
	} `cmd:"" help:"Manage database backups."`
	User struct {
		Set  cli.UserSetCmd  `cmd:"" help:"Register or update a user."`
		List cli.UserListCmd `cmd:"" help:"List active users."`
	} `cmd:"" help:"Manage users."`
	Note struct {
		Add  cli.NoteAddCmd  `cmd:"" help:"Add a note for a user."`
		List cli.NoteListCmd `cmd:"" help:"List a user's notes."`
	} `cmd:"" help:"Manage notes."`
	Letter struct {
		Add  cli.LetterAddCmd  `cmd:"" help:"Add a letter for a user."`
		List cli.LetterListCmd `cmd:"" help:"List a user's letters."`
	} `cmd:"" help:"Manage letters."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("suqya"),
		kong.Description("Hydration reminder bot for Telegram"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.2.0"},
	)

	// Determine storage type based on extension
	var store storage.Store
	if len(CLI.Config) > 5 && CLI.Config[len(CLI.Config)-5:] == ".json" {
		store = storage.NewJSONStore(CLI.Config)
	} else {
		store = storage.NewSQLiteStore(CLI.Config)
	}

	appCtx := &cli.Context{Store: store}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
