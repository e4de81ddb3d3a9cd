package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mdminegoub-netizen/suqya-bot/internal/backup"
	"github.com/mdminegoub-netizen/suqya-bot/internal/snapshot"
	"github.com/mdminegoub-netizen/suqya-bot/internal/storage"
)

type MigrateCmd struct {
	Snapshot   string `arg:"" type:"existingfile" help:"Path to the legacy snapshot JSON file."`
	Workers    int    `default:"4" help:"Concurrent store writes during import."`
	SkipBackup bool   `help:"Skip the automatic pre-import backup."`
}

func (c *MigrateCmd) Run(ctx *Context) error {
	// Snapshot import appends without existence checks, so protect an
	// existing database with a backup first.
	if !c.SkipBackup {
		if _, ok := ctx.Store.(*storage.SQLiteStore); ok {
			if _, err := os.Stat(ctx.Store.GetConfigPath()); err == nil {
				mgr := backup.NewManager(ctx.Store.GetConfigPath())
				backupPath, err := mgr.CreateBackup()
				if err != nil {
					return fmt.Errorf("pre-import backup failed: %w", err)
				}
				fmt.Printf("✓ Pre-import backup: %s\n", filepath.Base(backupPath))
			}
		}
	}

	imp := snapshot.NewImporter(ctx.Store, c.Workers)
	res, err := imp.Run(c.Snapshot)
	if err != nil {
		return err
	}

	fmt.Printf("Migrated %d users, %d notes, %d letters, %d tips\n",
		res.Users, res.Notes, res.Letters, res.Tips)
	if res.ConfigMigrated {
		fmt.Println("✓ Global config migrated")
	} else {
		fmt.Println("⚠ Global config not migrated (snapshot has no GLOBAL_KEY entry)")
	}
	return nil
}
