package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdminegoub-netizen/suqya-bot/internal/backup"
)

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	path, err := mgr.CreateBackup()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Backup written: %s (%s)\n", filepath.Base(path), formatSize(info.Size()))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Printf("No backups yet. Run 'suqya backup create' to make one.\n")
		fmt.Printf("Backup directory: %s\n", mgr.GetBackupDir())
		return nil
	}

	var total int64
	fmt.Printf("%d backup(s) in %s (rotation keeps %d):\n\n", len(backups), mgr.GetBackupDir(), backup.MaxBackups)
	for _, b := range backups {
		total += b.Size
		fmt.Printf("  %s  %-40s %s\n",
			b.Timestamp.Format("2006-01-02 15:04"), filepath.Base(b.Path), formatSize(b.Size))
	}
	fmt.Printf("\nTotal: %s\n", formatSize(total))

	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	mgr := backup.NewManager(ctx.Store.GetConfigPath())

	path, err := resolveBackupPath(mgr, c.BackupFile)
	if err != nil {
		return err
	}

	if !c.Yes {
		fmt.Printf("Restoring %s replaces the current database.\n", filepath.Base(path))
		fmt.Println("The current database is backed up first.")
		if !confirm("Proceed? [y/N]: ") {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// Release the live connection before swapping the file underneath it.
	if err := ctx.Store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not close store cleanly: %v\n", err)
	}

	if err := mgr.RestoreBackup(path); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	fmt.Println("✓ Database restored. Restart any running dispatcher to pick it up.")
	return nil
}

// resolveBackupPath accepts either a full path or a bare filename inside the
// backup directory.
func resolveBackupPath(mgr *backup.Manager, name string) (string, error) {
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = append(candidates, filepath.Join(mgr.GetBackupDir(), name))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("backup not found: %s", name)
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

func formatSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	if n < 1024*1024 {
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	}
	return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
}
