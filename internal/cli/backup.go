package cli

import (
	"fmt"
	"path/filepath"

	"github.com/julianstephens/cadence/internal/backup"
)

type BackupCmd struct {
	List    bool   `short:"l" help:"List available backups."`
	Restore string `short:"r" help:"Restore from a backup file." type:"path"`
}

func (c *BackupCmd) Run(ctx *Context) error {
	m := backup.NewManager(ctx.Store.GetConfigPath())

	switch {
	case c.List:
		backups, err := m.List()
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println("No backups.")
			return nil
		}
		for _, b := range backups {
			fmt.Printf("%s  %s  %d bytes\n", b.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(b.Path), b.Size)
		}
		return nil

	case c.Restore != "":
		if err := m.Restore(c.Restore); err != nil {
			return err
		}
		fmt.Printf("Restored storage from %s\n", filepath.Base(c.Restore))
		return nil

	default:
		dest, err := m.Create()
		if err != nil {
			return err
		}
		fmt.Printf("Created backup: %s\n", filepath.Base(dest))
		return nil
	}
}
