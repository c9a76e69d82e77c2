package cli

import "fmt"

type SyncStatusCmd struct{}

func (c *SyncStatusCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	status := ctx.Sync.Status()

	device := settings.DeviceName
	if device == "" {
		device = "(unnamed)"
	}
	fmt.Printf("device:          %s\n", device)
	fmt.Printf("store:           %s\n", ctx.Store.GetConfigPath())
	fmt.Printf("open sessions:   %d\n", status.OpenSessions)
	fmt.Printf("deferred pushes: %d\n", status.DeferredPushes)
	return nil
}
