package cli

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/utils"
)

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}

	fmt.Printf("timezone:              %s\n", settings.Timezone)
	fmt.Printf("week_start:            %s\n", settings.WeekStart)
	fmt.Printf("auto_promote_subitems: %t\n", settings.AutoPromoteSubitems)
	fmt.Printf("device_name:           %s\n", settings.DeviceName)
	return nil
}

type SettingsSetCmd struct {
	Timezone    string `help:"IANA timezone name, or 'Local'."`
	WeekStart   string `help:"First day of the week (e.g. monday, sunday)."`
	AutoPromote *bool  `help:"Promote a day to done when all subitems complete."`
	DeviceName  string `help:"Name reported to the sync channel."`
}

func (c *SettingsSetCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}

	if c.Timezone != "" {
		if !utils.ValidateTimezone(c.Timezone) {
			return fmt.Errorf("invalid timezone %q", c.Timezone)
		}
		settings.Timezone = c.Timezone
	}
	if c.WeekStart != "" {
		if _, err := utils.ParseWeekday(c.WeekStart); err != nil {
			return err
		}
		settings.WeekStart = c.WeekStart
	}
	if c.AutoPromote != nil {
		settings.AutoPromoteSubitems = *c.AutoPromote
	}
	if c.DeviceName != "" {
		settings.DeviceName = c.DeviceName
	}

	if err := ctx.Store.SaveSettings(settings); err != nil {
		return err
	}
	fmt.Println("Settings updated.")
	return nil
}
