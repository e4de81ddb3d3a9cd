package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/mdminegoub-netizen/suqya-bot/internal/scheduler"
	"github.com/mdminegoub-netizen/suqya-bot/internal/storage"
)

type UserSetCmd struct {
	ID         int64  `arg:"" help:"Telegram chat id of the user."`
	Timezone   string `default:"UTC" help:"IANA timezone name (e.g. Europe/Paris)."`
	Deactivate bool   `help:"Mark the user inactive instead of registering them."`
}

func (c *UserSetCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	if c.Deactivate {
		if err := ctx.Store.SetUserActive(c.ID, false); err != nil {
			return err
		}
		fmt.Printf("✓ User %d deactivated\n", c.ID)
		return nil
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	user, err := ctx.Store.GetUser(c.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if err := ctx.Store.RegisterUser(c.ID, c.Timezone); err != nil {
			return err
		}
		fmt.Printf("✓ User %d registered (timezone %s)\n", c.ID, c.Timezone)
		return nil
	case err != nil:
		return err
	}

	user.Timezone = c.Timezone
	user.Active = true
	user.LastActive = nowRFC3339()
	if err := ctx.Store.SaveUser(user); err != nil {
		return err
	}
	fmt.Printf("✓ User %d updated (timezone %s)\n", c.ID, c.Timezone)
	return nil
}

type UserListCmd struct{}

func (c *UserListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	users, err := ctx.Store.ListActiveUsers()
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Println("No active users.")
		return nil
	}

	cfg, err := ctx.Store.GetConfig()
	if err != nil {
		return err
	}

	fmt.Printf("Active users (%d):\n\n", len(users))
	for _, u := range users {
		last := u.LastNotified
		if last == "" {
			last = "never"
		}

		next := "n/a"
		if fire, err := scheduler.NextFire(u.Timezone, cfg.MotivationHours, time.Now()); err == nil {
			next = fire.Format(time.RFC3339)
		}

		fmt.Printf("  %d  %-24s  last notified: %-24s  next: %s\n", u.ID, u.Timezone, last, next)
	}
	return nil
}
