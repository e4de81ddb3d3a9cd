package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mdminegoub-netizen/suqya-bot/internal/logging"
	"github.com/mdminegoub-netizen/suqya-bot/internal/notifier"
	"github.com/mdminegoub-netizen/suqya-bot/internal/telegram"
)

type RunCmd struct {
	Token          string        `env:"SUQYA_BOT_TOKEN" required:"" help:"Telegram bot token."`
	Interval       time.Duration `default:"1m" help:"Tick interval; also the due-slot tolerance."`
	SendsPerSecond float64       `default:"25" help:"Outbound send rate limit."`
	LogFile        string        `type:"path" help:"Rotating JSON log file (stderr when unset)."`
	Debug          bool          `help:"Enable debug logging."`
}

func (c *RunCmd) Run(ctx *Context) error {
	logging.Setup(c.LogFile, c.Debug)

	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	sender, err := telegram.NewSender(c.Token)
	if err != nil {
		return err
	}

	dispatcher := notifier.New(ctx.Store, sender, notifier.Options{
		Interval:       c.Interval,
		SendsPerSecond: c.SendsPerSecond,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("suqya dispatcher running (tick %s), Ctrl-C to stop\n", c.Interval)
	if err := dispatcher.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
