package cli

import (
	"fmt"

	"github.com/mdminegoub-netizen/suqya-bot/internal/models"
)

type LetterAddCmd struct {
	User      int64  `required:"" help:"Telegram chat id of the author."`
	Content   string `arg:"" help:"Letter content."`
	DeliverAt string `help:"Intended delivery time, stored as-is."`
}

func (c *LetterAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	letter := models.Letter{
		UserID:    c.User,
		Content:   c.Content,
		DeliverAt: c.DeliverAt,
		CreatedAt: nowRFC3339(),
	}

	id, err := ctx.Store.AddLetter(letter)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Letter %s added for user %d\n", id, c.User)
	return nil
}

type LetterListCmd struct {
	User int64 `required:"" help:"Telegram chat id of the author."`
}

func (c *LetterListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	letters, err := ctx.Store.LettersForUser(c.User)
	if err != nil {
		return err
	}

	if len(letters) == 0 {
		fmt.Printf("No letters for user %d.\n", c.User)
		return nil
	}

	fmt.Printf("Letters for user %d (%d):\n\n", c.User, len(letters))
	for _, l := range letters {
		when := l.CreatedAt
		if when == "" {
			when = "unknown"
		}
		fmt.Printf("  [%s]", when)
		if l.DeliverAt != "" {
			fmt.Printf(" (deliver at %s)", l.DeliverAt)
		}
		fmt.Printf(" %s\n", l.Content)
	}
	return nil
}
