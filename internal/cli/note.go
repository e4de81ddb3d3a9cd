package cli

import (
	"fmt"
	"strings"

	"github.com/mdminegoub-netizen/suqya-bot/internal/models"
)

type NoteAddCmd struct {
	User int64  `required:"" help:"Telegram chat id of the owner."`
	Text string `arg:"" help:"Note text."`
}

func (c *NoteAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	note := models.Note{
		UserID:    c.User,
		Text:      strings.TrimSpace(c.Text),
		CreatedAt: nowRFC3339(),
	}

	id, err := ctx.Store.AddNote(note)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Note %s added for user %d\n", id, c.User)
	return nil
}

type NoteListCmd struct {
	User int64 `required:"" help:"Telegram chat id of the owner."`
}

func (c *NoteListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	notes, err := ctx.Store.NotesForUser(c.User)
	if err != nil {
		return err
	}

	if len(notes) == 0 {
		fmt.Printf("No notes for user %d.\n", c.User)
		return nil
	}

	fmt.Printf("Notes for user %d (%d):\n\n", c.User, len(notes))
	for _, n := range notes {
		when := n.CreatedAt
		if when == "" {
			when = "unknown"
		}
		fmt.Printf("  [%s] %s\n", when, n.Text)
	}
	return nil
}
