package cli

import (
	"time"

	"github.com/mdminegoub-netizen/suqya-bot/internal/storage"
)

type Context struct {
	Store storage.Store
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
