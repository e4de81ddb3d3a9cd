package models

import "strings"

// Tip is a global piece of motivational/hydration content. Tips are not owned
// by any user.
type Tip struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

func (t Tip) Validate() error {
	if strings.TrimSpace(t.Text) == "" {
		return &ValidationError{Entity: "tip", Field: "text", Reason: "must be non-empty"}
	}
	return nil
}

// ConfigDocumentID is the fixed id of the singleton GlobalConfig document.
const ConfigDocumentID = "global"

// DefaultMotivationHours are the hour marks used when a legacy snapshot
// carries no motivation_hours of its own.
var DefaultMotivationHours = []int{6, 9, 12, 15, 18, 21}

// GlobalConfig is the singleton configuration document. Benefits stays empty
// after migration; tip content lives in the tips collection.
type GlobalConfig struct {
	MotivationHours    []int    `json:"motivation_hours"`
	MotivationMessages []string `json:"motivation_messages"`
	Benefits           []string `json:"benefits"`
}

func (c GlobalConfig) Validate() error {
	for _, h := range c.MotivationHours {
		if h < 0 || h > 23 {
			return &ValidationError{Entity: "global_config", Field: "motivation_hours", Reason: "hours must be in 0..23"}
		}
	}
	return nil
}
