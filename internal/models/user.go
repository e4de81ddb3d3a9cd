package models

// User represents one chat the service sends reminders to. The ID is the
// externally assigned chat identifier and never changes once created.
type User struct {
	ID           int64          `json:"id"`
	Timezone     string         `json:"timezone,omitempty"`
	Active       bool           `json:"active"`
	CreatedAt    string         `json:"created_at,omitempty"`    // RFC3339
	LastActive   string         `json:"last_active,omitempty"`   // RFC3339
	LastNotified string         `json:"last_notified,omitempty"` // RFC3339
	Profile      map[string]any `json:"profile,omitempty"`
}

func (u User) Validate() error {
	if u.ID == 0 {
		return &ValidationError{Entity: "user", Field: "id", Reason: "must be non-zero"}
	}
	return nil
}
