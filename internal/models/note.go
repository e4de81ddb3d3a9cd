package models

import "strings"

// Note is a "heart memo": a short free-text entry belonging to one user.
// The user record references it only through user_id; note content is never
// embedded back into the user document.
type Note struct {
	ID        string `json:"id,omitempty"`
	UserID    int64  `json:"user_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at,omitempty"` // RFC3339
	UpdatedAt string `json:"updated_at,omitempty"` // RFC3339
}

func (n Note) Validate() error {
	if n.UserID == 0 {
		return &ValidationError{Entity: "note", Field: "user_id", Reason: "must be non-zero"}
	}
	if strings.TrimSpace(n.Text) == "" {
		return &ValidationError{Entity: "note", Field: "text", Reason: "must be non-empty"}
	}
	return nil
}

// Letter is a message a user wrote to their future self. DeliverAt is carried
// through as opaque metadata; no delivery scheduling is derived from it.
type Letter struct {
	ID        string `json:"id,omitempty"`
	UserID    int64  `json:"user_id"`
	Content   string `json:"content"`
	DeliverAt string `json:"deliver_at,omitempty"`
	CreatedAt string `json:"created_at,omitempty"` // RFC3339
}

func (l Letter) Validate() error {
	if l.UserID == 0 {
		return &ValidationError{Entity: "letter", Field: "user_id", Reason: "must be non-zero"}
	}
	if l.Content == "" {
		return &ValidationError{Entity: "letter", Field: "content", Reason: "must be non-empty"}
	}
	return nil
}
