package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Document is one loosely typed record in a named collection. Typed entity
// helpers convert to and from Document at the store boundary.
type Document map[string]any

const (
	CollectionUsers   = "users"
	CollectionNotes   = "notes"
	CollectionLetters = "letters"
	CollectionTips    = "tips"
	CollectionConfig  = "global_config"
)

var collections = map[string]bool{
	CollectionUsers:   true,
	CollectionNotes:   true,
	CollectionLetters: true,
	CollectionTips:    true,
	CollectionConfig:  true,
}

// ErrNotFound is returned by Get when the named document is absent.
var ErrNotFound = errors.New("document not found")

// ConnectionError marks the store as unreachable. Fatal at startup; runtime
// callers log it and retry on their next tick.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("store unreachable: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func checkCollection(collection string) error {
	if !collections[collection] {
		return fmt.Errorf("unknown collection: %s", collection)
	}
	return nil
}

func encodeDoc(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return doc, nil
}

func decodeDoc(doc Document, v any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// docUserID extracts a user_id back-reference regardless of whether the
// document came from typed code (int64) or a JSON round trip (float64).
func docUserID(doc Document) string {
	switch v := doc["user_id"].(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case json.Number:
		return v.String()
	case string:
		return v
	default:
		return ""
	}
}

// docActive reports the active flag of a user document; absent means active.
func docActive(doc Document) bool {
	if v, ok := doc["active"].(bool); ok {
		return v
	}
	return true
}
