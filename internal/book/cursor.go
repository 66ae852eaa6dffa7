package book

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidCursor marks a cursor the client supplied that cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

// Catalog listings paginate by id descending, so the cursor carries the last
// id seen rather than a timestamp.
type cursorPayload struct {
	ID string `json:"id"`
}

func encodeCursor(id string) string {
	raw, _ := json.Marshal(cursorPayload{ID: id})
	return base64.StdEncoding.EncodeToString(raw)
}

func decodeCursor(cursor string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var payload cursorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if payload.ID == "" {
		return "", fmt.Errorf("%w: missing id", ErrInvalidCursor)
	}
	return payload.ID, nil
}
