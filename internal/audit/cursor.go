package audit

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// ErrInvalidCursor marks a pagination token the service could not decode. It
// is the one audit failure that is surfaced to callers, distinct from an
// empty result set.
var ErrInvalidCursor = fmt.Errorf("invalid cursor")

// cursorPayload is the decoded form of the opaque page token. It records the
// timestamp of the last record on the previous page; the next page is
// everything strictly older.
type cursorPayload struct {
	Timestamp time.Time `json:"timestamp"`
}

// encodeCursor builds the opaque token handed to clients. Callers must treat
// it as a black box; the encoding is private to this package.
func encodeCursor(t time.Time) string {
	payload, _ := json.Marshal(cursorPayload{Timestamp: t})
	return base64.StdEncoding.EncodeToString(payload)
}

// decodeCursor parses a client-supplied token. Any token this package did not
// produce (bad base64, bad JSON, missing timestamp) fails with
// ErrInvalidCursor.
func decodeCursor(cursor string) (time.Time, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var payload cursorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if payload.Timestamp.IsZero() {
		return time.Time{}, fmt.Errorf("%w: missing timestamp", ErrInvalidCursor)
	}
	return payload.Timestamp, nil
}
