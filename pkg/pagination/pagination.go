package pagination

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Cursor points at the last row of the previous page. Ordering is
// (created_at DESC, id DESC); the id breaks ties between rows created in
// the same instant.
type Cursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        uuid.UUID `json:"id"`
}

// Encode serializes the cursor as URL-safe base64 for use as a query param.
func (c Cursor) Encode() string {
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(raw)
}

// Decode parses a cursor produced by Encode. An empty token yields a zero
// cursor meaning "first page".
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed cursor")
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed cursor")
	}
	return c, nil
}

// IsZero reports whether the cursor denotes the first page.
func (c Cursor) IsZero() bool {
	return c.CreatedAt.IsZero() && c.ID == uuid.Nil
}

// ClampLimit normalizes a requested page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Page wraps a result slice with the cursor for the following page. NextCursor
// is empty on the last page.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}
