package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit applies when a listing request does not name a page size.
	DefaultLimit = 25
	// MaxLimit caps the page size of any listing query.
	MaxLimit = 100
)

// Params carries the caller-facing pagination inputs.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor marks the (created_at, id) position after the last row of a page.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Encode serializes the cursor as an opaque URL-safe token.
func (c Cursor) Encode() string {
	payload := strconv.FormatInt(c.CreatedAt.UTC().UnixMicro(), 10) + ":" + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// DecodeCursor parses a token produced by Encode. Blank input means no cursor.
func DecodeCursor(raw string) (*Cursor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	micros, idPart, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return nil, fmt.Errorf("malformed cursor")
	}
	ts, err := strconv.ParseInt(micros, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor id: %w", err)
	}
	return &Cursor{CreatedAt: time.UnixMicro(ts).UTC(), ID: id}, nil
}

// ClampLimit applies the default and maximum page sizes.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// FetchLimit is ClampLimit plus one row to detect whether a next page exists.
func FetchLimit(limit int) int {
	return ClampLimit(limit) + 1
}
