package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestClampLimit(t *testing.T) {
	if ClampLimit(0) != DefaultLimit {
		t.Fatal("expected default for zero limit")
	}
	if ClampLimit(-3) != DefaultLimit {
		t.Fatal("expected default for negative limit")
	}
	if ClampLimit(500) != MaxLimit {
		t.Fatal("expected cap at max limit")
	}
	if ClampLimit(10) != 10 {
		t.Fatal("expected passthrough within range")
	}
	if FetchLimit(10) != 11 {
		t.Fatal("expected fetch limit to add the lookahead row")
	}
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{CreatedAt: time.Now().UTC().Truncate(time.Microsecond), ID: uuid.New()}

	decoded, err := DecodeCursor(cursor.Encode())
	if err != nil {
		t.Fatalf("DecodeCursor returned error: %v", err)
	}
	if !decoded.CreatedAt.Equal(cursor.CreatedAt) {
		t.Fatalf("timestamp mismatch: %v vs %v", decoded.CreatedAt, cursor.CreatedAt)
	}
	if decoded.ID != cursor.ID {
		t.Fatalf("id mismatch: %s vs %s", decoded.ID, cursor.ID)
	}
}

func TestDecodeCursorBlank(t *testing.T) {
	cursor, err := DecodeCursor("  ")
	if err != nil {
		t.Fatalf("DecodeCursor returned error: %v", err)
	}
	if cursor != nil {
		t.Fatal("expected nil cursor for blank input")
	}
}

func TestDecodeCursorInvalid(t *testing.T) {
	if _, err := DecodeCursor("not-base64%%%"); err == nil {
		t.Fatal("expected error for invalid encoding")
	}
	if _, err := DecodeCursor("bm8tc2VwYXJhdG9y"); err == nil {
		t.Fatal("expected error for payload without separator")
	}
}
