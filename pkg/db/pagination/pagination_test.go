package pagination

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "42", CreatedAt: "2025-01-02T03:04:05Z"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	cursor, err := DecodeCursor(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cursor.ID != "42" {
		t.Fatalf("expected id 42, got %q", cursor.ID)
	}
}

func TestBuildCursorPageInfo(t *testing.T) {
	type row struct{ id string }
	rows := []*row{{"a"}, {"b"}, {"c"}}

	page, info := BuildCursorPageInfo(rows, 2, func(r *row) string { return r.id })
	if !info.HasMore || info.NextPageToken != "b" {
		t.Fatalf("unexpected page info %+v", info)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(page))
	}

	_, info = BuildCursorPageInfo(rows, 5, func(r *row) string { return r.id })
	if info.HasMore {
		t.Fatalf("expected last page")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	at := time.Date(2026, 4, 2, 9, 30, 0, 123, time.FixedZone("EAT", 3*3600))
	pos, err := ParseToken(Token(snowflake.ID(42), at))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if pos.ID != 42 || !pos.CreatedAt.Equal(at) {
		t.Fatalf("unexpected position %+v", pos)
	}

	if pos, err := ParseToken("  "); err != nil || pos != nil {
		t.Fatalf("expected nil position for empty token, got %+v %v", pos, err)
	}
	if _, err := ParseToken("%%%"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	bad, _ := EncodeCursor(Cursor{ID: "x", CreatedAt: at.Format(time.RFC3339Nano)})
	if _, err := ParseToken(bad); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for bad id, got %v", err)
	}
}

func TestPaginationSize(t *testing.T) {
	cases := map[int]int{0: DefaultPageSize, -3: DefaultPageSize, 10: 10, 1000: MaxPageSize}
	for in, want := range cases {
		if got := (Pagination{PageSize: in}).Size(); got != want {
			t.Fatalf("size(%d): expected %d, got %d", in, want, got)
		}
	}
}
