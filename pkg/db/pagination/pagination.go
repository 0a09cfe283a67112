package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 250
)

// ErrInvalidToken is returned for page tokens that were not issued by Token.
var ErrInvalidToken = errors.New("invalid_page_token")

type Pagination struct {
	PageToken string `form:"pageToken"`
	PageSize  int    `form:"pageSize,default=50" binding:"gte=1,lte=250"`
}

// Size clamps the requested page size into [1, MaxPageSize].
func (p Pagination) Size() int {
	switch {
	case p.PageSize <= 0:
		return DefaultPageSize
	case p.PageSize > MaxPageSize:
		return MaxPageSize
	default:
		return p.PageSize
	}
}

type PageInfo struct {
	NextPageToken string `json:"nextPageToken"`
	HasMore       bool   `json:"hasMore"`
}

// Cursor is the wire form of a keyset position, newest first by
// (created_at, id).
type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Position is a decoded cursor.
type Position struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

// Token encodes the position of the last row on a page.
func Token(id snowflake.ID, createdAt time.Time) string {
	token, err := EncodeCursor(Cursor{ID: id.String(), CreatedAt: createdAt.UTC().Format(time.RFC3339Nano)})
	if err != nil {
		return ""
	}
	return token
}

// ParseToken decodes a token from Token. An empty token yields nil.
func ParseToken(token string) (*Position, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	cursor, err := DecodeCursor(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
	if err != nil {
		return nil, ErrInvalidToken
	}
	id, err := snowflake.ParseString(strings.TrimSpace(cursor.ID))
	if err != nil || id == 0 {
		return nil, ErrInvalidToken
	}
	return &Position{ID: id, CreatedAt: createdAt}, nil
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}
	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

// BuildCursorPageInfo trims rows fetched with limit+1 back to limit and
// reports whether more exist.
func BuildCursorPageInfo[T any](data []*T, limit int, extractCursor func(*T) string) ([]*T, *PageInfo) {
	if len(data) <= limit {
		return data, &PageInfo{}
	}
	data = data[:limit]
	return data, &PageInfo{
		HasMore:       true,
		NextPageToken: extractCursor(data[len(data)-1]),
	}
}
