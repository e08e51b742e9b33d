package feed

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PageSize is the fixed number of posts per feed page
const PageSize = 20

// ErrInvalidCursor is returned for cursors the server did not issue
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is an opaque pagination position: the (created_at, id) of the edge
// item of a page, plus the direction to read from it. The id tie-break is
// what keeps pages stable when posts share a timestamp; created_at alone is
// not unique enough.
type Cursor struct {
	CreatedAt time.Time
	ID        int64
	Reverse   bool
}

// Encode serializes the cursor into a URL-safe token
func (c Cursor) Encode() string {
	dir := "n"
	if c.Reverse {
		dir = "p"
	}
	raw := fmt.Sprintf("%d:%d:%s", c.CreatedAt.UnixMicro(), c.ID, dir)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor token. An empty token means "from the start"
// and decodes to nil.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 3 {
		return nil, ErrInvalidCursor
	}

	usec, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	cursor := &Cursor{CreatedAt: time.UnixMicro(usec).UTC(), ID: id}
	switch parts[2] {
	case "n":
	case "p":
		cursor.Reverse = true
	default:
		return nil, ErrInvalidCursor
	}

	return cursor, nil
}
