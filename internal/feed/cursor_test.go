package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundtrip(t *testing.T) {
	tests := []struct {
		name   string
		cursor Cursor
	}{
		{
			name:   "forward",
			cursor: Cursor{CreatedAt: time.Now().UTC().Truncate(time.Microsecond), ID: 42},
		},
		{
			name:   "reverse",
			cursor: Cursor{CreatedAt: time.Now().UTC().Truncate(time.Microsecond), ID: 7, Reverse: true},
		},
		{
			name:   "zero id",
			cursor: Cursor{CreatedAt: time.Unix(0, 0).UTC(), ID: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := DecodeCursor(tt.cursor.Encode())
			require.NoError(t, err)
			require.NotNil(t, decoded)
			assert.True(t, decoded.CreatedAt.Equal(tt.cursor.CreatedAt))
			assert.Equal(t, tt.cursor.ID, decoded.ID)
			assert.Equal(t, tt.cursor.Reverse, decoded.Reverse)
		})
	}
}

func TestDecodeCursor_Empty(t *testing.T) {
	cursor, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "not base64", token: "%%%not-base64%%%"},
		{name: "garbage payload", token: "Z2FyYmFnZQ"},
		{name: "missing direction", token: "MTIzOjQ1Ng"},
		{name: "bad direction", token: "MTIzOjQ1Njp4"},
		{name: "non-numeric timestamp", token: "YWJjOjQ1Njpu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCursor(tt.token)
			assert.ErrorIs(t, err, ErrInvalidCursor)
		})
	}
}
