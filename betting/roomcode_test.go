package betting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		code, err := GenerateRoomCode()
		require.NoError(t, err)
		assert.Len(t, code, RoomCodeLength)
		assert.True(t, IsValidRoomCode(code), "generated code %q", code)
		seen[code] = struct{}{}
	}
	// 62^6 codes; 500 draws colliding more than a handful of times means a broken source
	assert.Greater(t, len(seen), 495)
}

func TestIsValidRoomCode(t *testing.T) {
	assert.True(t, IsValidRoomCode("aB3xY9"))
	assert.False(t, IsValidRoomCode("aB3xY"))
	assert.False(t, IsValidRoomCode("aB3xY90"))
	assert.False(t, IsValidRoomCode("aB-xY9"))
	assert.False(t, IsValidRoomCode(""))
}
