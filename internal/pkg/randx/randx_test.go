package randx

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifiersAreValidUUIDs(t *testing.T) {
	for _, id := range []string{MessageID(), ConnectionID(), AgentID(), VisitorID()} {
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	}
}

func TestConnectionIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := ConnectionID()
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestVisitorRef(t *testing.T) {
	ref, err := VisitorRef()
	require.NoError(t, err)

	assert.Len(t, ref, VisitorRefLength)
	for _, r := range ref {
		assert.True(t, strings.ContainsRune(Base62Chars, r))
	}
}
