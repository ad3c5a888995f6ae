package xid

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsPrefixedAndUnique(t *testing.T) {
	a := New("msg")
	b := New("msg")

	assert.NotEqual(t, a, b)
	require.True(t, strings.HasPrefix(a, "msg_"))
	_, err := uuid.Parse(strings.TrimPrefix(a, "msg_"))
	assert.NoError(t, err)
}
