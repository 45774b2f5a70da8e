package filestore

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, lockError("todo.json.lock", syscall.EWOULDBLOCK))
	assert.NoError(t, lockError("todo.json.lock", fmt.Errorf("flock: %w", syscall.EWOULDBLOCK)))

	err := lockError("todo.json.lock", syscall.EINVAL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, syscall.EINVAL))
	assert.Contains(t, err.Error(), "lock todo.json.lock")
}
