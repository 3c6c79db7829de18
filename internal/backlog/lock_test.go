package backlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLockRunsFnAndPropagatesError(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	ran := false
	err = s.withLock(func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran, "expected fn to run under the lock")

	wantErr := newError(RuleTaskNotFound, "boom")
	err = s.withLock(func() error { return wantErr })
	assert.Same(t, wantErr, err, "expected withLock to propagate fn's error")
}
