package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter(t *testing.T) {
	ctx := context.Background()
	l := NewLimiter(nil, 2, time.Hour)

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	// other clients have their own budget
	ok, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDisabledLimiter(t *testing.T) {
	l := NewLimiter(nil, 0, time.Hour)
	for i := 0; i < 100; i++ {
		ok, err := l.Allow(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
