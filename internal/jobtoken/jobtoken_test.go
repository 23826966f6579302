package jobtoken

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenNotCancelledByDefault(t *testing.T) {
	tok := New(context.Background())
	require.False(t, tok.Cancelled())
	require.NoError(t, tok.CheckStage())
}

func TestTokenReflectsParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tok := New(ctx)
	require.False(t, tok.Cancelled())

	cancel()
	require.True(t, tok.Cancelled())
	require.Error(t, tok.CheckStage())
}

func TestCleanupRunsRegisteredFunctionsInReverseOrderOnce(t *testing.T) {
	tok := New(context.Background())
	var order []int
	tok.OnCleanup(func() { order = append(order, 1) })
	tok.OnCleanup(func() { order = append(order, 2) })
	tok.OnCleanup(func() { order = append(order, 3) })

	tok.Cleanup()
	tok.Cleanup() // second call must be a no-op

	require.Equal(t, []int{3, 2, 1}, order)
}
