//go:build !windows

package cli

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalContext_CapturesSignal(t *testing.T) {
	ctx := NewSignalContext(context.Background(), syscall.SIGUSR1)
	defer ctx.Cancel()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled by the signal")
	}
	assert.Equal(t, syscall.SIGUSR1, ctx.Signal())
}

func TestSignalContext_CancelledByParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx := NewSignalContext(parent, syscall.SIGUSR2)
	cancel()

	<-ctx.Done()
	assert.Nil(t, ctx.Signal())
}
