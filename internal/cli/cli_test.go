package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitExitFollowsParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	exit, stop := waitExit(ctx)
	defer stop()

	select {
	case <-exit.Done():
		t.Fatal("exited before cancellation")
	default:
	}

	cancel()

	select {
	case <-exit.Done():
	case <-time.After(time.Second):
		t.Fatal("parent cancellation did not reach waitExit")
	}
	assert.ErrorIs(t, exit.Err(), context.Canceled)
}
