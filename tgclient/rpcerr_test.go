package tgclient

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gotd/td/tgerr"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitFlood(t *testing.T) {
	pad := floodPad
	floodPad = 0
	t.Cleanup(func() { floodPad = pad })
	logger, hook := test.NewNullLogger()
	ctx := context.Background()

	retry, err := WaitFlood(ctx, fmt.Errorf("get history: %w", tgerr.New(420, "FLOOD_WAIT_0")), logger)
	require.NoError(t, err)
	assert.True(t, retry)
	assert.Len(t, hook.Entries, 1)

	retry, err = WaitFlood(ctx, tgerr.New(400, "CHANNEL_INVALID"), logger)
	require.NoError(t, err)
	assert.False(t, retry)

	retry, err = WaitFlood(ctx, errors.New("connection reset"), logger)
	require.NoError(t, err)
	assert.False(t, retry)
}

func TestWaitFloodCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	retry, err := WaitFlood(ctx, tgerr.New(420, "FLOOD_WAIT_30"), nil)
	assert.False(t, retry)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(fmt.Errorf("wrapped: %w", tgerr.New(401, "AUTH_KEY_UNREGISTERED"))))
	assert.False(t, IsUnauthorized(tgerr.New(420, "FLOOD_WAIT_3")))
	assert.False(t, IsUnauthorized(errors.New("plain")))
}
