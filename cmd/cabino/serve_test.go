package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunServices_BotFailureStartsNothing(t *testing.T) {
	var started atomic.Bool
	server := func(ctx context.Context) error {
		started.Store(true)
		<-ctx.Done()
		return nil
	}
	newBot := func() (service, error) {
		return nil, errors.New("Unauthorized")
	}

	err := runServices(context.Background(), server, newBot)
	require.ErrorContains(t, err, "failed to create bot: Unauthorized")
	assert.False(t, started.Load())
}

func TestRunServices_ServerFailureStopsBot(t *testing.T) {
	botStopped := make(chan struct{})
	server := func(context.Context) error {
		return errors.New("listen tcp :8080: bind: address already in use")
	}
	newBot := func() (service, error) {
		return func(ctx context.Context) error {
			<-ctx.Done()
			close(botStopped)
			return nil
		}, nil
	}

	err := runServices(context.Background(), server, newBot)
	require.ErrorContains(t, err, "address already in use")
	select {
	case <-botStopped:
	default:
		t.Fatal("bot still running after runServices returned")
	}
}

func TestRunServices_WithoutBot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runServices(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}, nil)
	assert.NoError(t, err)
}
