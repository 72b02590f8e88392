package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingServe mimics http.Server.ListenAndServe: it blocks until Shutdown
// is called and then reports http.ErrServerClosed.
func blockingServe(srv *http.Server) func() error {
	closed := make(chan struct{})
	srv.RegisterOnShutdown(func() { close(closed) })
	return func() error {
		<-closed
		return http.ErrServerClosed
	}
}

func TestGracefulServer_RunsHooksInReverseOrder(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0"}
	gs := NewGracefulServer(srv, testLogger, time.Second)

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"tracing", "cache"} {
		gs.RegisterShutdownHook(name, func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, gs.Run(ctx, blockingServe(srv)))
	assert.Equal(t, []string{"cache", "tracing"}, order)
}

func TestGracefulServer_HookError(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0"}
	gs := NewGracefulServer(srv, testLogger, time.Second)

	boom := errors.New("flush failed")
	gs.RegisterShutdownHook("tracing", func(ctx context.Context) error { return boom })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := gs.Run(ctx, blockingServe(srv))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "tracing")
}

func TestGracefulServer_ServeFailure(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0"}
	gs := NewGracefulServer(srv, testLogger, time.Second)

	listenErr := errors.New("address in use")
	err := gs.Run(context.Background(), func() error { return listenErr })
	assert.ErrorIs(t, err, listenErr)
}
