package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/league-auth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ServeAndShutdown(t *testing.T) {
	api := newTestAPI(t)

	listen, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(listen.Addr().String(), api.router, logging.Nop{}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listen) }()

	url := "http://" + listen.Addr().String() + "/api/health"
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(url)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop after context cancel")
	}
}

func TestServer_RunBadAddress(t *testing.T) {
	srv := NewServer("256.0.0.1:bad", http.NotFoundHandler(), logging.Nop{}, 0)
	assert.Error(t, srv.Run(context.Background()))
}

func TestConstructors_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		h := NewHandler(failingService{}, nil, nil, nil)
		NewRouter(h, nil)
		NewServer("127.0.0.1:0", http.NotFoundHandler(), nil, 0)
	})
}
