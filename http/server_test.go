package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T, router *Router) (string, context.CancelFunc, <-chan error) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer("test", router)
	srv.ShutdownTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ctx, listener)
	}()

	return "http://" + listener.Addr().String(), cancel, errCh
}

func TestServerServeAndShutdown(t *testing.T) {
	router := NewRouter()
	router.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	router.HandleFunc("", textHandler("index"))
	router.HandleFunc("error", func(request *Request) (*Response, error) {
		return NewResponse(http.StatusBadRequest), nil
	})

	baseURL, cancel, errCh := startTestServer(t, router)
	defer cancel()

	testCases := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/", http.StatusOK, "index"},
		{"/error", http.StatusBadRequest, ""},
		{"/nonexistent", http.StatusNotFound, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := http.Get(baseURL + tc.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.Equal(t, tc.wantBody, string(body))
		})
	}

	assert.Panics(t, func() {
		router.HandleFunc("late", textHandler("late"))
	}, "router must be frozen once serving")

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServerListenAndServeBadAddr(t *testing.T) {
	srv := NewServer("test", NewRouter())
	srv.OnListen = func(addr net.Addr) {
		t.Errorf("OnListen called for a failed bind: %s", addr)
	}

	err := srv.ListenAndServe(context.Background(), "127.0.0.1:-1")
	assert.Error(t, err)
}

func TestServerOnListen(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	router := NewRouter()
	router.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := NewServer("test", router)
	boundCh := make(chan net.Addr, 1)
	srv.OnListen = func(addr net.Addr) {
		boundCh <- addr
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ctx, listener)
	}()

	select {
	case addr := <-boundCh:
		assert.Equal(t, listener.Addr().String(), addr.String())
	case <-time.After(3 * time.Second):
		t.Fatal("OnListen was not called")
	}

	cancel()
	require.NoError(t, <-errCh)
}

func BenchmarkServe(b *testing.B) {
	router := NewRouter()
	router.Logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	router.HandleFunc("", textHandler("OK"))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		b.Fatal(err)
	}

	srv := NewServer("bench", router)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx, listener)

	url := "http://" + listener.Addr().String() + "/"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		resp, err := http.Get(url)
		if err != nil {
			b.Fatalf("request error: %v", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}
