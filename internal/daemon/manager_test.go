// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"github.com/ManuGH/dealflow/internal/config"
	"github.com/ManuGH/dealflow/internal/log"
)

func reserveListenAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve listen addr: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func waitForListen(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return errors.New("listen timeout")
}

func testServerConfig(t *testing.T) ServerConfig {
	return ServerConfig{
		ListenAddr:      reserveListenAddr(t),
		ReadTimeout:     1 * time.Second,
		WriteTimeout:    1 * time.Second,
		IdleTimeout:     10 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 2 * time.Second,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func TestServerConfigFrom(t *testing.T) {
	cfg := config.Defaults()
	sc := ServerConfigFrom(cfg)
	if sc.ListenAddr != config.DefaultListenAddr {
		t.Errorf("ListenAddr = %q", sc.ListenAddr)
	}
	if sc.MetricsAddr != "" {
		t.Errorf("MetricsAddr = %q, want empty while metrics are disabled", sc.MetricsAddr)
	}
	if sc.ShutdownTimeout != config.DefaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v", sc.ShutdownTimeout)
	}

	cfg.Metrics.Enabled = true
	if got := ServerConfigFrom(cfg).MetricsAddr; got != config.DefaultMetricsAddr {
		t.Errorf("MetricsAddr = %q, want %q", got, config.DefaultMetricsAddr)
	}
}

func TestNewManager_Validation(t *testing.T) {
	tests := []struct {
		name string
		deps Deps
		want error
	}{
		{name: "valid", deps: Deps{Logger: log.WithComponent("test"), APIHandler: http.NotFoundHandler()}},
		{name: "disabled logger", deps: Deps{Logger: zerolog.Nop(), APIHandler: http.NotFoundHandler()}, want: ErrMissingLogger},
		{name: "missing handler", deps: Deps{Logger: log.WithComponent("test")}, want: ErrMissingAPIHandler},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, err := NewManager(ServerConfig{ListenAddr: "127.0.0.1:0"}, tt.deps)
			if tt.want == nil {
				if err != nil || mgr == nil {
					t.Fatalf("NewManager() = %v, %v", mgr, err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("NewManager() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestManager_StartStop_OK(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	serverCfg := testServerConfig(t)
	mgr, err := NewManager(serverCfg, Deps{Logger: log.WithComponent("test"), APIHandler: okHandler()})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- mgr.Start(ctx)
	}()

	if err := waitForListen(serverCfg.ListenAddr, 2*time.Second); err != nil {
		t.Fatalf("server did not start listening: %v", err)
	}

	cancel()

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}

	if err := mgr.Start(context.Background()); !errors.Is(err, ErrManagerAlreadyStarted) {
		t.Errorf("second Start() error = %v, want %v", err, ErrManagerAlreadyStarted)
	}
}

func TestManager_Shutdown_TimesOut(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	requestStarted := make(chan struct{})
	releaseHandler := make(chan struct{})
	var once sync.Once
	handler := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(requestStarted) })
		select {
		case <-r.Context().Done():
		case <-releaseHandler:
		}
	})

	serverCfg := testServerConfig(t)
	serverCfg.ShutdownTimeout = 100 * time.Millisecond

	mgr, err := NewManager(serverCfg, Deps{Logger: log.WithComponent("test"), APIHandler: handler})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- mgr.Start(ctx)
	}()

	if err := waitForListen(serverCfg.ListenAddr, 2*time.Second); err != nil {
		t.Fatalf("server did not start listening: %v", err)
	}

	requestDone := make(chan struct{})
	go func() {
		defer close(requestDone)
		client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://"+serverCfg.ListenAddr, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil {
			_ = resp.Body.Close()
		}
	}()

	select {
	case <-requestStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("expected in-flight request before shutdown")
	}

	cancel()

	select {
	case err := <-errChan:
		if err == nil {
			t.Fatal("expected shutdown timeout error, got nil")
		}
		if !strings.Contains(err.Error(), "shutdown errors") {
			t.Fatalf("unexpected shutdown error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}

	close(releaseHandler)

	select {
	case <-requestDone:
	case <-time.After(2 * time.Second):
		t.Fatal("blocked request did not terminate after shutdown")
	}
}

func TestManager_Shutdown_NotStarted(t *testing.T) {
	mgr, err := NewManager(ServerConfig{ListenAddr: "127.0.0.1:0"}, Deps{Logger: log.WithComponent("test"), APIHandler: http.NotFoundHandler()})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	err = mgr.Shutdown(context.Background())
	if !errors.Is(err, ErrManagerNotStarted) {
		t.Errorf("Shutdown() error = %v, want %v", err, ErrManagerNotStarted)
	}
}

func TestManager_ShutdownHooksRunLIFO(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	serverCfg := testServerConfig(t)
	mgr, err := NewManager(serverCfg, Deps{Logger: log.WithComponent("test"), APIHandler: okHandler()})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	var mu sync.Mutex
	var order []string
	record := func(name string, err error) ShutdownHook {
		return func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return err
		}
	}
	mgr.RegisterShutdownHook("store", record("store", nil))
	mgr.RegisterShutdownHook("telemetry", record("telemetry", errors.New("flush failed")))

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- mgr.Start(ctx)
	}()
	if err := waitForListen(serverCfg.ListenAddr, 2*time.Second); err != nil {
		t.Fatalf("server did not start listening: %v", err)
	}
	cancel()

	err = <-errChan
	if err == nil || !strings.Contains(err.Error(), "hook telemetry") {
		t.Fatalf("Start() error = %v, want failing hook reported", err)
	}
	if got := strings.Join(order, ","); got != "telemetry,store" {
		t.Fatalf("hook order = %s, want telemetry,store", got)
	}
}

func TestManager_WithMetrics(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# HELP test_metric\n"))
	})

	serverCfg := testServerConfig(t)
	serverCfg.MetricsAddr = reserveListenAddr(t)

	mgr, err := NewManager(serverCfg, Deps{
		Logger:         log.WithComponent("test"),
		APIHandler:     okHandler(),
		MetricsHandler: metricsHandler,
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- mgr.Start(ctx)
	}()

	if err := waitForListen(serverCfg.MetricsAddr, 2*time.Second); err != nil {
		t.Fatalf("metrics server did not start listening: %v", err)
	}

	client := &http.Client{Timeout: time.Second, Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + serverCfg.MetricsAddr + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(body), "test_metric") {
		t.Errorf("metrics body = %q", body)
	}

	cancel()

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

func TestManager_PropagatesListenErrors(t *testing.T) {
	testServer := httptest.NewServer(http.NotFoundHandler())
	defer testServer.Close()

	serverCfg := testServerConfig(t)
	serverCfg.ListenAddr = testServer.Listener.Addr().String()

	mgr, err := NewManager(serverCfg, Deps{Logger: log.WithComponent("test"), APIHandler: http.NotFoundHandler()})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := mgr.Start(ctx); err == nil {
		t.Error("Start() expected error for port conflict, got nil")
	}
}
