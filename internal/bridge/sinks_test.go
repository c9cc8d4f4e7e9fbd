package bridge_test

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/glizzus/opus-bridge/internal/bridge"
)

// silentListener accepts connections and never answers, like a host that is
// reachable but stuck.
func silentListener(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})
	return ln.Addr().String()
}

func TestSinksFromEnvBoundsConnectTime(t *testing.T) {
	addr := silentListener(t)
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("failed to split %s: %v", addr, err)
	}

	t.Setenv("BRIDGE_SINK_SETUP_TIMEOUT", "300ms")
	t.Setenv("MINIO_ENDPOINT", addr)
	t.Setenv("POSTGRES_HOST", host)
	t.Setenv("POSTGRES_PORT", port)
	t.Setenv("POSTGRES_USERNAME", "bridge")
	t.Setenv("REDIS_ADDR", "")

	start := time.Now()
	sinks, err := bridge.SinksFromEnv(t.Context())
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("SinksFromEnv returned error: %v", err)
	}
	defer sinks.Close()

	if sinks.Archive != nil {
		t.Error("archive was wired to an unresponsive endpoint")
	}
	if elapsed > 3*time.Second {
		t.Errorf("SinksFromEnv took %v, want it bounded by the setup timeout", elapsed)
	}
}

func TestSinksFromEnvRejectsBadTimeout(t *testing.T) {
	t.Setenv("BRIDGE_SINK_SETUP_TIMEOUT", "0s")
	if _, err := bridge.SinksFromEnv(t.Context()); err == nil {
		t.Error("expected an error for a zero setup timeout")
	}
}
