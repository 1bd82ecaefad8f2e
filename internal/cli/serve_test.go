package cli

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestServe_HandlesEventsUntilCancelled(t *testing.T) {
	env := newTestEnv(t)
	addr := freeAddr(t)
	base := "http://" + addr

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan cliRun, 1)
	go func() {
		done <- env.runContext(t, ctx, "", "serve", "--addr", addr)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	post := func(body string) map[string]any {
		resp, err := http.Post(base+"/events", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out
	}

	assert.Equal(t, "prompted", post(`{"user_id":"u1","kind":"command","command":"/presensi"}`)["kind"])
	assert.Equal(t, "accepted", post(`{"user_id":"u1","display_name":"Ana","kind":"location","location":{"latitude":1,"longitude":2}}`)["kind"])

	cancel()
	select {
	case r := <-done:
		require.NoError(t, r.err, "stderr: %s", r.stderr)
		assert.Contains(t, r.stdout, "Listening on "+addr)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
}

func TestServe_RedisUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env["PRESENSI_PENDING_BACKEND"] = "redis"
	env["PRESENSI_REDIS_ADDR"] = freeAddr(t)

	r := env.run(t, "", "serve", "--addr", freeAddr(t))
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
	assert.Contains(t, r.err.Error(), "failed to connect to redis")
}
