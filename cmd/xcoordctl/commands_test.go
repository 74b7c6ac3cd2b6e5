package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI 以给定参数执行 xcoordctl，返回退出码和输出。
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"xcoordctl"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func startRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr
}

func streamEntries(t *testing.T, mr *miniredis.Miniredis, key string) ([]redis.XMessage, error) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	return client.XRange(context.Background(), key, "-", "+").Result()
}

func TestPing(t *testing.T) {
	mr := startRedis(t)

	code, out, _ := runCLI(t, "--addr", mr.Addr(), "ping")
	assert.Equal(t, 0, code)
	assert.Equal(t, "PONG\n", out)
}

func TestPing_Unreachable(t *testing.T) {
	mr := startRedis(t)
	addr := mr.Addr()
	mr.Close()

	code, _, errOut := runCLI(t, "--addr", addr, "--timeout", "500ms", "ping")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "xkv: ping")
}

func TestLockUnlock(t *testing.T) {
	mr := startRedis(t)

	code, out, _ := runCLI(t, "--addr", mr.Addr(), "lock", "--lease", "5s", "order:1")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "granted order:1"), out)
	assert.True(t, mr.Exists("order:1"))

	code, out, _ = runCLI(t, "--addr", mr.Addr(), "lock", "order:1")
	assert.Equal(t, 1, code)
	assert.Equal(t, "not granted order:1\n", out)

	code, out, _ = runCLI(t, "--addr", mr.Addr(), "unlock", "order:1")
	assert.Equal(t, 0, code)
	assert.Equal(t, "released order:1\n", out)
	assert.False(t, mr.Exists("order:1"))
}

func TestClaim(t *testing.T) {
	mr := startRedis(t)

	code, out, _ := runCLI(t, "--addr", mr.Addr(), "claim", "--token", "node-a", "--ttl", "5s", "report")
	assert.Equal(t, 0, code)
	assert.Equal(t, "claimed report token=node-a ttl=5s\n", out)
	assert.Equal(t, 5*time.Second, mr.TTL("report"))

	code, out, _ = runCLI(t, "--addr", mr.Addr(), "claim", "report")
	assert.Equal(t, 1, code)
	assert.Equal(t, "not claimed report\n", out)

	v, err := mr.Get("report")
	require.NoError(t, err)
	assert.Equal(t, "node-a", v)
}

func TestXAddAndPublish(t *testing.T) {
	mr := startRedis(t)

	code, out, _ := runCLI(t, "--addr", mr.Addr(), "xadd", "orders", `{"id": 42}`)
	assert.Equal(t, 0, code)
	assert.NotEmpty(t, strings.TrimSpace(out))

	entries, err := streamEntries(t, mr, "STREAM:orders")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]any{"payload": `{"id":42}`}, entries[0].Values)

	code, out, _ = runCLI(t, "--addr", mr.Addr(), "publish", "alerts", `"hi"`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "0\n", out)
}

func TestConfigFile(t *testing.T) {
	mr := startRedis(t)
	path := filepath.Join(t.TempDir(), "coord.yaml")
	content := "coord:\n" +
		"  redis:\n    addr: " + mr.Addr() + "\n" +
		"  lock:\n    key_prefix: \"lease:\"\n" +
		"  stream:\n    key_prefix: \"ev:\"\n    max_len: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	code, _, _ := runCLI(t, "-c", path, "lock", "k")
	assert.Equal(t, 0, code)
	assert.True(t, mr.Exists("lease:k"))

	for range 4 {
		code, _, _ = runCLI(t, "-c", path, "xadd", "s", "1")
		require.Equal(t, 0, code)
	}
	entries, err := streamEntries(t, mr, "ev:s")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestUsageErrors(t *testing.T) {
	mr := startRedis(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing key", []string{"lock"}},
		{"extra args", []string{"unlock", "a", "b"}},
		{"blank key", []string{"lock", " "}},
		{"negative lease", []string{"lock", "--lease=-1s", "k"}},
		{"zero ttl", []string{"claim", "--ttl", "0s", "k"}},
		{"invalid json", []string{"xadd", "s", "{bad"}},
		{"negative retries", []string{"--retries=-1", "ping"}},
		{"unknown flag", []string{"--nope", "ping"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, append([]string{"--addr", mr.Addr()}, tt.args...)...)
			assert.Equal(t, 2, code)
		})
	}
}

func TestRetries(t *testing.T) {
	mr := startRedis(t)
	mr.SetError("ERR injected")

	start := time.Now()
	code, _, errOut := runCLI(t, "--addr", mr.Addr(), "--retries", "2", "unlock", "k")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "injected")
	assert.GreaterOrEqual(t, time.Since(start), 2*retryDelay)
}

func TestRetries_UsageErrorNotRetried(t *testing.T) {
	mr := startRedis(t)

	start := time.Now()
	code, _, _ := runCLI(t, "--addr", mr.Addr(), "--retries", "3", "lock", " ")
	assert.Equal(t, 2, code)
	assert.Less(t, time.Since(start), retryDelay)
}
