package xconf

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type redisSection struct {
	Addr string        `koanf:"addr"`
	DB   int           `koanf:"db"`
	Dial time.Duration `koanf:"dial_timeout"`
}

const sampleYAML = `
coord:
  redis:
    addr: 127.0.0.1:6379
    db: 2
    dial_timeout: 3s
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew_YAML(t *testing.T) {
	path := writeFile(t, "coord.yaml", sampleYAML)

	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, FormatYAML, cfg.Format())

	var rs redisSection
	require.NoError(t, cfg.Unmarshal("coord.redis", &rs))
	assert.Equal(t, redisSection{Addr: "127.0.0.1:6379", DB: 2, Dial: 3 * time.Second}, rs)
	assert.Equal(t, 2, cfg.Client().Int("coord.redis.db"))
}

func TestNew_Errors(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = New("coord.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = New(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, ErrLoadFailed)

	_, err = New(writeFile(t, "bad.json", "{not json"))
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestNewFromBytes(t *testing.T) {
	cfg, err := NewFromBytes([]byte(`{"coord":{"redis":{"addr":"r:1"}}}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "r:1", cfg.Client().String("coord.redis.addr"))
	assert.Empty(t, cfg.Path())
	assert.ErrorIs(t, cfg.Reload(), ErrNotReloadable)

	empty, err := NewFromBytes(nil, FormatYAML)
	require.NoError(t, err)
	var rs redisSection
	require.NoError(t, empty.Unmarshal("coord.redis", &rs))
	assert.Zero(t, rs)

	_, err = NewFromBytes(nil, Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestOptions(t *testing.T) {
	type section struct {
		Addr string `json:"address"`
	}
	cfg, err := NewFromBytes([]byte("a:\n  b:\n    address: x\n"), FormatYAML, WithDelim("/"), WithTag("json"))
	require.NoError(t, err)

	var s section
	require.NoError(t, cfg.Unmarshal("a/b", &s))
	assert.Equal(t, "x", s.Addr)
}

func TestUnmarshal_TypeMismatch(t *testing.T) {
	cfg, err := NewFromBytes([]byte("coord:\n  redis:\n    db:\n      nested: 1\n"), FormatYAML)
	require.NoError(t, err)

	var rs redisSection
	assert.ErrorIs(t, cfg.Unmarshal("coord.redis", &rs), ErrUnmarshalFailed)
}

func TestReload(t *testing.T) {
	path := writeFile(t, "coord.yml", sampleYAML)
	cfg, err := New(path)
	require.NoError(t, err)
	old := cfg.Client()

	require.NoError(t, os.WriteFile(path, []byte("coord:\n  redis:\n    db: 5\n"), 0o600))
	require.NoError(t, cfg.Reload())
	assert.Equal(t, 5, cfg.Client().Int("coord.redis.db"))
	assert.Equal(t, 2, old.Int("coord.redis.db"), "old snapshot unchanged")

	// 解析失败保留旧配置
	require.NoError(t, os.WriteFile(path, []byte("coord: [\n"), 0o600))
	assert.ErrorIs(t, cfg.Reload(), ErrParseFailed)
	assert.Equal(t, 5, cfg.Client().Int("coord.redis.db"))
}

func TestReload_Concurrent(t *testing.T) {
	path := writeFile(t, "coord.yaml", sampleYAML)
	cfg, err := New(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, cfg.Reload())
		}()
		go func() {
			defer wg.Done()
			var rs redisSection
			assert.NoError(t, cfg.Unmarshal("coord.redis", &rs))
		}()
	}
	wg.Wait()
}
