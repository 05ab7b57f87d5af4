package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/df07/pbrt-scene/config"
)

const sceneText = `LookAt 0 0 -5  0 0 0  0 1 0
Camera "perspective"
WorldBegin
Shape "sphere"
Shape "spheer"
LightSource "point" "point from" [0 4 0]
WorldEnd
`

// syncBuffer is a bytes.Buffer safe for the watch goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func setup(t *testing.T) string {
	t.Helper()
	homedir.DisableCache = true
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvFlags, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "scene.pbrt")
	require.NoError(t, os.WriteFile(path, []byte(sceneText), 0o644))
	return path
}

func runArgs(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunText(t *testing.T) {
	path := setup(t)
	code, stdout, stderr := runArgs(t, path)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "shapes: 1")
	assert.Contains(t, stdout, "lights: 1")
	assert.Contains(t, stderr, "parsing scene "+path)
	assert.Contains(t, stderr, "ERRORS (1):")
	assert.Contains(t, stderr, `did you mean "sphere"`)
}

func TestRunJSONWithSwap(t *testing.T) {
	path := setup(t)
	code, stdout, stderr := runArgs(t, "--format", "json", "--swapaxis", "y z", path)

	require.Equal(t, 0, code, stderr)
	assert.Equal(t, 4.0, gjson.Get(stdout, "lights.0.position.2").Float())
	assert.Contains(t, stderr, "swapping axis")
}

func TestRunProgressLog(t *testing.T) {
	path := setup(t)
	text := strings.Replace(sceneText, "WorldBegin\n", "WorldBegin\nTexture \"base\" \"spectrum\" \"constant\"\n", 1)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	code, _, stderr := runArgs(t, path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, `level=INFO msg="made spectrum texture base"`)
	assert.NotContains(t, stderr, "time=")

	code, _, stderr = runArgs(t, "--silent", path)
	require.Equal(t, 0, code)
	assert.NotContains(t, stderr, "made spectrum texture")
}

func TestRunNoConvert(t *testing.T) {
	path := setup(t)
	out := filepath.Join(t.TempDir(), "summary.yaml")
	code, stdout, _ := runArgs(t, "--noconvert", "--swapaxis", "y z", "--format", "yaml", path, out)

	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "kind: point")
	assert.Contains(t, stdout, "position: [0, 4, 0]")
	assert.NoFileExists(t, out)
}

func TestRunOutputFile(t *testing.T) {
	path := setup(t)
	out := filepath.Join(t.TempDir(), "summary.json")
	code, stdout, _ := runArgs(t, "--format=json", path, out)

	require.Equal(t, 0, code)
	assert.Empty(t, stdout)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gjson.GetBytes(data, "shapes.#").Int())
}

func TestRunMissingFile(t *testing.T) {
	setup(t)
	code, _, stderr := runArgs(t, filepath.Join(t.TempDir(), "missing.pbrt"))

	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "cannot open file")
}

func TestRunArgumentErrors(t *testing.T) {
	path := setup(t)
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"no input", nil, "usage:"},
		{"too many", []string{path, "a", "b"}, "usage:"},
		{"bad flag", []string{"--bogus", path}, "bogus"},
		{"bad format", []string{"--format", "xml", path}, "invalid configuration"},
		{"odd swap", []string{"--swapaxis", "x", path}, "swap_axis needs pairs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runArgs(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.expected)
		})
	}
}

func TestRunConfigFile(t *testing.T) {
	path := setup(t)
	conf := filepath.Join(t.TempDir(), "conf.toml")
	require.NoError(t, os.WriteFile(conf, []byte("format = \"json\"\nsilent = true\n"), 0o644))

	code, stdout, _ := runArgs(t, "--config", conf, path)
	require.Equal(t, 0, code)
	assert.True(t, gjson.Valid(stdout), stdout)
}

func TestRunPreview(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping render in short mode")
	}
	path := setup(t)
	out := filepath.Join(t.TempDir(), "preview.png")
	code, _, stderr := runArgs(t, "--preview", out, "--previewwidth", "16", path)

	require.Equal(t, 0, code, stderr)
	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
}

func TestWatch(t *testing.T) {
	path := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr syncBuffer
	done := make(chan int)
	go func() {
		done <- run(ctx, []string{"--watch", path}, &stdout, &stderr)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "shapes: 1")
	}, 5*time.Second, 20*time.Millisecond)

	updated := strings.Replace(sceneText, "Shape \"spheer\"", "Shape \"sphere\"", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "shapes: 2")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	// the fixed scene starts from an empty report
	assert.Equal(t, 1, strings.Count(stderr.String(), "ERRORS (1):"))
}
