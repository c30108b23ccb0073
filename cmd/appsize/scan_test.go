package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ygrebnov/appsize"
)

func writeApp(t *testing.T, root, name, rel string, size int) {
	t.Helper()
	path := filepath.Join(root, name, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Concurrency:  2,
		BlockSize:    4096,
		MountsFile:   filepath.Join(t.TempDir(), "no-mounts"),
		MountPrefix:  "/mnt/asec/",
		LogLevel:     "info",
		Filter:       FilterConfig{Code: true, Data: true, Cache: true, External: true},
		InternalRoot: t.TempDir(),
		ExternalRoot: t.TempDir(),
	}
}

func TestRunScan(t *testing.T) {
	cfg := testConfig(t)
	writeApp(t, cfg.InternalRoot, "com.example.maps", "files/tiles", 10000)
	writeApp(t, cfg.InternalRoot, "com.example.mail", "bin/mail", 100)
	writeApp(t, cfg.ExternalRoot, "com.example.games", "media/level", 5000)

	var out, progress bytes.Buffer
	cfg.ProgressInterval = time.Millisecond
	require.NoError(t, runScan(context.Background(), cfg, zap.NewNop(), &out, &progress))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "APP")
	assert.Contains(t, lines[1], "com.example.maps")
	assert.Contains(t, lines[1], "12 KiB")
	assert.Contains(t, lines[2], "com.example.games")
	assert.Contains(t, lines[2], "external")
	assert.Contains(t, lines[3], "com.example.mail")
	assert.Contains(t, lines[4], "3 apps")
	assert.Contains(t, lines[4], "24 KiB")

	assert.Contains(t, progress.String(), "[3/3]")
}

func TestRunScan_ExternalOnlyNothingMeasured(t *testing.T) {
	cfg := testConfig(t)
	cfg.ExternalOnly = true
	writeApp(t, cfg.InternalRoot, "com.example.maps", "files/tiles", 1)

	var out bytes.Buffer
	require.NoError(t, runScan(context.Background(), cfg, zap.NewNop(), &out, &bytes.Buffer{}))
	assert.Equal(t, "no applications measured\n", out.String())
}

func TestRunScan_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	writeApp(t, cfg.InternalRoot, "a", "f", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runScan(ctx, cfg, zap.NewNop(), &bytes.Buffer{}, &bytes.Buffer{})
	require.ErrorIs(t, err, appsize.ErrCancelled)
}

func TestRunScan_MissingInternalRoot(t *testing.T) {
	cfg := testConfig(t)
	cfg.InternalRoot = filepath.Join(cfg.InternalRoot, "missing")
	require.Error(t, runScan(context.Background(), cfg, zap.NewNop(), &bytes.Buffer{}, &bytes.Buffer{}))
}

type stepSnapshotter struct{ n atomic.Int32 }

func (s *stepSnapshotter) Snapshot() appsize.Progress {
	return appsize.Progress{Label: "x", Completed: int(s.n.Load()), Total: 3}
}

func TestReportProgress(t *testing.T) {
	s := &stepSnapshotter{}
	finished := make(chan struct{})
	var buf bytes.Buffer
	done := make(chan struct{})

	go func() {
		reportProgress(s, time.Millisecond, finished, &buf)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	s.n.Store(3)
	close(finished)
	<-done

	assert.True(t, strings.HasSuffix(buf.String(), "\r[3/3] x\n"))
	assert.Contains(t, buf.String(), "[0/3] x")
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, []appsize.Entry{
		{Item: appsize.Item{Key: "k1", Label: "Maps"}, Size: 2048},
		{Item: appsize.Item{Key: "k2", Label: "Games", External: true}, Size: 1 << 20},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Regexp(t, `^Maps\s+k1\s+2\.0 KiB\s+internal$`, lines[1])
	assert.Regexp(t, `^Games\s+k2\s+1\.0 MiB\s+external$`, lines[2])
	assert.Contains(t, lines[3], "2 apps")
}
