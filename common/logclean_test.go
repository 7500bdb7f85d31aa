package common

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countLogs(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	return matches
}

func TestRunLogPath(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)
	assert.Equal(t, filepath.Join("logs", "download_videos_2025-01-02_03-04-05.log"),
		RunLogPath("logs", "download_videos", now))
}

func TestCleanupLogsRemovesOldest(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, fmt.Sprintf("run_%d.log", i))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		ts := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, ts, ts))
	}
	// 非日志文件不计数
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	removed, err := CleanupLogs(dir, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "run_0.log"),
		filepath.Join(dir, "run_1.log"),
		filepath.Join(dir, "run_2.log"),
	}, removed)
	assert.Len(t, countLogs(t, dir), 2)
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
}

func TestCleanupLogsUnderLimit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.log"), nil, 0o644))

	removed, err := CleanupLogs(dir, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Len(t, countLogs(t, dir), 1)
}

func TestCleanupLogsManyRuns(t *testing.T) {
	const limit = 4
	dir := t.TempDir()
	start := time.Now().Add(-24 * time.Hour)

	for run := 0; run < 3*limit; run++ {
		_, err := CleanupLogs(dir, limit, nil)
		require.NoError(t, err)

		now := start.Add(time.Duration(run) * time.Minute)
		path := RunLogPath(dir, "download_videos", now)
		require.NoError(t, os.WriteFile(path, []byte("run"), 0o644))
		require.NoError(t, os.Chtimes(path, now, now))

		logs := countLogs(t, dir)
		assert.LessOrEqual(t, len(logs), limit)
		// 留下的一定是最新的几次
		oldestKept := run - len(logs) + 1
		assert.FileExists(t, RunLogPath(dir, "download_videos", start.Add(time.Duration(oldestKept)*time.Minute)))
	}
}
