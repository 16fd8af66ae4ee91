package optimizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"club-la-victoria/internal/common/errors"
	"club-la-victoria/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "hero-bg.png"), 40, 20)
	writeJPEG(t, filepath.Join(root, "tennis.jpg"), 30, 20)
	writePNG(t, filepath.Join(root, "merchandising", "gorra-1.png"), 20, 20)
	writeFile(t, filepath.Join(root, "README.md"), []byte("docs"))
	return root
}

func TestRun_IdempotentSecondRunSkipsEverything(t *testing.T) {
	root := buildTree(t)
	runner := newTestRunner(t, 1)

	first := runOnce(t, runner, root)
	assert.Equal(t, 3, first.Optimized)
	assert.Equal(t, 0, first.Skipped)
	assert.Equal(t, 0, first.Failed)
	assert.NotEmpty(t, first.RunID)

	second := runOnce(t, runner, root)
	assert.Equal(t, 0, second.Optimized)
	assert.Equal(t, 3, second.Skipped)
	assert.Equal(t, 0, second.Failed)
	for _, r := range second.Results {
		assert.Equal(t, ReasonAlreadyFresh, r.Reason)
	}
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRun_DerivedFilesAreNotReprocessed(t *testing.T) {
	root := buildTree(t)
	runner := newTestRunner(t, 1)
	runOnce(t, runner, root)

	second := runOnce(t, runner, root)
	for _, r := range second.Results {
		assert.NotEqual(t, DerivedExt, filepath.Ext(r.Task.SourcePath))
	}
	assert.Equal(t, 3, second.Total())
}

func TestRun_OneCorruptFileIsIsolated(t *testing.T) {
	root := buildTree(t)
	corrupt := writeFile(t, filepath.Join(root, "gym.png"), []byte("definitely not a png"))

	summary := runOnce(t, newTestRunner(t, 1), root)
	assert.Equal(t, 4, summary.Total())
	assert.Equal(t, 3, summary.Optimized)
	assert.Equal(t, 1, summary.Failed)

	for _, r := range summary.Results {
		if r.Task.SourcePath == corrupt {
			assert.Equal(t, KindFailed, r.Kind)
			assert.NotEmpty(t, r.Message)
		}
	}

	again := runOnce(t, newTestRunner(t, 1), root)
	assert.Equal(t, 3, again.Skipped)
	assert.Equal(t, 1, again.Failed)
}

func TestRun_FailedImageLoggedWithErrorCode(t *testing.T) {
	root := buildTree(t)
	corrupt := writeFile(t, filepath.Join(root, "gym.png"), []byte("definitely not a png"))

	core, logs := observer.New(zap.WarnLevel)
	cfg := DefaultConfig()
	cfg.Workers = 1
	runner := NewRunner(cfg, pngEncoder{}, logger.NewZapAdapter(zap.New(core)))
	summary := runOnce(t, runner, root)
	require.Equal(t, 1, summary.Failed)

	entries := logs.FilterMessage("image failed").AllUntimed()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, corrupt, fields["source"])
	assert.Equal(t, string(errors.ErrCodeImageTaskFailed), fields["errorCode"])
	assert.NotEmpty(t, fields["error"])
}

func TestRun_CollisionFailsLaterTask(t *testing.T) {
	root := t.TempDir()
	first := writeJPEG(t, filepath.Join(root, "pool.jpg"), 10, 10)
	second := writePNG(t, filepath.Join(root, "pool.png"), 10, 10)

	summary := runOnce(t, newTestRunner(t, 1), root)
	require.Len(t, summary.Results, 2)

	assert.Equal(t, first, summary.Results[0].Task.SourcePath)
	assert.Equal(t, KindOptimized, summary.Results[0].Kind)
	assert.Equal(t, second, summary.Results[1].Task.SourcePath)
	assert.Equal(t, KindFailed, summary.Results[1].Kind)
	assert.Contains(t, summary.Results[1].Message, "already claimed")
}

func TestRun_ParallelKeepsDiscoveryOrder(t *testing.T) {
	root := t.TempDir()
	var want []string
	for i := 0; i < 12; i++ {
		path := filepath.Join(root, fmt.Sprintf("img-%02d.png", i))
		writePNG(t, path, 16+i, 8)
		want = append(want, path)
	}
	writeFile(t, filepath.Join(root, "img-05b.png"), []byte("bad"))
	want = append(want, filepath.Join(root, "img-05b.png"))
	sort.Strings(want)

	summary := runOnce(t, newTestRunner(t, 4), root)
	require.Equal(t, len(want), summary.Total())

	got := make([]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		got = append(got, r.Task.SourcePath)
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 12, summary.Optimized)
	assert.Equal(t, 1, summary.Failed)
}

func TestRun_RootCannotBeWalked(t *testing.T) {
	summary, err := newTestRunner(t, 2).Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Nil(t, summary)
	var rootErr *RootError
	assert.ErrorAs(t, err, &rootErr)
}

func TestRun_EmptyTree(t *testing.T) {
	summary := runOnce(t, newTestRunner(t, 1), t.TempDir())
	assert.Equal(t, 0, summary.Total())
}

func TestRun_UsesConfiguredQualityForEveryTask(t *testing.T) {
	root := buildTree(t)
	cfg := DefaultConfig()
	cfg.Quality = 65
	summary := runOnce(t, NewRunner(cfg, pngEncoder{}, logger.NewNoOpLogger()), root)
	for _, r := range summary.Results {
		assert.Equal(t, 65, r.Task.Quality)
	}
}

func TestSummary_BytesSaved(t *testing.T) {
	s := &Summary{}
	s.add(optimized(&Task{}, 1000, 400, 10))
	s.add(optimized(&Task{}, 100, 150, 10))
	s.add(skipped(&Task{}, ReasonAlreadyFresh))
	s.add(failed(&Task{}, "x"))

	assert.Equal(t, int64(600), s.BytesSaved())
	assert.Equal(t, 4, s.Total())
}

func TestRunTasks_Manifest(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "src", "assets", "mascota.png"), 50, 50)
	writeJPEG(t, filepath.Join(dir, "src", "assets", "merchandising", "foto-gorras-1.jpg"), 60, 40)

	manifestPath := filepath.Join(dir, "images.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte(`
images:
  - input: src/assets/mascota.png
    width: 24
  - input: src/assets/merchandising/foto-gorras-1.jpg
    output: src/assets/merchandising/gorras.webp
  - input: src/assets/missing.jpg
`), 0o644))

	m, err := LoadManifest(manifestPath)
	require.NoError(t, err)

	runner := newTestRunner(t, 2)
	tasks := m.Tasks(runner.Planner(filepath.Join(dir, "src", "assets")))
	require.Len(t, tasks, 3)
	assert.Equal(t, 24, tasks[0].TargetWidth)
	assert.Equal(t, "manifest", tasks[0].Rule)
	assert.Equal(t, 1000, tasks[1].TargetWidth)
	assert.Equal(t, filepath.Join(dir, "src", "assets", "merchandising", "gorras.webp"), tasks[1].DerivedPath)

	summary := runner.RunTasks(context.Background(), tasks)
	require.Len(t, summary.Results, 3)
	assert.Equal(t, KindOptimized, summary.Results[0].Kind)
	assert.Equal(t, 24, imageWidth(t, tasks[0].DerivedPath))
	assert.Equal(t, KindOptimized, summary.Results[1].Kind)
	assert.FileExists(t, tasks[1].DerivedPath)
	assert.Equal(t, KindSkipped, summary.Results[2].Kind)
	assert.Equal(t, ReasonSourceMissing, summary.Results[2].Reason)
}
