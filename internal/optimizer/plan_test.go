package optimizer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	planner := NewPlanner("", NewPolicy(DefaultRules(), DefaultWidth), 80)

	tests := []struct {
		path        string
		wantTask    bool
		wantDerived string
		wantWidth   int
	}{
		{"assets/hero-bg.jpg", true, "assets/hero-bg.webp", 1920},
		{"assets/merchandising/gorra-1.png", true, "assets/merchandising/gorra-1.webp", 1000},
		{"assets/random/x.jpg", true, "assets/random/x.webp", 1200},
		{"assets/merchandising/Gorras.jpeg", true, "assets/merchandising/Gorras.webp", 1000},
		{"assets/UPPER.JPG", true, "assets/UPPER.webp", 1200},
		{"assets/hero-bg.webp", false, "", 0},
		{"assets/logo.svg", false, "", 0},
		{"assets/readme.txt", false, "", 0},
		{"assets/noext", false, "", 0},
		{"assets/.hero.webp.tmp-123", false, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			task, ok := planner.Plan(tt.path)
			require.Equal(t, tt.wantTask, ok)
			if !ok {
				assert.Nil(t, task)
				return
			}
			assert.Equal(t, tt.path, task.SourcePath)
			assert.Equal(t, tt.wantDerived, task.DerivedPath)
			assert.Equal(t, tt.wantWidth, task.TargetWidth)
			assert.Equal(t, 80, task.Quality)
		})
	}
}

func TestPlan_MatchesRelativeToRoot(t *testing.T) {
	root := filepath.Join("tmp", "hero-site", "assets")
	planner := NewPlanner(root, NewPolicy(DefaultRules(), DefaultWidth), 80)

	task, ok := planner.Plan(filepath.Join(root, "random", "x.jpg"))
	require.True(t, ok)
	assert.Equal(t, 1200, task.TargetWidth)

	task, ok = planner.Plan(filepath.Join(root, "merchandising", "gorra.png"))
	require.True(t, ok)
	assert.Equal(t, 1000, task.TargetWidth)
}
