package optimizer

import (
	"path/filepath"
	"strings"
)

var supportedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsSupported reports whether path has a raster extension we convert.
func IsSupported(path string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(path))]
}

// DerivedPath is the output beside path, with the derived extension.
func DerivedPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + DerivedExt
}

type Planner struct {
	root    string
	policy  *Policy
	quality int
}

// NewPlanner plans tasks for files under root. Width rules see paths relative
// to root so the root's own name never matches.
func NewPlanner(root string, policy *Policy, quality int) *Planner {
	return &Planner{root: root, policy: policy, quality: quality}
}

// Plan returns no task for unsupported files, including already derived ones.
func (p *Planner) Plan(path string) (*Task, bool) {
	if !IsSupported(path) {
		return nil, false
	}
	width, rule := p.policy.Width(p.relative(path))
	return &Task{
		SourcePath:  path,
		DerivedPath: DerivedPath(path),
		TargetWidth: width,
		Quality:     p.quality,
		Rule:        rule,
	}, true
}

func (p *Planner) relative(path string) string {
	if p.root == "" {
		return path
	}
	rel, err := filepath.Rel(p.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
