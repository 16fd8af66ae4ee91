package optimizer

import (
	"fmt"
	"os"
	"path/filepath"

	"club-la-victoria/internal/common/errors"
	"club-la-victoria/internal/common/validation"

	"gopkg.in/yaml.v3"
)

// Manifest is a static list of images to convert, as an alternative to
// walking the asset root.
//
//	images:
//	  - input: src/assets/hero-bg.jpg
//	    output: src/assets/hero-bg.webp   # optional
//	    width: 1920                       # optional, policy otherwise
type Manifest struct {
	Images []ManifestEntry `yaml:"images"`

	dir string
}

type ManifestEntry struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output,omitempty"`
	Width  int    `yaml:"width,omitempty"`
}

func GetManifestSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"images"},
		Properties: map[string]validation.Property{
			"images": {
				Type:        "array",
				Description: "Images to convert, in order",
				Items: &validation.Property{
					Type:     "object",
					Required: []string{"input"},
					Properties: map[string]validation.Property{
						"input": {
							Type:      "string",
							MinLength: validation.IntPtr(1),
							Pattern:   validation.StringPtr(`(?i)\.(jpe?g|png)$`),
						},
						"output": {
							Type:    "string",
							Pattern: validation.StringPtr(`\.webp$`),
						},
						"width": {
							Type:    "integer",
							Minimum: validation.FloatPtr(1),
						},
					},
				},
			},
		},
		AdditionalProperties: false,
	}
}

// LoadManifest reads and validates a YAML manifest. Relative paths resolve
// against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	m, err := ParseManifest(raw)
	if err != nil {
		return nil, err
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest validates raw against the manifest schema and decodes it.
func ParseManifest(raw []byte) (*Manifest, error) {
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.NewManifestInvalidError(err.Error())
	}

	result, err := validation.Validate(doc, GetManifestSchema())
	if err != nil {
		return nil, errors.NewManifestInvalidError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewManifestInvalidError(result.Summary())
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, errors.NewManifestInvalidError(err.Error())
	}
	return &m, nil
}

// Tasks expands the manifest in order. Entries without a width use the
// planner's policy; quality is always the run's.
func (m *Manifest) Tasks(planner *Planner) []*Task {
	tasks := make([]*Task, 0, len(m.Images))
	for _, entry := range m.Images {
		input := m.resolve(entry.Input)
		task, ok := planner.Plan(input)
		if !ok {
			task = &Task{SourcePath: input, DerivedPath: DerivedPath(input), Quality: planner.quality}
			task.TargetWidth, task.Rule = planner.policy.Width(planner.relative(input))
		}

		if entry.Output != "" {
			task.DerivedPath = m.resolve(entry.Output)
		}
		if entry.Width > 0 {
			task.TargetWidth = entry.Width
			task.Rule = "manifest"
		}
		tasks = append(tasks, task)
	}
	return tasks
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	return filepath.Join(m.dir, p)
}
