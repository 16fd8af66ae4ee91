// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LoadRegistry reads a JSON activity catalogue.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse activity registry %s: %w", path, err)
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("activity registry %s: %w", path, err)
	}
	return &reg, nil
}

// Default is the catalogue shown on the club site.
func Default() *ActivityRegistry {
	return &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{
			{ID: "futbol", DisplayName: "Fútbol", Category: "courts",
				Description: "Canchas de fútbol 5 y 7 con césped sintético de última generación."},
			{ID: "padel", DisplayName: "Pádel", Category: "courts",
				Description: "Canchas profesionales sobre alfombra y cemento con iluminación LED."},
			{ID: "tenis", DisplayName: "Tenis", Category: "courts",
				Description: "Canchas de polvo de ladrillo mantenidas según estándares profesionales."},
			{ID: "natacion", DisplayName: "Natación", Category: "pool",
				Description: "Pileta olímpica climatizada con clases para todas las edades."},
			{ID: "gimnasio", DisplayName: "Gimnasio", Category: "gym",
				Description: "Equipamiento de última tecnología y profesores especializados."},
			{ID: "hockey", DisplayName: "Hockey", Category: "courts",
				Description: "Canchas reglamentarias y escuelita de hockey para niños y niñas."},
		},
	}
}

// Validate rejects an empty list, missing fields and any id or display name
// that Lookup could match on more than one activity.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("no activities defined")
	}
	seenID := make(map[string]bool, len(r.Activities))
	owner := make(map[string]int, 2*len(r.Activities))
	for i, a := range r.Activities {
		if a.ID == "" || a.DisplayName == "" {
			return fmt.Errorf("activities[%d]: id and displayName are required", i)
		}
		id := strings.ToLower(a.ID)
		if seenID[id] {
			return fmt.Errorf("duplicate activity id %q", a.ID)
		}
		seenID[id] = true

		for _, name := range []string{id, strings.ToLower(strings.TrimSpace(a.DisplayName))} {
			if j, ok := owner[name]; ok && j != i {
				return fmt.Errorf("activities[%d]: %q already names activity %q", i, name, r.Activities[j].ID)
			}
			owner[name] = i
		}
	}
	return nil
}

// Lookup finds an activity by id or display name, ignoring case.
func (r *ActivityRegistry) Lookup(name string) (Activity, bool) {
	name = strings.TrimSpace(name)
	for _, a := range r.Activities {
		if strings.EqualFold(a.ID, name) || strings.EqualFold(a.DisplayName, name) {
			return a, true
		}
	}
	return Activity{}, false
}
