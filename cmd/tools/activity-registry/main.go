// cmd/tools/activity-registry/main.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"club-la-victoria/pkg/registry"

	"github.com/spf13/cobra"
)

var registryPath string

var rootCmd = &cobra.Command{
	Use:   "activity-registry",
	Short: "Manage the activity catalogue served by the club gateway",
	Long: `Edits the JSON activity catalogue loaded by club-gateway through
reservation.activities_file. The gateway falls back to its built-in list
when no file is configured.`,
	SilenceUsage: true,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the built-in activity list to a new registry file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(registryPath); err == nil {
			return fmt.Errorf("%s already exists", registryPath)
		}
		reg := registry.Default()
		if err := saveRegistry(reg, registryPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %d activities to %s\n", len(reg.Activities), registryPath)
		return nil
	},
}

var (
	addActivityFlags registry.Activity
	addTags          string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new activity to the registry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		activity := addActivityFlags
		activity.Tags = splitTags(addTags)
		if err := addActivity(registryPath, activity); err != nil {
			return err
		}
		fmt.Printf("Added activity: %s\n", activity.ID)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id> <field> <value>",
	Short: "Update an existing activity's field (displayName, description, category, tags)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := updateActivity(registryPath, args[0], args[1], args[2]); err != nil {
			return err
		}
		fmt.Printf("Updated activity %s, field %s to %q\n", args[0], args[1], args[2])
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := removeActivity(registryPath, args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed activity: %s\n", args[0])
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the registry file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			return fmt.Errorf("registry validation failed: %w", err)
		}
		fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&registryPath, "path", "p", "configs/activities.json", "Path to registry file")

	addCmd.Flags().StringVar(&addActivityFlags.ID, "id", "", "Activity ID (e.g., padel)")
	addCmd.Flags().StringVar(&addActivityFlags.DisplayName, "display-name", "", "Display name (e.g., Pádel)")
	addCmd.Flags().StringVar(&addActivityFlags.Description, "description", "", "Description")
	addCmd.Flags().StringVar(&addActivityFlags.Category, "category", "", "Category (e.g., courts)")
	addCmd.Flags().StringVar(&addTags, "tags", "", "Comma separated tags")
	_ = addCmd.MarkFlagRequired("id")
	_ = addCmd.MarkFlagRequired("display-name")
	_ = addCmd.MarkFlagRequired("category")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addActivity(path string, activity registry.Activity) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	}

	if indexOf(reg, activity.ID) >= 0 {
		return fmt.Errorf("activity with ID %s already exists", activity.ID)
	}

	reg.Activities = append(reg.Activities, activity)
	return saveRegistry(reg, path)
}

func updateActivity(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	i := indexOf(reg, id)
	if i < 0 {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "displayName":
		reg.Activities[i].DisplayName = value
	case "description":
		reg.Activities[i].Description = value
	case "category":
		reg.Activities[i].Category = value
	case "tags":
		reg.Activities[i].Tags = splitTags(value)
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	return saveRegistry(reg, path)
}

func removeActivity(path, id string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	i := indexOf(reg, id)
	if i < 0 {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	reg.Activities = append(reg.Activities[:i], reg.Activities[i+1:]...)
	return saveRegistry(reg, path)
}

func indexOf(reg *registry.ActivityRegistry, id string) int {
	for i, a := range reg.Activities {
		if strings.EqualFold(a.ID, id) {
			return i
		}
	}
	return -1
}

func splitTags(s string) []string {
	var out []string
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// saveRegistry validates reg before touching the file, so a rejected edit
// leaves the previous registry in place.
func saveRegistry(reg *registry.ActivityRegistry, path string) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().Format(time.RFC3339)

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}

	return nil
}
