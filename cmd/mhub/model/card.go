package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"mhub.dev/mhub/pkg/modelcard"
	"mhub.dev/mhub/pkg/types"
	"sigs.k8s.io/yaml"
)

func NewCardCmd() *cobra.Command {
	force := false
	name := ""
	cmd := &cobra.Command{
		Use:   "card",
		Short: "scaffold a model card and config at path",
		Example: `
  mhub card .
  mhub card desired-model-name --name desired-model-name
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("at least one argument is required")
			}
			return InitModelDir(args[0], name, force)
		},
	}
	cmd.Flags().StringVar(&name, "name", name, "model name on the hub, defaults to the directory name")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing files")
	return cmd
}

// InitModelDir writes a default mhub.yaml and the model card template into
// path, creating it if needed.
func InitModelDir(path string, name string, force bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create model directory %s: %w", path, err)
	}
	if name == "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		name = filepath.Base(abs)
	}

	config := types.ModelConfig{
		Description: "[Add a short description of the model.]",
		FrameWork:   "[framework]",
		Task:        "text-classification",
		Tags: []string{
			"[tag]",
		},
		Resources: map[string]string{
			"cpu":    "4",
			"memory": "16Gi",
		},
		Maintainers: []string{
			"[maintainer]",
		},
		ModelFiles: []string{},
	}
	if err := config.Validate(); err != nil {
		return err
	}
	configfile := filepath.Join(path, ModelConfigFileName)
	if _, err := os.Stat(configfile); errors.Is(err, os.ErrNotExist) || force {
		content, err := yaml.Marshal(config)
		if err != nil {
			return fmt.Errorf("encode model config: %w", err)
		}
		if err := os.WriteFile(configfile, content, 0o644); err != nil {
			return fmt.Errorf("write model config %s: %w", configfile, err)
		}
	}

	cardfile, err := modelcard.Write(path, name, force)
	if err != nil {
		return err
	}
	fmt.Printf("Model card initialized at %s\n", cardfile)
	return nil
}
