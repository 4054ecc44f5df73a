package model

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"mhub.dev/mhub/cmd/mhub/repo"
	"mhub.dev/mhub/pkg/client"
)

func NewPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "push a prepared model directory to the hub",
		Example: `
  mhub push my-hub/username/model-name@v1 ./model-name
		`,
		SilenceUsage: true,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return repo.CompleteRegistryRepositoryVersion(toComplete)
			}
			return nil, cobra.ShellCompDirectiveFilterDirs
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := BaseContext()
			defer cancel()
			if len(args) == 0 {
				return errors.New("at least one argument is required: <reference>")
			}
			dir := ""
			if len(args) > 1 {
				dir = args[1]
			}
			return Push(ctx, args[0], dir)
		},
	}
	return cmd
}

// Push packages dir and uploads it. Unlike publish, the directory is expected
// to already hold a model config and card; blobs upload concurrently.
func Push(ctx context.Context, ref string, dir string) error {
	reference, err := ParseReference(ref)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = filepath.Base(reference.Repository)
	}
	config, err := readModelConfig(dir)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}
	manifest, err := client.PackManifest(ctx, dir, ModelConfigFileName, configAnnotations(config))
	if err != nil {
		return err
	}
	client.SortForPublish(manifest.Blobs)
	fmt.Printf("Pushing to %s \n", reference.String())
	return reference.Client().Push(ctx, reference.Repository, reference.Version, manifest, dir, client.PushConcurrency)
}
