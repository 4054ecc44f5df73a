package model

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"mhub.dev/mhub/cmd/mhub/repo"
	apierrors "mhub.dev/mhub/pkg/errors"
)

func NewPullCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "pull a model from the hub into a local directory",
		Example: `
  mhub pull my-hub/username/model-name@v1
  mhub pull my-hub/username/model-name@v1 ./model-name
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
			into := ""
			if len(args) > 1 {
				into = args[1]
			}
			return Pull(ctx, args[0], into)
		},
	}
	return cmd
}

func Pull(ctx context.Context, ref string, into string) error {
	reference, err := ParseReference(ref)
	if err != nil {
		return err
	}
	if into == "" {
		into = filepath.Base(reference.Repository)
	}
	fmt.Printf("Pulling %s into %s \n", reference.String(), into)
	if err := reference.Client().Pull(ctx, reference.Repository, reference.Version, into); err != nil {
		if apierrors.IsErrCode(err, apierrors.ErrCodeManifestUnknown) {
			return fmt.Errorf("%s: not found", reference.String())
		}
		return err
	}
	return nil
}
