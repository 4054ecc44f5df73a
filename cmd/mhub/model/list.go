package model

import (
	"context"
	"errors"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"mhub.dev/mhub/cmd/mhub/repo"
	"mhub.dev/mhub/pkg/client/units"
	"mhub.dev/mhub/pkg/types"
)

func NewListCmd() *cobra.Command {
	search := ""
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list models on the hub, or versions of one model",
		Example: `
  mhub list my-hub
  mhub list my-hub --search bert
  mhub list my-hub/username/model-name
		`,
		SilenceUsage: true,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return repo.CompleteRegistryRepositoryVersion(toComplete)
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := BaseContext()
			defer cancel()
			if len(args) == 0 {
				return errors.New("at least one argument is required: <registry>[/<repository>]")
			}
			return List(ctx, cmd, args[0], search)
		},
	}
	cmd.Flags().StringVar(&search, "search", search, "filter by name")
	return cmd
}

func List(ctx context.Context, cmd *cobra.Command, ref string, search string) error {
	reference, err := ParseReference(ref)
	if err != nil {
		return err
	}
	var index *types.Index
	if reference.Repository == "" {
		index, err = reference.Client().GetGlobalIndex(ctx, search)
	} else {
		index, err = reference.Client().GetIndex(ctx, reference.Repository, search)
	}
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	if reference.Repository == "" {
		t.AppendHeader(table.Row{"Name", "Size", "Task", "Framework"})
		for _, item := range index.Manifests {
			t.AppendRow(table.Row{
				item.Name,
				units.HumanSize(float64(item.Size)),
				item.Annotations[types.AnnotationTask],
				item.Annotations[types.AnnotationFramework],
			})
		}
	} else {
		t.AppendHeader(table.Row{"Version", "Size", "Modified", "Message"})
		for _, item := range index.Manifests {
			t.AppendRow(table.Row{
				item.Name,
				units.HumanSize(float64(item.Size)),
				item.Modified.Format("2006-01-02 15:04:05"),
				item.Annotations[types.AnnotationCommitMsg],
			})
		}
	}
	t.Render()
	return nil
}
