package model

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
	"mhub.dev/mhub/cmd/mhub/repo"
	"mhub.dev/mhub/pkg/client/units"
	"mhub.dev/mhub/pkg/types"
)

func NewInfoCmd() *cobra.Command {
	showConfig := false
	cmd := &cobra.Command{
		Use:   "info",
		Short: "show the manifest of a model version",
		Example: `
  mhub info my-hub/username/model-name@v1
  mhub info my-hub/username/model-name@v1 --config
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
				return errors.New("at least one argument is required: <reference>")
			}
			return Info(ctx, cmd, args[0], showConfig)
		},
	}
	cmd.Flags().BoolVar(&showConfig, "config", showConfig, "print the model config content as well")
	return cmd
}

func Info(ctx context.Context, cmd *cobra.Command, ref string, showConfig bool) error {
	reference, err := ParseReference(ref)
	if err != nil {
		return err
	}
	cli := reference.Client()
	manifest, err := cli.GetManifest(ctx, reference.Repository, reference.Version)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name: %s\n", reference.String())
	if len(manifest.Annotations) > 0 {
		content, err := yaml.Marshal(manifest.Annotations)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Annotations:\n%s", content)
	}
	fmt.Fprintln(out, "Files:")
	printDescriptor(out, manifest.Config)
	for _, desc := range manifest.Blobs {
		printDescriptor(out, desc)
	}
	if showConfig {
		content, _, err := cli.Remote.GetBlob(ctx, reference.Repository, manifest.Config.Digest)
		if err != nil {
			return err
		}
		defer content.Close()
		fmt.Fprintf(out, "Config:\n")
		if _, err := io.Copy(out, content); err != nil {
			return err
		}
	}
	return nil
}

func printDescriptor(out io.Writer, desc types.Descriptor) {
	fmt.Fprintf(out, "  %-32s %-10s %s\n", desc.Name, units.HumanSize(float64(desc.Size)), desc.Digest)
}
