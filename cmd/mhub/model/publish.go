package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"mhub.dev/mhub/cmd/mhub/repo"
	"mhub.dev/mhub/pkg/checkpoint"
	"mhub.dev/mhub/pkg/client"
	"mhub.dev/mhub/pkg/modelcard"
	"mhub.dev/mhub/pkg/types"
	"sigs.k8s.io/yaml"
)

func NewPublishCmd() *cobra.Command {
	tokenizerFrom := ""
	forceCard := false
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "publish a training checkpoint to the hub",
		Long: `Publish loads a trained model and its tokenizer from a local checkpoint,
saves both under the chosen public name, authors a model card, and uploads
everything to the hub under the authenticated account.`,
		Example: `
  mhub publish ./results/checkpoint-2000 my-hub/username/desired-model-name
  mhub publish ./results/checkpoint-2000 my-hub/username/desired-model-name --tokenizer-from ./base-model
		`,
		SilenceUsage: true,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return nil, cobra.ShellCompDirectiveFilterDirs
			}
			if len(args) == 1 {
				return repo.CompleteRegistryRepositoryVersion(toComplete)
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := BaseContext()
			defer cancel()
			if len(args) != 2 {
				return errors.New("two arguments are required: <checkpoint> <reference>")
			}
			return Publish(ctx, args[0], args[1], tokenizerFrom, forceCard)
		},
	}
	cmd.Flags().StringVar(&tokenizerFrom, "tokenizer-from", tokenizerFrom,
		"load tokenizer artifacts from this directory instead of the checkpoint")
	cmd.Flags().BoolVar(&forceCard, "force-card", forceCard, "overwrite an existing model card")
	return cmd
}

// Publish runs the whole workflow: load and validate the checkpoint, save
// model and tokenizer under the public model name, author the model card,
// and upload weights, tokenizer and card in that order.
func Publish(ctx context.Context, checkpointDir string, ref string, tokenizerFrom string, forceCard bool) error {
	reference, err := ParseReference(ref)
	if err != nil {
		return err
	}
	if reference.Repository == "" {
		return errors.New("reference must name a repository, e.g. my-hub/username/model-name")
	}
	name := path.Base(reference.Repository)

	// the checkpoint is validated before anything is written or uploaded
	ckpt, err := checkpoint.Load(checkpointDir)
	if err != nil {
		return err
	}
	if tokenizerFrom != "" {
		if err := ckpt.WithTokenizerFrom(tokenizerFrom); err != nil {
			return err
		}
	}
	if len(ckpt.TokenizerFiles) == 0 {
		fmt.Printf("Warning: no tokenizer artifacts found in %s, publishing model only\n", checkpointDir)
	}

	savedir, err := ckpt.SaveAs(name)
	if err != nil {
		return err
	}
	fmt.Printf("Saved checkpoint as %s\n", savedir)

	if err := writeDefaultConfig(savedir, ckpt); err != nil {
		return err
	}
	cardfile, err := modelcard.Write(savedir, name, forceCard)
	if err != nil {
		return err
	}
	fmt.Printf("Model card at %s\n", cardfile)

	config, err := readModelConfig(savedir)
	if err != nil {
		return err
	}
	annotations := configAnnotations(config)
	annotations[types.AnnotationCommitID] = uuid.New().String()
	annotations[types.AnnotationCommitMsg] = PublishCommitMessage

	manifest, err := client.PackManifest(ctx, savedir, ModelConfigFileName, annotations)
	if err != nil {
		return err
	}
	client.SortForPublish(manifest.Blobs)

	fmt.Printf("Pushing to %s \n", reference.String())
	// ordered upload: weights, tokenizer, card
	if err := reference.Client().Push(ctx, reference.Repository, reference.Version, manifest, savedir, 1); err != nil {
		return err
	}
	fmt.Printf("View your model at %s\n", reference.WebURL())
	return nil
}

func writeDefaultConfig(dir string, ckpt *checkpoint.Checkpoint) error {
	configfile := filepath.Join(dir, ModelConfigFileName)
	if _, err := os.Stat(configfile); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	config := types.ModelConfig{
		Description: "[Add a short description of the model.]",
		FrameWork:   "[framework]",
		Task:        "text-classification",
		ModelFiles:  append(append([]string{}, ckpt.ModelFiles...), ckpt.TokenizerFiles...),
	}
	content, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode model config: %w", err)
	}
	return os.WriteFile(configfile, content, 0o644)
}

func configAnnotations(config types.ModelConfig) map[string]string {
	annotations := map[string]string{}
	for k, v := range config.Annotations {
		annotations[k] = v
	}
	if config.Description != "" {
		annotations[types.AnnotationDescription] = config.Description
	}
	if config.Task != "" {
		annotations[types.AnnotationTask] = config.Task
	}
	if config.FrameWork != "" {
		annotations[types.AnnotationFramework] = config.FrameWork
	}
	return annotations
}

func readModelConfig(dir string) (types.ModelConfig, error) {
	content, err := os.ReadFile(filepath.Join(dir, ModelConfigFileName))
	if err != nil {
		return types.ModelConfig{}, fmt.Errorf("read model config %s: %w", ModelConfigFileName, err)
	}
	config := types.ModelConfig{}
	if err := yaml.Unmarshal(content, &config); err != nil {
		return types.ModelConfig{}, fmt.Errorf("parse model config %s: %w", ModelConfigFileName, err)
	}
	return config, nil
}
