package checkpoint

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/exp/slices"
)

const ModelConfigJSON = "config.json"

// weights of a serialized sequence-classification network, one of these
// must be present at the checkpoint root
var weightsFileNames = []string{
	"model.safetensors",
	"pytorch_model.bin",
	"tf_model.h5",
	"model.ckpt.index",
	"flax_model.msgpack",
}

var modelAuxFileNames = []string{
	"training_args.bin",
	"optimizer.pt",
	"scheduler.pt",
	"trainer_state.json",
}

var tokenizerFileNames = []string{
	"tokenizer.json",
	"tokenizer_config.json",
	"vocab.txt",
	"vocab.json",
	"merges.txt",
	"special_tokens_map.json",
	"added_tokens.json",
	"spiece.model",
	"sentencepiece.bpe.model",
}

func IsWeightsFile(name string) bool {
	return name == ModelConfigJSON ||
		slices.Contains(weightsFileNames, name) ||
		slices.Contains(modelAuxFileNames, name)
}

func IsTokenizerFile(name string) bool {
	return slices.Contains(tokenizerFileNames, name)
}

// Checkpoint is a local snapshot of a trained model, optionally paired with
// tokenizer artifacts from the same or another directory.
type Checkpoint struct {
	Dir            string
	TokenizerDir   string
	ModelFiles     []string
	TokenizerFiles []string
}

// Load reads and validates a checkpoint directory. The directory must hold
// config.json and at least one weights file. Tokenizer artifacts found in the
// same directory are picked up as well.
func Load(dir string) (*Checkpoint, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %s: %w", dir, err)
	}
	ckpt := &Checkpoint{Dir: dir, TokenizerDir: dir}
	hasconfig, hasweights := false, false
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case name == ModelConfigJSON:
			hasconfig = true
			ckpt.ModelFiles = append(ckpt.ModelFiles, name)
		case slices.Contains(weightsFileNames, name):
			hasweights = true
			ckpt.ModelFiles = append(ckpt.ModelFiles, name)
		case slices.Contains(modelAuxFileNames, name):
			ckpt.ModelFiles = append(ckpt.ModelFiles, name)
		case slices.Contains(tokenizerFileNames, name):
			ckpt.TokenizerFiles = append(ckpt.TokenizerFiles, name)
		}
	}
	if !hasconfig {
		return nil, fmt.Errorf("checkpoint %s: missing %s", dir, ModelConfigJSON)
	}
	if !hasweights {
		return nil, fmt.Errorf("checkpoint %s: no model weights found", dir)
	}
	slices.Sort(ckpt.ModelFiles)
	slices.Sort(ckpt.TokenizerFiles)
	return ckpt, nil
}

// WithTokenizerFrom replaces the tokenizer artifacts with the ones found in
// dir, e.g. the base model the checkpoint was fine-tuned from.
func (c *Checkpoint) WithTokenizerFrom(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read tokenizer %s: %w", dir, err)
	}
	files := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slices.Contains(tokenizerFileNames, entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("tokenizer %s: no tokenizer files found", dir)
	}
	slices.Sort(files)
	c.TokenizerDir = dir
	c.TokenizerFiles = files
	return nil
}

// SaveAs copies the model and tokenizer artifacts into a directory named
// exactly name, creating it if needed, and returns its path.
func (c *Checkpoint) SaveAs(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty model name")
	}
	if err := os.MkdirAll(name, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", name, err)
	}
	for _, file := range c.ModelFiles {
		if err := copyFile(filepath.Join(c.Dir, file), filepath.Join(name, file)); err != nil {
			return "", err
		}
	}
	for _, file := range c.TokenizerFiles {
		if err := copyFile(filepath.Join(c.TokenizerDir, file), filepath.Join(name, file)); err != nil {
			return "", err
		}
	}
	return name, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}
