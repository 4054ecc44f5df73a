package client

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"mhub.dev/mhub/pkg/types"
)

func TestPackManifest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"config.json", "model.safetensors", "tokenizer.json", "vocab.txt",
		"README.md", "mhub.yaml", "notes.txt", ".gitignore",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "onnx"), 0o755); err != nil {
		t.Fatal(err)
	}

	manifest, err := PackManifest(context.Background(), dir, "mhub.yaml", map[string]string{"k": "v"})
	if err != nil {
		t.Fatal(err)
	}
	if manifest.Config.Name != "mhub.yaml" || manifest.Config.MediaType != types.MediaTypeModelConfigYaml {
		t.Errorf("PackManifest() config = %+v", manifest.Config)
	}
	if manifest.Annotations["k"] != "v" {
		t.Errorf("PackManifest() annotations = %v", manifest.Annotations)
	}

	got := map[string]string{}
	for _, desc := range manifest.Blobs {
		got[desc.Name] = desc.MediaType
	}
	want := map[string]string{
		"config.json":       types.MediaTypeModelWeightsFile,
		"model.safetensors": types.MediaTypeModelWeightsFile,
		"tokenizer.json":    types.MediaTypeModelTokenizerFile,
		"vocab.txt":         types.MediaTypeModelTokenizerFile,
		"README.md":         types.MediaTypeModelCardMarkdown,
		"notes.txt":         types.MediaTypeModelFile,
		"onnx":              types.MediaTypeModelDirectoryTarGz,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PackManifest() blobs = %v, want %v", got, want)
	}
}

func TestSortForPublish(t *testing.T) {
	blobs := []types.Descriptor{
		{Name: "notes.txt", MediaType: types.MediaTypeModelFile},
		{Name: "README.md", MediaType: types.MediaTypeModelCardMarkdown},
		{Name: "vocab.txt", MediaType: types.MediaTypeModelTokenizerFile},
		{Name: "tokenizer.json", MediaType: types.MediaTypeModelTokenizerFile},
		{Name: "model.safetensors", MediaType: types.MediaTypeModelWeightsFile},
		{Name: "config.json", MediaType: types.MediaTypeModelWeightsFile},
	}
	SortForPublish(blobs)

	names := make([]string, 0, len(blobs))
	for _, desc := range blobs {
		names = append(names, desc.Name)
	}
	want := []string{
		"config.json", "model.safetensors",
		"tokenizer.json", "vocab.txt",
		"README.md",
		"notes.txt",
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("SortForPublish() order = %v, want %v", names, want)
	}
}
