package checkpoint

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		files     []string
		wantModel []string
		wantToken []string
		wantErr   bool
	}{
		{
			name:      "fine tuned checkpoint",
			files:     []string{"config.json", "model.safetensors", "trainer_state.json", "tokenizer.json", "vocab.txt"},
			wantModel: []string{"config.json", "model.safetensors", "trainer_state.json"},
			wantToken: []string{"tokenizer.json", "vocab.txt"},
		},
		{
			name:      "weights without tokenizer",
			files:     []string{"config.json", "pytorch_model.bin"},
			wantModel: []string{"config.json", "pytorch_model.bin"},
		},
		{
			name:    "missing config",
			files:   []string{"model.safetensors"},
			wantErr: true,
		},
		{
			name:    "missing weights",
			files:   []string{"config.json", "tokenizer.json"},
			wantErr: true,
		},
		{
			name:    "empty directory",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files...)
			got, err := Load(dir)
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(got.ModelFiles, tt.wantModel) {
				t.Errorf("Load() ModelFiles = %v, want %v", got.ModelFiles, tt.wantModel)
			}
			if len(tt.wantToken) > 0 && !reflect.DeepEqual(got.TokenizerFiles, tt.wantToken) {
				t.Errorf("Load() TokenizerFiles = %v, want %v", got.TokenizerFiles, tt.wantToken)
			}
		})
	}
}

func TestLoadMissingDir(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("Load() expected error for missing directory")
	}
}

func TestWithTokenizerFrom(t *testing.T) {
	ckptdir := t.TempDir()
	writeFiles(t, ckptdir, "config.json", "model.safetensors")
	basedir := t.TempDir()
	writeFiles(t, basedir, "tokenizer.json", "tokenizer_config.json", "special_tokens_map.json")

	ckpt, err := Load(ckptdir)
	if err != nil {
		t.Fatal(err)
	}
	if err := ckpt.WithTokenizerFrom(basedir); err != nil {
		t.Fatal(err)
	}
	if ckpt.TokenizerDir != basedir {
		t.Errorf("TokenizerDir = %v, want %v", ckpt.TokenizerDir, basedir)
	}
	want := []string{"special_tokens_map.json", "tokenizer.json", "tokenizer_config.json"}
	if !reflect.DeepEqual(ckpt.TokenizerFiles, want) {
		t.Errorf("TokenizerFiles = %v, want %v", ckpt.TokenizerFiles, want)
	}

	if err := ckpt.WithTokenizerFrom(t.TempDir()); err == nil {
		t.Error("WithTokenizerFrom() expected error for directory without tokenizer files")
	}
}

func TestSaveAs(t *testing.T) {
	ckptdir := t.TempDir()
	writeFiles(t, ckptdir, "config.json", "model.safetensors", "tokenizer.json")

	ckpt, err := Load(ckptdir)
	if err != nil {
		t.Fatal(err)
	}
	name := filepath.Join(t.TempDir(), "desired-model-name")
	savedir, err := ckpt.SaveAs(name)
	if err != nil {
		t.Fatal(err)
	}
	if savedir != name {
		t.Errorf("SaveAs() = %v, want %v", savedir, name)
	}
	for _, file := range []string{"config.json", "model.safetensors", "tokenizer.json"} {
		content, err := os.ReadFile(filepath.Join(savedir, file))
		if err != nil {
			t.Fatal(err)
		}
		if string(content) != file {
			t.Errorf("SaveAs() content of %s = %q, want %q", file, content, file)
		}
	}

	if _, err := ckpt.SaveAs(""); err == nil {
		t.Error("SaveAs() expected error for empty name")
	}
}
