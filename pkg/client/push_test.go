package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/opencontainers/go-digest"
)

// recordingServer accepts any upload and records the order blobs arrive in.
type recordingServer struct {
	mu   sync.Mutex
	puts []string
}

func (s *recordingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(http.StatusNotFound)
	case http.MethodPut:
		s.mu.Lock()
		s.puts = append(s.puts, r.URL.Path)
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"ok"`))
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func TestPushOrder(t *testing.T) {
	dir := t.TempDir()
	contents := map[string]string{
		"config.json":       "config",
		"model.safetensors": "weights",
		"tokenizer.json":    "tokenizer",
		"README.md":         "card",
		"mhub.yaml":         "description: test",
	}
	for name, content := range contents {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	rec := &recordingServer{}
	server := httptest.NewServer(rec)
	defer server.Close()

	ctx := context.Background()
	manifest, err := PackManifest(ctx, dir, "mhub.yaml", nil)
	if err != nil {
		t.Fatal(err)
	}
	SortForPublish(manifest.Blobs)

	cli := NewClient(server.URL, "")
	if err := cli.Push(ctx, "username/model-name", "v1", manifest, dir, 1); err != nil {
		t.Fatal(err)
	}

	byDigest := map[string]string{}
	for name, content := range contents {
		byDigest[digest.FromString(content).String()] = name
	}
	got := []string{}
	for _, path := range rec.puts {
		switch {
		case strings.Contains(path, "/blobs/"):
			dgst := path[strings.LastIndex(path, "/blobs/")+len("/blobs/"):]
			got = append(got, byDigest[dgst])
		case strings.Contains(path, "/manifests/"):
			got = append(got, "manifest")
		}
	}

	// weights upload first, then tokenizer, then the card, then the config
	// and the manifest, strictly in that order
	want := []string{"config.json", "model.safetensors", "tokenizer.json", "README.md", "mhub.yaml", "manifest"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("push order = %v, want %v", got, want)
	}
}
