package registry

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mhub.dev/mhub/pkg/client"
	apierrors "mhub.dev/mhub/pkg/errors"
	"mhub.dev/mhub/pkg/types"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	options := DefaultOptions()
	options.Local.Basepath = t.TempDir()
	registry, err := NewRegistry(context.Background(), options)
	require.NoError(t, err)

	auth := NewTokenAuth(options.Auth)
	server := httptest.NewServer(auth.Filter(registry.route(auth)))
	t.Cleanup(server.Close)
	return server
}

func writeModelDir(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"config.json":       `{"architectures":["BertForSequenceClassification"]}`,
		"model.safetensors": "weights",
		"tokenizer.json":    "tokenizer",
		"vocab.txt":         "vocab",
		"README.md":         "# model-name",
		"mhub.yaml":         "description: a fine tuned classifier",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "onnx"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "onnx", "model.onnx"), []byte("onnx"), 0o644))
}

func TestPushPull(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()
	repository := "username/model-name"

	srcdir := t.TempDir()
	writeModelDir(t, srcdir)

	cli := client.NewClient(server.URL, "")
	require.NoError(t, cli.Ping(ctx))

	manifest, err := client.PackManifest(ctx, srcdir, "mhub.yaml", map[string]string{
		types.AnnotationCommitMsg: "add model and model card",
	})
	require.NoError(t, err)
	client.SortForPublish(manifest.Blobs)

	require.NoError(t, cli.Push(ctx, repository, "v1", manifest, srcdir, 1))

	// a missing version surfaces the manifest unknown code through the client
	_, err = cli.GetManifest(ctx, repository, "absent")
	assert.True(t, apierrors.IsErrCode(err, apierrors.ErrCodeManifestUnknown))

	remote, err := cli.GetManifest(ctx, repository, "v1")
	require.NoError(t, err)
	assert.Equal(t, "add model and model card", remote.Annotations[types.AnnotationCommitMsg])
	assert.Len(t, remote.Blobs, len(manifest.Blobs))
	for _, desc := range remote.Blobs {
		assert.NotEmpty(t, desc.Digest, "blob %s has no digest", desc.Name)
	}

	index, err := cli.GetIndex(ctx, repository, "")
	require.NoError(t, err)
	require.Len(t, index.Manifests, 1)
	assert.Equal(t, "v1", index.Manifests[0].Name)

	global, err := cli.GetGlobalIndex(ctx, "")
	require.NoError(t, err)
	require.Len(t, global.Manifests, 1)
	assert.Equal(t, repository, global.Manifests[0].Name)

	intodir := filepath.Join(t.TempDir(), "pulled")
	require.NoError(t, cli.Pull(ctx, repository, "v1", intodir))

	for _, name := range []string{
		"config.json", "model.safetensors", "tokenizer.json", "vocab.txt",
		"README.md", "mhub.yaml", filepath.Join("onnx", "model.onnx"),
	} {
		want, err := os.ReadFile(filepath.Join(srcdir, name))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(intodir, name))
		require.NoError(t, err, "pulled file %s", name)
		assert.Equal(t, want, got, "pulled file %s", name)
	}
}

func TestPushRequiresToken(t *testing.T) {
	options := DefaultOptions()
	options.Local.Basepath = t.TempDir()
	options.Auth.Secret = "test-secret"
	registry, err := NewRegistry(context.Background(), options)
	require.NoError(t, err)

	auth := NewTokenAuth(options.Auth)
	server := httptest.NewServer(auth.Filter(registry.route(auth)))
	t.Cleanup(server.Close)
	ctx := context.Background()

	cli := client.NewClient(server.URL, "")
	_, err = cli.GetGlobalIndex(ctx, "")
	require.Error(t, err)

	token, err := auth.Sign("username", 0)
	require.NoError(t, err)
	cli = client.NewClient(server.URL, "Bearer "+token)
	_, err = cli.GetGlobalIndex(ctx, "")
	require.NoError(t, err)
}
