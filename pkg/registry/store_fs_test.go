package registry

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mhub.dev/mhub/pkg/types"
)

func newTestStore(t *testing.T) *FSRegistryStore {
	t.Helper()
	options := DefaultOptions()
	options.Local.Basepath = t.TempDir()
	options.CachePath = filepath.Join(t.TempDir(), "cache")
	store, err := NewFSRegistryStore(context.Background(), options)
	require.NoError(t, err)
	t.Cleanup(func() {
		if store.Cache != nil {
			_ = store.Cache.Close()
		}
	})
	return store
}

func testManifest() types.Manifest {
	return types.Manifest{
		MediaType: types.MediaTypeModelManifestJson,
		Config: types.Descriptor{
			Name:      "mhub.yaml",
			MediaType: types.MediaTypeModelConfigYaml,
			Size:      64,
		},
		Blobs: []types.Descriptor{
			{Name: "model.safetensors", MediaType: types.MediaTypeModelWeightsFile, Size: 1024},
			{Name: "README.md", MediaType: types.MediaTypeModelCardMarkdown, Size: 256},
		},
		Annotations: map[string]string{
			types.AnnotationCommitMsg: "add model and model card",
		},
	}
}

func TestFSRegistryStoreManifest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	repository := "username/model-name"

	exists, err := store.ExistsManifest(ctx, repository, "latest")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.GetManifest(ctx, repository, "latest")
	require.Error(t, err)

	manifest := testManifest()
	require.NoError(t, store.PutManifest(ctx, repository, "latest", types.MediaTypeModelManifestJson, manifest))

	exists, err = store.ExistsManifest(ctx, repository, "latest")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := store.GetManifest(ctx, repository, "latest")
	require.NoError(t, err)
	assert.Equal(t, &manifest, got)

	// putting a manifest refreshes the repository index
	index, err := store.GetIndex(ctx, repository, "")
	require.NoError(t, err)
	require.Len(t, index.Manifests, 1)
	assert.Equal(t, "latest", index.Manifests[0].Name)
	assert.EqualValues(t, 64+1024+256, index.Manifests[0].Size)

	// and the global index
	global, err := store.GetGlobalIndex(ctx, "")
	require.NoError(t, err)
	require.Len(t, global.Manifests, 1)
	assert.Equal(t, repository, global.Manifests[0].Name)

	require.NoError(t, store.DeleteManifest(ctx, repository, "latest"))
	_, err = store.GetManifest(ctx, repository, "latest")
	require.Error(t, err)
}

func TestFSRegistryStoreIndexSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutManifest(ctx, "username/bert-base", "latest", types.MediaTypeModelManifestJson, testManifest()))
	require.NoError(t, store.PutManifest(ctx, "username/distilbert", "latest", types.MediaTypeModelManifestJson, testManifest()))

	global, err := store.GetGlobalIndex(ctx, "")
	require.NoError(t, err)
	assert.Len(t, global.Manifests, 2)

	global, err = store.GetGlobalIndex(ctx, "distil")
	require.NoError(t, err)
	require.Len(t, global.Manifests, 1)
	assert.Equal(t, "username/distilbert", global.Manifests[0].Name)

	_, err = store.GetIndex(ctx, "username/absent", "")
	assert.True(t, IsRegistryStoreNotFound(err))
}

func TestFSRegistryStoreBlob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	repository := "username/model-name"
	content := []byte("model weights")
	dgst := digest.FromBytes(content)

	exists, err := store.ExistsBlob(ctx, repository, dgst)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.PutBlob(ctx, repository, dgst, BlobContent{
		Content:       io.NopCloser(bytes.NewReader(content)),
		ContentLength: int64(len(content)),
		ContentType:   types.MediaTypeModelWeightsFile,
	})
	require.NoError(t, err)

	exists, err = store.ExistsBlob(ctx, repository, dgst)
	require.NoError(t, err)
	assert.True(t, exists)

	resp, err := store.GetBlob(ctx, repository, dgst)
	require.NoError(t, err)
	defer resp.Content.Close()
	got, err := io.ReadAll(resp.Content)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestFSRegistryStoreRemoveIndex(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	repository := "username/model-name"

	require.NoError(t, store.PutManifest(ctx, repository, "v1", types.MediaTypeModelManifestJson, testManifest()))
	require.NoError(t, store.RemoveIndex(ctx, repository))

	_, err := store.GetIndex(ctx, repository, "")
	assert.True(t, IsRegistryStoreNotFound(err))

	global, err := store.GetGlobalIndex(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, global.Manifests)
}
