package registry

import (
	"context"
	stderrors "errors"
	"path"

	"github.com/opencontainers/go-digest"
	"mhub.dev/mhub/pkg/types"
)

const RegistryIndexFileName = "index.json"

var ErrRegistryStoreNotFound = stderrors.New("not found")

type BlobResponse struct {
	RedirectLocation string
	Content          BlobContent
}

type RegistryStore interface {
	GetGlobalIndex(ctx context.Context, search string) (types.Index, error)

	GetIndex(ctx context.Context, repository string, search string) (types.Index, error)
	RemoveIndex(ctx context.Context, repository string) error

	ExistsManifest(ctx context.Context, repository string, reference string) (bool, error)
	GetManifest(ctx context.Context, repository string, reference string) (*types.Manifest, error)
	PutManifest(ctx context.Context, repository string, reference string, contentType string, manifest types.Manifest) error
	DeleteManifest(ctx context.Context, repository string, reference string) error

	ExistsBlob(ctx context.Context, repository string, digest digest.Digest) (bool, error)
	GetBlob(ctx context.Context, repository string, digest digest.Digest) (*BlobResponse, error)
	PutBlob(ctx context.Context, repository string, digest digest.Digest, content BlobContent) (*BlobResponse, error)
}

func BlobDigestPath(repository string, d digest.Digest) string {
	return path.Join(repository, "blobs", d.Algorithm().String(), d.Hex())
}

func IndexPath(repository string) string {
	return path.Join(repository, RegistryIndexFileName)
}

func ManifestPath(repository string, reference string) string {
	return path.Join(repository, "manifests", reference)
}

func IsRegistryStoreNotFound(err error) bool {
	return stderrors.Is(err, ErrRegistryStoreNotFound)
}
