package client

import (
	"context"
	"os"
	"strings"

	"golang.org/x/exp/slices"
	"mhub.dev/mhub/pkg/checkpoint"
	"mhub.dev/mhub/pkg/modelcard"
	"mhub.dev/mhub/pkg/types"
)

// PackManifest builds the manifest for a local model directory. Hidden
// entries are skipped, subdirectories are packed as tar.gz archives.
// Digests and sizes are filled in during push.
func PackManifest(ctx context.Context, dir string, configfile string, annotations map[string]string) (types.Manifest, error) {
	manifest := types.Manifest{
		MediaType:   types.MediaTypeModelManifestJson,
		Blobs:       []types.Descriptor{},
		Annotations: annotations,
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return types.Manifest{}, err
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if entry.Name() == configfile {
			manifest.Config = types.Descriptor{
				Name:      entry.Name(),
				MediaType: types.MediaTypeModelConfigYaml,
			}
			continue
		}
		manifest.Blobs = append(manifest.Blobs, types.Descriptor{
			Name:      entry.Name(),
			MediaType: mediaTypeForEntry(entry),
		})
	}
	slices.SortFunc(manifest.Blobs, types.SortDescriptorName)
	return manifest, nil
}

func mediaTypeForEntry(entry os.DirEntry) string {
	if entry.IsDir() {
		return types.MediaTypeModelDirectoryTarGz
	}
	name := entry.Name()
	switch {
	case name == modelcard.FileName:
		return types.MediaTypeModelCardMarkdown
	case checkpoint.IsWeightsFile(name):
		return types.MediaTypeModelWeightsFile
	case checkpoint.IsTokenizerFile(name):
		return types.MediaTypeModelTokenizerFile
	default:
		return types.MediaTypeModelFile
	}
}

// publish uploads model weights first, then tokenizer files, then the model
// card, then everything else
func publishRank(mediatype string) int {
	switch mediatype {
	case types.MediaTypeModelWeightsFile:
		return 0
	case types.MediaTypeModelTokenizerFile:
		return 1
	case types.MediaTypeModelCardMarkdown:
		return 2
	default:
		return 3
	}
}

// SortForPublish orders blobs by publish phase, by name within a phase.
func SortForPublish(blobs []types.Descriptor) {
	slices.SortStableFunc(blobs, func(a, b types.Descriptor) bool {
		ra, rb := publishRank(a.MediaType), publishRank(b.MediaType)
		if ra != rb {
			return ra < rb
		}
		return strings.Compare(a.Name, b.Name) < 0
	})
}
