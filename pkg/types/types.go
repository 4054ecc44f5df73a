package types

import (
	"io/fs"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
)

const (
	MediaTypeModelIndexJson      = "application/vnd.mhub.model.index.v1.json"
	MediaTypeModelManifestJson   = "application/vnd.mhub.model.manifest.v1.json"
	MediaTypeModelConfigYaml     = "application/vnd.mhub.model.config.v1.yaml"
	MediaTypeModelCardMarkdown   = "application/vnd.mhub.model.card.v1.markdown"
	MediaTypeModelFile           = "application/vnd.mhub.model.file.v1"
	MediaTypeModelWeightsFile    = "application/vnd.mhub.model.weights.v1"
	MediaTypeModelTokenizerFile  = "application/vnd.mhub.model.tokenizer.v1"
	MediaTypeModelDirectoryTarGz = "application/vnd.mhub.model.directory.v1.tar+gz"
)

const (
	AnnotationDescription = "mhub.dev/description"
	AnnotationTask        = "mhub.dev/task"
	AnnotationFramework   = "mhub.dev/framework"
	AnnotationCommitID    = "mhub.dev/commit-id"
	AnnotationCommitMsg   = "mhub.dev/commit-message"
)

type Descriptor struct {
	Name        string            `json:"name"`
	MediaType   string            `json:"mediaType,omitempty"`
	Digest      digest.Digest     `json:"digest,omitempty"`
	Size        int64             `json:"size,omitempty"`
	Mode        fs.FileMode       `json:"mode,omitempty"`
	URLs        []string          `json:"urls,omitempty"`
	Modified    time.Time         `json:"modified,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

func SortDescriptorName(a, b Descriptor) bool {
	return strings.Compare(a.Name, b.Name) < 0
}

type Manifest struct {
	SchemaVersion int               `json:"schemaVersion"`
	MediaType     string            `json:"mediaType,omitempty"`
	Config        Descriptor        `json:"config"`
	Blobs         []Descriptor      `json:"blobs"`
	Annotations   map[string]string `json:"annotations,omitempty"`
}

type Index struct {
	SchemaVersion int               `json:"schemaVersion"`
	MediaType     string            `json:"mediaType,omitempty"`
	Manifests     []Descriptor      `json:"manifests"`
	Annotations   map[string]string `json:"annotations,omitempty"`
}

// ModelConfig is the content of the mhub.yaml file at a model directory root.
type ModelConfig struct {
	Description string            `json:"description"`
	FrameWork   string            `json:"framework"`
	Task        string            `json:"task"`
	Tags        []string          `json:"tags"`
	Resources   map[string]string `json:"resources,omitempty"`
	Maintainers []string          `json:"maintainers"`
	Annotations map[string]string `json:"annotations,omitempty"`
	ModelFiles  []string          `json:"modelFiles"`
	Config      any               `json:"config,omitempty"`
}
