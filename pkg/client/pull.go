package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	"mhub.dev/mhub/pkg/client/progress"
	"mhub.dev/mhub/pkg/types"
)

func (c Client) Pull(ctx context.Context, repo string, version string, into string) error {
	if dirInfo, err := os.Stat(into); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(into, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %v", into, err)
		}
	} else if !dirInfo.IsDir() {
		return fmt.Errorf("%s is not a directory", into)
	}

	manifest, err := c.GetManifest(ctx, repo, version)
	if err != nil {
		return err
	}
	return c.PullBlobs(ctx, repo, into, append(manifest.Blobs, manifest.Config))
}

func (c Client) PullBlobs(ctx context.Context, repo string, basedir string, blobs []types.Descriptor) error {
	mb := progress.NewMultiBar(os.Stdout, 40, PushConcurrency)
	go mb.Run(ctx)

	for _, blob := range blobs {
		blob := blob
		mb.Go(blob.Name, "pending", func(b *progress.Bar) error {
			return c.PullBlob(ctx, repo, blob, basedir, b)
		})
	}
	return mb.Wait()
}

func (c Client) PullBlob(ctx context.Context, repo string, desc types.Descriptor, basedir string, bar *progress.Bar) error {
	switch desc.MediaType {
	case types.MediaTypeModelDirectoryTarGz:
		return c.pullDirectory(ctx, repo, desc, basedir, bar)
	default:
		return c.pullFile(ctx, repo, desc, basedir, bar)
	}
}

func (c Client) pullFile(ctx context.Context, repo string, desc types.Descriptor, basedir string, bar *progress.Bar) error {
	bar.SetStatus(desc.Name, "checking")
	filename := filepath.Join(basedir, desc.Name)
	if f, err := os.Open(filename); err == nil {
		dgst, err := digest.FromReader(f)
		_ = f.Close()
		if err != nil {
			return err
		}
		if dgst.String() == desc.Digest.String() {
			bar.SetProgress(desc.Size, desc.Size)
			bar.SetStatus(desc.Digest.Hex()[:8], "already exists")
			return nil
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	var content io.ReadCloser
	var contentlen int64
	if desc.Digest == EmptyFileDigest {
		content, contentlen = io.NopCloser(bytes.NewReader(nil)), 0
	} else {
		ctt, cttl, err := c.Remote.GetBlob(ctx, repo, desc.Digest)
		if err != nil {
			return err
		}
		content, contentlen = ctt, cttl
	}
	content = bar.WrapReader(content, desc.Digest.Hex()[:8], contentlen, "downloading", "done", "failed")
	return writeFile(filename, content, desc.Mode.Perm())
}

func (c Client) pullDirectory(ctx context.Context, repo string, desc types.Descriptor, basedir string, bar *progress.Bar) error {
	bar.SetStatus(desc.Name, "checking")
	dgst, err := TGZ(ctx, filepath.Join(basedir, desc.Name), "")
	if err == nil && dgst.String() == desc.Digest.String() {
		bar.SetStatus(desc.Digest.Hex()[:8], "already exists")
		return nil
	}

	content, contentlen, err := c.Remote.GetBlob(ctx, repo, desc.Digest)
	if err != nil {
		return err
	}
	src := bar.WrapReader(content, desc.Digest.Hex()[:8], contentlen, "downloading", "done", "failed")
	defer src.Close()
	return UnTGZ(ctx, filepath.Join(basedir, desc.Name), src)
}

func writeFile(filename string, src io.ReadCloser, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o644
	}
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm.Perm())
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
			return err
		}
		f, err = os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm.Perm())
		if err != nil {
			return err
		}
	}
	defer f.Close()
	defer src.Close()

	_, err = io.Copy(f, src)
	return err
}
