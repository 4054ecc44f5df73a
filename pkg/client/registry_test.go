package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/opencontainers/go-digest"
	"mhub.dev/mhub/pkg/types"
)

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

type stubTransport struct {
	status int
	body   *trackedBody
}

func (t *stubTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: t.status,
		Header:     http.Header{},
		Body:       t.body,
		Request:    r,
	}, nil
}

func stubClient(status int, body *trackedBody) *RegistryClient {
	return &RegistryClient{
		Registry: "http://registry.example.com",
		Client:   &http.Client{Transport: &stubTransport{status: status, body: body}},
	}
}

func TestRequestClosesDiscardedBody(t *testing.T) {
	content := []byte("blob")
	desc := types.Descriptor{
		Name:   "model.safetensors",
		Digest: digest.FromBytes(content),
		Size:   int64(len(content)),
	}
	ctx := context.Background()

	t.Run("upload blob", func(t *testing.T) {
		body := &trackedBody{Reader: bytes.NewReader([]byte(`"ok"`))}
		cli := stubClient(http.StatusOK, body)
		err := cli.UploadBlob(ctx, "username/model-name", desc, RequestBody{
			ContentLength: desc.Size,
			ContentBody: func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(content)), nil
			},
		})
		if err != nil {
			t.Fatal(err)
		}
		if !body.closed {
			t.Error("UploadBlob() left the response body open")
		}
	})

	t.Run("head blob", func(t *testing.T) {
		body := &trackedBody{Reader: bytes.NewReader(nil)}
		cli := stubClient(http.StatusNotFound, body)
		exist, err := cli.HeadBlob(ctx, "username/model-name", desc.Digest)
		if err != nil {
			t.Fatal(err)
		}
		if exist {
			t.Error("HeadBlob() = true, want false")
		}
		if !body.closed {
			t.Error("HeadBlob() left the response body open")
		}
	})

	t.Run("put manifest", func(t *testing.T) {
		body := &trackedBody{Reader: bytes.NewReader([]byte(`"ok"`))}
		cli := stubClient(http.StatusOK, body)
		if err := cli.PutManifest(ctx, "username/model-name", "v1", types.Manifest{}); err != nil {
			t.Fatal(err)
		}
		if !body.closed {
			t.Error("PutManifest() left the response body open")
		}
	})
}
