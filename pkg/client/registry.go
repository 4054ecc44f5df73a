package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/opencontainers/go-digest"
	"mhub.dev/mhub/pkg/errors"
	"mhub.dev/mhub/pkg/types"
)

type RegistryClient struct {
	Registry      string
	Authorization string
	Client        *http.Client
}

type RequestBody struct {
	ContentLength int64
	ContentBody   func() (io.ReadCloser, error)
}

func (t *RegistryClient) UploadBlob(ctx context.Context, repository string, desc types.Descriptor, body RequestBody) error {
	header := map[string]string{
		"Content-Type": "application/octet-stream",
	}
	path := "/" + repository + "/blobs/" + desc.Digest.String()
	resp, err := t.request(ctx, http.MethodPut, path, header, body, nil)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func (t *RegistryClient) GetBlob(ctx context.Context, repository string, digest digest.Digest) (io.ReadCloser, int64, error) {
	path := "/" + repository + "/blobs/" + digest.String()
	resp, err := t.request(ctx, http.MethodGet, path, nil, nil, nil)
	if err != nil {
		return nil, -1, err
	}
	return resp.Body, resp.ContentLength, nil
}

func (t *RegistryClient) HeadBlob(ctx context.Context, repository string, digest digest.Digest) (bool, error) {
	path := "/" + repository + "/blobs/" + digest.String()
	resp, err := t.request(ctx, http.MethodHead, path, nil, nil, nil)
	if err != nil {
		return false, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (t *RegistryClient) GetManifest(ctx context.Context, repository string, version string) (*types.Manifest, error) {
	if version == "" {
		version = "latest"
	}
	manifest := &types.Manifest{}
	path := "/" + repository + "/manifests/" + version
	if _, err := t.request(ctx, http.MethodGet, path, nil, nil, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (t *RegistryClient) PutManifest(ctx context.Context, repository string, version string, manifest types.Manifest) error {
	if version == "" {
		version = "latest"
	}
	header := map[string]string{
		"Content-Type": "application/json",
	}
	path := "/" + repository + "/manifests/" + version
	resp, err := t.request(ctx, http.MethodPut, path, header, manifest, nil)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func (t *RegistryClient) GetIndex(ctx context.Context, repository string, search string) (*types.Index, error) {
	index := &types.Index{}
	path := "/" + repository + "/index?" + url.Values{"search": {search}}.Encode()
	if _, err := t.request(ctx, http.MethodGet, path, nil, nil, index); err != nil {
		return nil, err
	}
	return index, nil
}

func (t *RegistryClient) GetGlobalIndex(ctx context.Context, search string) (*types.Index, error) {
	index := &types.Index{}
	path := "/?" + url.Values{"search": {search}}.Encode()
	if _, err := t.request(ctx, http.MethodGet, path, nil, nil, index); err != nil {
		return nil, err
	}
	return index, nil
}

func (t *RegistryClient) request(ctx context.Context, method, path string, header map[string]string, body any, into any) (*http.Response, error) {
	var reqbody io.Reader
	contentlength := int64(0)
	getbody := func() (io.ReadCloser, error) { return nil, nil }

	switch val := body.(type) {
	case nil:
	case io.Reader:
		reqbody = val
	case RequestBody:
		rc, err := val.ContentBody()
		if err != nil {
			return nil, err
		}
		reqbody, contentlength, getbody = rc, val.ContentLength, val.ContentBody
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		reqbody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, t.Registry+path, reqbody)
	if err != nil {
		return nil, err
	}
	if contentlength > 0 {
		req.ContentLength = contentlength
		req.GetBody = getbody
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	if t.Authorization != "" {
		req.Header.Set("Authorization", t.Authorization)
	}

	cli := t.Client
	if cli == nil {
		cli = http.DefaultClient
	}
	resp, err := cli.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest && method != http.MethodHead {
		defer resp.Body.Close()
		var apierr errors.ErrorInfo
		if resp.Header.Get("Content-Type") == "application/json" {
			if err := json.NewDecoder(resp.Body).Decode(&apierr); err != nil {
				return nil, err
			}
		} else {
			bodystr, _ := io.ReadAll(resp.Body)
			apierr.Message = string(bodystr)
		}
		apierr.HttpStatus = resp.StatusCode
		return nil, apierr
	}
	if into != nil {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
