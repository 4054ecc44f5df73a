package registry

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/opencontainers/go-digest"
	"mhub.dev/mhub/pkg/errors"
	"mhub.dev/mhub/pkg/types"
)

type Registry struct {
	Store RegistryStore
}

func GetRepositoryReference(r *http.Request) (string, string) {
	vars := mux.Vars(r)
	return vars["name"], vars["reference"]
}

func (s *Registry) GetGlobalIndex(w http.ResponseWriter, r *http.Request) {
	index, err := s.Store.GetGlobalIndex(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		if IsRegistryStoreNotFound(err) {
			ResponseOK(w, types.Index{})
			return
		}
		ResponseError(w, err)
		return
	}
	ResponseOK(w, index)
}

func (s *Registry) GetIndex(w http.ResponseWriter, r *http.Request) {
	name, _ := GetRepositoryReference(r)
	index, err := s.Store.GetIndex(r.Context(), name, r.URL.Query().Get("search"))
	if err != nil {
		if IsRegistryStoreNotFound(err) {
			err = errors.NewIndexUnknownError(name)
		}
		ResponseError(w, err)
		return
	}
	ResponseOK(w, index)
}

func (s *Registry) DeleteIndex(w http.ResponseWriter, r *http.Request) {
	name, _ := GetRepositoryReference(r)
	if err := s.Store.RemoveIndex(r.Context(), name); err != nil {
		ResponseError(w, err)
		return
	}
	ResponseOK(w, "ok")
}

func (s *Registry) HeadManifest(w http.ResponseWriter, r *http.Request) {
	name, reference := GetRepositoryReference(r)
	exist, err := s.Store.ExistsManifest(r.Context(), name, reference)
	if err != nil {
		ResponseError(w, err)
		return
	}
	if exist {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *Registry) GetManifest(w http.ResponseWriter, r *http.Request) {
	name, reference := GetRepositoryReference(r)
	manifest, err := s.Store.GetManifest(r.Context(), name, reference)
	if err != nil {
		ResponseError(w, err)
		return
	}
	ResponseOK(w, manifest)
}

func (s *Registry) PutManifest(w http.ResponseWriter, r *http.Request) {
	name, reference := GetRepositoryReference(r)
	contenttype := r.Header.Get("Content-Type")
	if contenttype != "application/json" && contenttype != types.MediaTypeModelManifestJson {
		ResponseError(w, errors.NewContentTypeInvalidError(contenttype))
		return
	}
	manifest, err := DecodeManifest(r.Body)
	if err != nil {
		ResponseError(w, err)
		return
	}
	if err := s.Store.PutManifest(r.Context(), name, reference, contenttype, *manifest); err != nil {
		ResponseError(w, err)
		return
	}
	ResponseOK(w, "ok")
}

func (s *Registry) DeleteManifest(w http.ResponseWriter, r *http.Request) {
	name, reference := GetRepositoryReference(r)
	if err := s.Store.DeleteManifest(r.Context(), name, reference); err != nil {
		ResponseError(w, err)
		return
	}
	ResponseOK(w, "ok")
}

func (s *Registry) HeadBlob(w http.ResponseWriter, r *http.Request) {
	name, _ := GetRepositoryReference(r)
	dgst, err := ParseDigest(r)
	if err != nil {
		ResponseError(w, err)
		return
	}
	exist, err := s.Store.ExistsBlob(r.Context(), name, dgst)
	if err != nil {
		ResponseError(w, err)
		return
	}
	if exist {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *Registry) GetBlob(w http.ResponseWriter, r *http.Request) {
	name, _ := GetRepositoryReference(r)
	dgst, err := ParseDigest(r)
	if err != nil {
		ResponseError(w, err)
		return
	}
	result, err := s.Store.GetBlob(r.Context(), name, dgst)
	if err != nil {
		ResponseError(w, err)
		return
	}
	if location := result.RedirectLocation; location != "" {
		http.Redirect(w, r, location, http.StatusTemporaryRedirect)
		return
	}
	defer result.Content.Close()

	if result.Content.ContentType != "" {
		w.Header().Set("Content-Type", result.Content.ContentType)
	}
	if result.Content.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.Content.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, result.Content.Content)
}

func (s *Registry) PutBlob(w http.ResponseWriter, r *http.Request) {
	name, _ := GetRepositoryReference(r)
	dgst, err := ParseDigest(r)
	if err != nil {
		ResponseError(w, err)
		return
	}
	if r.ContentLength <= 0 {
		ResponseError(w, errors.NewContentLengthInvalidError("content length is required"))
		return
	}

	verifier := dgst.Verifier()
	content := BlobContent{
		Content:       io.NopCloser(io.TeeReader(r.Body, verifier)),
		ContentLength: r.ContentLength,
		ContentType:   r.Header.Get("Content-Type"),
	}
	result, err := s.Store.PutBlob(r.Context(), name, dgst, content)
	if err != nil {
		ResponseError(w, err)
		return
	}
	if location := result.RedirectLocation; location != "" {
		http.Redirect(w, r, location, http.StatusTemporaryRedirect)
		return
	}
	if !verifier.Verified() {
		ResponseError(w, errors.NewDigestInvalidError(fmt.Sprintf("content does not match digest %s", dgst)))
		return
	}
	ResponseOK(w, "ok")
}

func ParseDigest(r *http.Request) (digest.Digest, error) {
	raw := mux.Vars(r)["digest"]
	dgst, err := digest.Parse(raw)
	if err != nil {
		return "", errors.NewDigestInvalidError(raw)
	}
	return dgst, nil
}
