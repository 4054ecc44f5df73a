package model

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"mhub.dev/mhub/cmd/mhub/repo"
	"mhub.dev/mhub/pkg/client"
)

const MhubAuthEnv = "MHUB_AUTH"

type Reference struct {
	Registry      string
	Repository    string
	Version       string
	Authorization string
}

func (r Reference) String() string {
	if r.Version == "" {
		return fmt.Sprintf("%s/%s", r.Registry, r.Repository)
	}
	return fmt.Sprintf("%s/%s@%s", r.Registry, r.Repository, r.Version)
}

// WebURL is the public address of the repository, https://<host>/<username>/<model-name>.
func (r Reference) WebURL() string {
	return fmt.Sprintf("%s/%s", r.Registry, r.Repository)
}

func (r Reference) Client() *client.Client {
	return client.NewClient(r.Registry, r.Authorization)
}

func ParseReference(raw string) (Reference, error) {
	auth := os.Getenv(MhubAuthEnv)
	if !strings.Contains(raw, "://") {
		splits := strings.SplitN(raw, repo.SplitorRepo, 2)
		details, err := repo.DefaultRepoManager.Get(splits[0])
		if err != nil {
			return Reference{}, err
		}
		if auth == "" {
			auth = details.Authorization()
		}
		if len(splits) == 2 {
			raw = details.URL + "/" + splits[1]
		} else {
			raw = details.URL
		}
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return Reference{}, fmt.Errorf("invalid reference: %s", err)
	}
	if u.Host == "" {
		return Reference{}, fmt.Errorf("invalid reference: missing host")
	}
	if token := u.Query().Get("token"); token != "" {
		auth = "Bearer " + token
	}
	repository, version := "", ""
	splits := strings.SplitN(u.Path, repo.SplitorVersion, 2)
	if len(splits) == 2 && splits[1] != "" {
		version = splits[1]
	}
	if sp0 := splits[0]; sp0 != "" {
		repository = strings.TrimPrefix(sp0, "/")
	}

	// a bare model name publishes under the shared library namespace
	if repository != "" && !strings.Contains(repository, "/") {
		repository = "library/" + repository
	}
	if repository != "" && version == "" {
		version = "latest"
	}

	return Reference{
		Registry:      u.Scheme + "://" + u.Host,
		Repository:    repository,
		Version:       version,
		Authorization: auth,
	}, nil
}
