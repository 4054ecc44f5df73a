package repo

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"mhub.dev/mhub/pkg/client"
)

func NewRepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Registry management",
		Long:  "Manage named registries and their credentials",
	}
	cmd.AddCommand(NewRepoAddCmd())
	cmd.AddCommand(NewRepoListCmd())
	cmd.AddCommand(NewRepoRemoveCmd())
	return cmd
}

type RepoFile struct {
	Repos []RepoDetails `json:"repos,omitempty"`
}

type RepoDetails struct {
	Name     string `json:"name,omitempty"`
	URL      string `json:"url,omitempty"`
	Username string `json:"username,omitempty"`
	Token    string `json:"token,omitempty"` // base64 encoded
}

func (r RepoDetails) Authorization() string {
	if r.Token == "" {
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(r.Token)
	if err != nil {
		return ""
	}
	return "Bearer " + string(raw)
}

func (r RepoDetails) Client() *client.Client {
	return client.NewClient(r.URL, r.Authorization())
}

var DefaultRepoManager = RepoManager{
	Path: func() string {
		home, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}
		return filepath.Join(home, ".mhub", "repos.json")
	}(),
}

type RepoManager struct {
	Path  string
	repos RepoFile
}

func (r *RepoManager) Set(item RepoDetails) error {
	if _, err := url.ParseRequestURI(item.URL); err != nil {
		return fmt.Errorf("invalid url: %s", item.URL)
	}
	if err := r.load(); err != nil {
		return err
	}
	var exists bool
	for i, repo := range r.repos.Repos {
		if repo.Name == item.Name {
			r.repos.Repos[i] = item
			exists = true
			break
		}
	}
	if !exists {
		r.repos.Repos = append(r.repos.Repos, item)
	}
	return r.save()
}

func (r *RepoManager) Get(name string) (RepoDetails, error) {
	if err := r.load(); err != nil {
		return RepoDetails{}, err
	}
	for _, repo := range r.repos.Repos {
		if repo.Name == name || repo.URL == name {
			return repo, nil
		}
	}
	return RepoDetails{}, fmt.Errorf("repo %s not found", name)
}

func (r *RepoManager) Remove(name string) error {
	if err := r.load(); err != nil {
		return err
	}
	for i, repo := range r.repos.Repos {
		if repo.Name == name {
			r.repos.Repos = append(r.repos.Repos[:i], r.repos.Repos[i+1:]...)
			return r.save()
		}
	}
	return fmt.Errorf("repo %s not found", name)
}

func (r *RepoManager) List() []RepoDetails {
	if err := r.load(); err != nil {
		return []RepoDetails{}
	}
	return r.repos.Repos
}

func (r *RepoManager) load() error {
	content, err := os.ReadFile(r.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(r.Path), 0o755); err != nil {
			return err
		}
		content = []byte("{}")
	}
	return json.Unmarshal(content, &r.repos)
}

func (r *RepoManager) save() error {
	content, err := json.MarshalIndent(r.repos, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.Path, content, 0o600)
}
