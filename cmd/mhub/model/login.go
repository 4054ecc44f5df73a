package model

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"mhub.dev/mhub/cmd/mhub/repo"
	"mhub.dev/mhub/pkg/registry"
)

func NewLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "login <url>",
		Example: `
  mhub login https://hub.example.com
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := BaseContext()
			defer cancel()
			if len(args) == 0 {
				return errors.New("at least one argument is required")
			}
			token, err := readToken()
			if err != nil {
				return err
			}
			return Login(ctx, args[0], token)
		},
	}
	return cmd
}

func readToken() (string, error) {
	fmt.Print("Token: ")
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	token, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// Login verifies the token against the registry and stores the credential
// for later pushes.
func Login(ctx context.Context, ref string, token string) error {
	reference, err := ParseReference(ref)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reference.Registry+"/oauth", nil)
	if err != nil {
		return err
	}
	req.Header.Add("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("login %s: %s", reference.Registry, string(msg))
	}
	status := registry.LoginStatus{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return err
	}

	if err := repo.DefaultRepoManager.Set(repo.RepoDetails{
		Name:     ref,
		URL:      reference.Registry,
		Username: status.Username,
		Token:    base64.StdEncoding.EncodeToString([]byte(token)),
	}); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", status.Username)
	return nil
}
