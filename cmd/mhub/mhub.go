package main

import (
	"crypto/tls"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"mhub.dev/mhub/cmd/mhub/model"
	"mhub.dev/mhub/cmd/mhub/repo"
)

const ErrExitCode = 1

func main() {
	if err := NewMhubCmd().Execute(); err != nil {
		os.Exit(ErrExitCode)
	}
}

func NewMhubCmd() *cobra.Command {
	insecureSkipVerify := false
	cmd := model.NewMhubCmd()
	cmd.AddCommand(
		repo.NewRepoCmd(),
	)
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if insecureSkipVerify {
			http.DefaultTransport.(*http.Transport).TLSClientConfig = &tls.Config{
				InsecureSkipVerify: true,
			}
		}
	}
	cmd.PersistentFlags().BoolVarP(&insecureSkipVerify, "insecure", "", insecureSkipVerify, "tls insecure skip verify")
	return cmd
}
