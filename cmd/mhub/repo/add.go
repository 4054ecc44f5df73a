package repo

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRepoAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a registry",
		Example: `
	# Add a registry
	mhub repo add my-hub https://hub.example.com
		`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("repo add requires two arguments")
			}
			return DefaultRepoManager.Set(RepoDetails{
				Name: args[0],
				URL:  args[1],
			})
		},
	}
	return cmd
}
