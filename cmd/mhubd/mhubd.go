package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"
	"mhub.dev/mhub/pkg/registry"
	"mhub.dev/mhub/pkg/version"
)

const ErrExitCode = 1

func main() {
	if err := NewRegistryCmd().Execute(); err != nil {
		fmt.Println(err.Error())
		os.Exit(ErrExitCode)
	}
}

func NewRegistryCmd() *cobra.Command {
	options := registry.DefaultOptions()
	cmd := &cobra.Command{
		Use:     "mhubd",
		Short:   "mhubd",
		Version: version.Get().String(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
			defer cancel()

			log.SetFlags(log.LstdFlags | log.Lshortfile)
			ctx = logr.NewContext(ctx, stdr.NewWithOptions(log.Default(), stdr.Options{LogCaller: stdr.Error}))

			return registry.Run(ctx, options)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&options.Listen, "listen", options.Listen, "listen address")
	flags.StringVar(&options.TLS.CAFile, "tls-ca", options.TLS.CAFile, "tls ca file")
	flags.StringVar(&options.TLS.CertFile, "tls-cert", options.TLS.CertFile, "tls cert file")
	flags.StringVar(&options.TLS.KeyFile, "tls-key", options.TLS.KeyFile, "tls key file")
	flags.StringVar(&options.S3.Bucket, "s3-bucket", options.S3.Bucket, "s3 bucket")
	flags.StringVar(&options.S3.URL, "s3-url", options.S3.URL, "s3 url")
	flags.StringVar(&options.S3.AccessKey, "s3-access-key", options.S3.AccessKey, "s3 access key")
	flags.StringVar(&options.S3.SecretKey, "s3-secret-key", options.S3.SecretKey, "s3 secret key")
	flags.DurationVar(&options.S3.PresignExpire, "s3-presign-expire", options.S3.PresignExpire, "s3 presign expire")
	flags.StringVar(&options.S3.Region, "s3-region", options.S3.Region, "s3 region")
	flags.StringVar(&options.Local.Basepath, "local-path", options.Local.Basepath, "local storage path")
	flags.StringVar(&options.CachePath, "cache-path", options.CachePath, "repository index cache path, empty disables the cache")
	flags.StringVar(&options.Auth.Secret, "auth-secret", options.Auth.Secret, "secret signing account tokens, empty allows anonymous access")
	flags.StringVar(&options.Auth.Issuer, "oidc-issuer", options.Auth.Issuer, "oidc issuer")
	flags.BoolVar(&options.EnableRedirect, "enable-redirect", options.EnableRedirect, "enable blob storage redirect")

	cmd.AddCommand(NewTokenCmd())
	return cmd
}

// NewTokenCmd issues a bearer token for an account, signed with the same
// secret mhubd verifies against.
func NewTokenCmd() *cobra.Command {
	secret := ""
	validity := 30 * 24 * time.Hour
	cmd := &cobra.Command{
		Use:   "token <username>",
		Short: "issue a bearer token for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("one argument is required: <username>")
			}
			if secret == "" {
				return fmt.Errorf("--auth-secret is required")
			}
			auth := registry.NewTokenAuth(&registry.AuthOptions{Secret: secret})
			token, err := auth.Sign(args[0], validity)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "auth-secret", secret, "secret signing account tokens")
	cmd.Flags().DurationVar(&validity, "validity", validity, "token validity, 0 means no expiry")
	return cmd
}
