package registry

import (
	"context"
	"net"
	"net/http"
	"os"

	"github.com/go-logr/logr"
	"github.com/gorilla/handlers"
)

func Run(ctx context.Context, opts *Options) error {
	log := logr.FromContextOrDiscard(ctx)

	registry, err := NewRegistry(ctx, opts)
	if err != nil {
		return err
	}

	auth := NewTokenAuth(opts.Auth)
	var handler http.Handler = registry.route(auth)
	if opts.Auth.Issuer != "" {
		handler, err = NewOIDCAuthFilter(ctx, opts.Auth.Issuer, handler)
		if err != nil {
			return err
		}
	} else {
		handler = auth.Filter(handler)
	}
	handler = handlers.CombinedLoggingHandler(os.Stdout, handler)

	server := http.Server{
		Addr:    opts.Listen,
		Handler: handler,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()
	if opts.TLS.CertFile != "" && opts.TLS.KeyFile != "" {
		log.Info("registry listening", "https", opts.Listen)
		return server.ListenAndServeTLS(opts.TLS.CertFile, opts.TLS.KeyFile)
	}
	log.Info("registry listening", "http", opts.Listen)
	return server.ListenAndServe()
}

func NewRegistry(ctx context.Context, opts *Options) (*Registry, error) {
	store, err := NewFSRegistryStore(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Registry{Store: store}, nil
}
