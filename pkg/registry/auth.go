package registry

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	autherrors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt"
	"mhub.dev/mhub/pkg/errors"
)

type AuthOptions struct {
	// Secret signs and verifies account bearer tokens. Empty disables auth.
	Secret string
	// Issuer enables OIDC token verification instead of the shared secret.
	Issuer string
}

func NewDefaultAuthOptions() *AuthOptions {
	return &AuthOptions{}
}

type LoginStatus struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

type TokenAuth struct {
	secret []byte
	srv    *server.Server
	tokens sync.Map // token -> expiry
}

func NewTokenAuth(opts *AuthOptions) *TokenAuth {
	return &TokenAuth{
		secret: []byte(opts.Secret),
		srv:    server.NewServer(server.NewConfig(), manage.NewDefaultManager()),
	}
}

func (a *TokenAuth) Enabled() bool {
	return len(a.secret) > 0
}

func (a *TokenAuth) Verify(token string) (*jwt.StandardClaims, error) {
	claims := &jwt.StandardClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Sign issues a bearer token for username, valid for the given duration.
func (a *TokenAuth) Sign(username string, validity time.Duration) (string, error) {
	claims := jwt.StandardClaims{
		Subject:  username,
		IssuedAt: time.Now().Unix(),
	}
	if validity > 0 {
		claims.ExpiresAt = time.Now().Add(validity).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Oauth validates the presented bearer token and reports the account it
// belongs to. The CLI login flow calls this before storing the credential.
func (a *TokenAuth) Oauth(w http.ResponseWriter, r *http.Request) {
	if !a.Enabled() {
		ResponseOK(w, LoginStatus{Username: "anonymous"})
		return
	}
	token, ok := a.srv.BearerAuth(r)
	if !ok {
		ResponseError(w, errors.NewAuthFailedError(autherrors.ErrInvalidAccessToken))
		return
	}
	claims, err := a.Verify(token)
	if err != nil {
		ResponseError(w, errors.NewAuthFailedError(err))
		return
	}
	status := LoginStatus{Username: claims.Subject}
	if claims.ExpiresAt > 0 {
		status.ExpiresAt = time.Unix(claims.ExpiresAt, 0)
		a.tokens.LoadOrStore(token, status.ExpiresAt)
	}
	ResponseOK(w, status)
}

// Filter rejects requests without a valid bearer token. The health and login
// endpoints stay open.
func (a *TokenAuth) Filter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() || r.URL.Path == "/oauth" || r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := a.srv.BearerAuth(r)
		if !ok {
			ResponseError(w, errors.NewAuthFailedError(autherrors.ErrInvalidAccessToken))
			return
		}
		if value, ok := a.tokens.Load(token); ok {
			if exp := value.(time.Time); time.Now().After(exp) {
				a.tokens.Delete(token)
				ResponseError(w, errors.NewUnauthorizedError("token has expired"))
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		if _, err := a.Verify(token); err != nil {
			ResponseError(w, errors.NewAuthFailedError(err))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewOIDCAuthFilter verifies bearer tokens against an OIDC issuer.
func NewOIDCAuthFilter(ctx context.Context, issuer string, next http.Handler) (http.Handler, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, err
	}
	verifier := provider.Verifier(&oidc.Config{SkipClientIDCheck: true})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			ResponseError(w, errors.NewUnauthorizedError("missing bearer token"))
			return
		}
		if _, err := verifier.Verify(r.Context(), token); err != nil {
			ResponseError(w, errors.NewAuthFailedError(err))
			return
		}
		next.ServeHTTP(w, r)
	}), nil
}
