// Package spotify implements the catalog port against the Spotify Web API.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/cadenza-labs/cadenza/internal/core/ports"
)

// Client adapts the Spotify Web API to the CatalogProvider port.
type Client struct {
	api *spotifyapi.Client
	log *zap.Logger
}

// compile-time interface assertion
var _ ports.CatalogProvider = (*Client)(nil)

// NewClient wraps an already-authenticated HTTP client.
func NewClient(httpClient *http.Client, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		api: spotifyapi.New(httpClient),
		log: log,
	}
}

// NewClientCredentials builds a client from application credentials. The
// resulting client can search the catalog; user-scoped samples require a
// user-authorized client (see NewUserClient).
func NewClientCredentials(ctx context.Context, clientID, clientSecret string, log *zap.Logger) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("spotify adapter: client id and secret are required")
	}

	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return NewClient(cfg.Client(withRetryingHTTPClient(ctx)), log), nil
}

// NewUserClient builds a client around a user access token obtained by the
// host application's own authorization flow.
func NewUserClient(ctx context.Context, accessToken string, log *zap.Logger) (*Client, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("spotify adapter: access token is required")
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	httpClient := oauth2.NewClient(withRetryingHTTPClient(ctx), source)
	return NewClient(httpClient, log), nil
}

// withRetryingHTTPClient makes oauth2-built clients route through the
// retrying transport.
func withRetryingHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
		Transport: newRetryTransport(nil, 0, 0),
		Timeout:   30 * time.Second,
	})
}
