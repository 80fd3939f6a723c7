// Package spotify controls playback through the Spotify Web API.
//
// The client needs a user access token with the user-modify-playback-state
// and user-read-playback-state scopes. Obtaining and refreshing that token is
// left to the caller.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the Spotify Web API root.
	DefaultBaseURL = "https://api.spotify.com/v1/"
	// DefaultVolumeStep is the percentage applied by VolumeUp and VolumeDown.
	DefaultVolumeStep = 10
)

var (
	// ErrNotAuthenticated is returned when no token is configured or the API
	// rejects it.
	ErrNotAuthenticated = errors.New("spotify: not authenticated")
	// ErrNoActiveDevice is returned when no device is available for playback.
	ErrNoActiveDevice = errors.New("spotify: no active device")
	// ErrNothingPlaying is returned by CurrentTrack when no track is loaded.
	ErrNothingPlaying = errors.New("spotify: no track currently playing")
)

// APIError is a non-success response from the Web API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify: API error (status %d): %s", e.Status, e.Message)
}

// Unwrap maps well-known failures to the package sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrNotAuthenticated
	case http.StatusNotFound:
		return ErrNoActiveDevice
	}
	return nil
}

// StaticToken returns a token source for a fixed access token, or nil when
// token is empty.
func StaticToken(token string) oauth2.TokenSource {
	if token == "" {
		return nil
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Web API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") + "/" }
}

// WithHTTPClient sets the client whose transport carries the authenticated
// requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithVolumeStep sets the step used by VolumeUp and VolumeDown.
func WithVolumeStep(step int) Option {
	return func(c *Client) {
		if step > 0 {
			c.volumeStep = step
		}
	}
}

// Client is a Spotify Web API playback client.
type Client struct {
	tokens     oauth2.TokenSource
	baseURL    string
	httpClient *http.Client
	volumeStep int

	// api is nil when no token source is configured.
	api *spotifyapi.Client
}

// NewClient creates a Client that authenticates with tokens.
func NewClient(tokens oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		tokens:     tokens,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		volumeStep: DefaultVolumeStep,
	}
	for _, opt := range opts {
		opt(c)
	}

	if tokens != nil {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
		c.api = spotifyapi.New(oauth2.NewClient(ctx, tokens), spotifyapi.WithBaseURL(c.baseURL))
	}
	return c
}

// Authenticated reports whether a usable token is available.
func (c *Client) Authenticated(context.Context) bool {
	if c.tokens == nil {
		return false
	}
	tok, err := c.tokens.Token()
	return err == nil && tok.Valid()
}

// call runs fn against the Web API and maps its failures.
func (c *Client) call(fn func(api *spotifyapi.Client) error) error {
	if c.api == nil {
		return ErrNotAuthenticated
	}
	return mapError(fn(c.api))
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr spotifyapi.Error
	if errors.As(err, &apiErr) {
		return &APIError{Status: apiErr.Status, Message: apiErr.Message}
	}
	var tokenErr *oauth2.RetrieveError
	if errors.As(err, &tokenErr) {
		return fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	return fmt.Errorf("spotify: %w", err)
}
