package gh

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v63/github"

	"projsync/internal/models"
)

// Timeouts per endpoint class. Listing endpoints page through large
// result sets; mutating endpoints answer quickly or not at all.
const (
	ListTimeout  = 30 * time.Second
	WriteTimeout = 10 * time.Second
)

// Options configures a Client. All remote behavior is passed in at
// construction; nothing is read from process-wide state.
type Options struct {
	// BaseURL of the GitHub REST API. Empty means api.github.com.
	BaseURL string
	// Token is the personal access token. Required.
	Token string
	// Username is the account login, used only for the basic-auth
	// connection test.
	Username string
	// WebhookBaseURL is the externally reachable base URL of this
	// installation, used to build webhook delivery URLs.
	WebhookBaseURL string
}

// Client wraps the GitHub REST client with installation options.
type Client struct {
	gh   *github.Client
	http *http.Client
	opts Options
}

// NewClient builds a Client from options. A missing token is a
// configuration error; no network I/O happens here.
func NewClient(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, Configurationf("GitHub token is not set. Run 'pjs config github' first")
	}

	httpClient := &http.Client{
		Timeout: ListTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ghClient := github.NewClient(httpClient).WithAuthToken(opts.Token)
	if opts.BaseURL != "" && opts.BaseURL != models.DefaultAPIBaseURL {
		base, err := parseBaseURL(opts.BaseURL)
		if err != nil {
			return nil, err
		}
		ghClient.BaseURL = base
	}

	return &Client{
		gh:   ghClient,
		http: httpClient,
		opts: opts,
	}, nil
}

// GitHub exposes the underlying REST client
func (c *Client) GitHub() *github.Client {
	return c.gh
}

func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, Configurationf("invalid GitHub API URL %q: %v", raw, err)
	}
	return base, nil
}

// TestConnection calls the current-user endpoint with basic auth and
// returns the remote login name. An HTTP-level rejection surfaces the
// remote message; a transport failure is a connectivity error.
func (c *Client) TestConnection(ctx context.Context) (string, error) {
	if c.opts.Username == "" {
		return "", Configurationf("GitHub username is not set. Run 'pjs config github' first")
	}

	transport := &github.BasicAuthTransport{
		Username: c.opts.Username,
		Password: c.opts.Token,
	}
	basicClient := github.NewClient(transport.Client())
	basicClient.BaseURL = c.gh.BaseURL

	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	user, _, err := basicClient.Users.Get(ctx, "")
	if err != nil {
		return "", wrapRemote(err)
	}
	return user.GetLogin(), nil
}

// FetchImage downloads an image (owner avatar) and returns it
// base64-encoded.
func (c *Client) FetchImage(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSpace(rawURL), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &ConnectivityError{cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &RemoteRejectionError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("fetching %s", rawURL)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// WebhookURL builds the delivery URL for a webhook path segment
func (c *Client) WebhookURL(path string) (string, error) {
	if c.opts.WebhookBaseURL == "" {
		return "", Configurationf("webhook base URL is not configured. Run 'pjs config github --webhook-url <url>'")
	}
	return fmt.Sprintf("%s/github/webhook/%s", strings.TrimSuffix(c.opts.WebhookBaseURL, "/"), path), nil
}
