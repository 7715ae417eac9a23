package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// TargetName is the registry name of the GitHub Actions target.
const TargetName = "github"

// githubAPIVersion pins the REST API version header.
const githubAPIVersion = "2022-11-28"

const defaultBaseURL = "https://api.github.com"

// maxResponseBytes bounds how much of an error body is read.
const maxResponseBytes = 1 << 20

// Config holds configuration for creating a GitHub Actions secrets client.
type Config struct {
	// BaseURL is the root URL for API requests. Defaults to
	// "https://api.github.com". Must use HTTPS.
	BaseURL string

	// Token is a personal access token with permission to write
	// repository Actions secrets.
	Token string

	// HTTPClient is used for all HTTP requests. Defaults to a client with
	// a 30 second timeout.
	HTTPClient *http.Client

	// UserAgent defaults to "cred-cli".
	UserAgent string
}

// Client writes GitHub Actions repository secrets.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client

	mu         sync.Mutex
	publicKeys map[string]*publicKeyCall
}

// publicKeyCall lets concurrent upserts share one public key fetch per repository.
type publicKeyCall struct {
	done chan struct{}
	key  *PublicKey
	err  error
}

// NewClient validates config and returns a client.
func NewClient(config Config) (*Client, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	if !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("github: API client requires HTTPS (got %q)", baseURL)
	}
	if config.Token == "" {
		return nil, fmt.Errorf("github: no token configured (run `cred target set github`)")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "cred-cli"
	}

	return &Client{
		baseURL:    baseURL,
		token:      config.Token,
		userAgent:  userAgent,
		httpClient: httpClient,
		publicKeys: make(map[string]*publicKeyCall),
	}, nil
}

// Name implements the target client interface.
func (client *Client) Name() string {
	return TargetName
}

// do executes an authenticated request. The path is relative to the base
// URL. Non-2xx responses are returned as *APIError.
func (client *Client) do(ctx context.Context, method, path string, requestBody any) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("github: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("github: creating request: %w", err)
	}

	request.Header.Set("Authorization", "Bearer "+client.token)
	request.Header.Set("Accept", "application/vnd.github+json")
	request.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	request.Header.Set("User-Agent", client.userAgent)
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("github: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("github: reading response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, parseAPIErrorFromBody(response.StatusCode, body)
	}
	return body, nil
}
