package figma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

const (
	figmaAPIBase = "https://api.figma.com/v1"
)

// APIError is returned when the Figma API answers with a non-success status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// Client represents a Figma API client. It performs exactly one request per call:
// no retries and no client-level timeout, cancellation is left to the caller's context.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (e.g. a test server or a proxy).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new Figma API client with the provided personal access token.
func NewClient(accessToken string, opts ...Option) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 10
	transport.MaxIdleConnsPerHost = 10

	c := &Client{
		accessToken: accessToken,
		baseURL:     figmaAPIBase,
		httpClient:  &http.Client{Transport: transport},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetFileNodes fetches the given nodes of a file. nodeIDs is the comma-separated
// list sent verbatim as the "ids" query parameter.
func (c *Client) GetFileNodes(ctx context.Context, fileKey, nodeIDs string) (*NodesResponse, error) {
	u := fmt.Sprintf("%s/files/%s/nodes?%s", c.baseURL, url.PathEscape(fileKey), url.Values{"ids": {nodeIDs}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Figma-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var nodesResp NodesResponse
	if err := json.Unmarshal(body, &nodesResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &nodesResp, nil
}

var (
	fileKeyRe   = regexp.MustCompile(`^https?://(?:www\.)?figma\.com/(?:file|design)/([A-Za-z0-9]+)(?:[/?#]|$)`)
	bareKeyRe   = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	nodesPathRe = regexp.MustCompile(`/nodes/([^/?#]+)`)
)

// ExtractFileKey extracts the unique file identifier from a Figma URL.
// Supports both /file/ and /design/ URL patterns (e.g., figma.com/file/ABC123/Design-Name).
func ExtractFileKey(figmaURL string) (string, error) {
	matches := fileKeyRe.FindStringSubmatch(figmaURL)
	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Figma URL format: must be a valid figma.com URL with /file/ or /design/ path")
	}

	return matches[1], nil
}

// ResolveFileKey accepts either a bare file key or a Figma file URL.
func ResolveFileKey(input string) (string, error) {
	input = strings.TrimSpace(input)
	if bareKeyRe.MatchString(input) {
		return input, nil
	}
	return ExtractFileKey(input)
}

// ExtractNodeIDs reads node IDs from a Figma URL. It understands the
// node-id query parameter, a "#" fragment and the /nodes/ path form.
// Dashes (the URL-encoded form) are converted to colons. An URL without
// node IDs yields an empty slice.
func ExtractNodeIDs(figmaURL string) ([]string, error) {
	u, err := url.Parse(figmaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	var raw string
	switch {
	case u.Query().Get("node-id") != "":
		raw = u.Query().Get("node-id")
	case u.Fragment != "":
		raw = u.Fragment
	default:
		if m := nodesPathRe.FindStringSubmatch(u.Path); len(m) == 2 {
			raw = m[1]
		}
	}

	return NormalizeNodeIDs(raw), nil
}

// NormalizeNodeIDs splits a comma-separated node ID list, trims each entry,
// converts "123-456" to "123:456" and drops empties and duplicates.
// Instance IDs are converted per ";"-separated segment, so
// "I5666-180910;1-1" becomes "I5666:180910;1:1".
func NormalizeNodeIDs(list string) []string {
	parts := strings.Split(list, ",")
	ids := make([]string, 0, len(parts))

	for _, part := range parts {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		ids = append(ids, normalizeNodeID(id))
	}

	return deduplicateNodeIDs(ids)
}

func normalizeNodeID(id string) string {
	segments := strings.Split(id, ";")
	for i, seg := range segments {
		if !strings.Contains(seg, ":") {
			segments[i] = strings.Replace(seg, "-", ":", 1)
		}
	}
	return strings.Join(segments, ";")
}

func deduplicateNodeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}

	return result
}
