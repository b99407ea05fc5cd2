package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

// Client fetches topology snapshots from a remote inventory endpoint.
type Client struct {
	baseURL      string
	topologyPath string
	httpClient   *http.Client
}

// NewClient constructs a client targeting the configured inventory service.
func NewClient(baseURL, topologyPath string, timeout time.Duration) *Client {
	if topologyPath == "" {
		topologyPath = "/api/v1/topology"
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		topologyPath: topologyPath,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchTopology retrieves and validates the current topology.
func (c *Client) FetchTopology(ctx context.Context) (models.Topology, error) {
	var topo models.Topology
	if c == nil || c.baseURL == "" {
		return topo, fmt.Errorf("topology endpoint not configured")
	}

	endpoint := c.resolvePath(c.topologyPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return topo, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return topo, fmt.Errorf("topology request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return topo, fmt.Errorf("topology endpoint returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&topo); err != nil {
		return topo, fmt.Errorf("decode topology response: %w", err)
	}
	if err := Validate(topo); err != nil {
		return topo, fmt.Errorf("invalid topology from %s: %w", endpoint, err)
	}
	return topo, nil
}

func (c *Client) resolvePath(p string) string {
	cleaned := "/" + strings.TrimLeft(p, "/")
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + cleaned
	}
	u.Path = path.Join(u.Path, cleaned)
	return u.String()
}
