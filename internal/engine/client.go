package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Ensure Client implements Engine at compile time.
var _ Engine = (*Client)(nil)

// Client talks to the container engine's HTTP API. The default endpoint is
// the local unix socket; tcp endpoints work too for remote testing.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	slow      *http.Client // no timeout; long transfers rely on ctx
	userAgent string
	compose   composeRunner
}

const (
	defaultHost      = "unix:///var/run/docker.sock"
	apiPrefix        = "/v1.43"
	defaultUserAgent = "portside/0.1"
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client for the given engine host. An empty host selects
// the default unix socket.
func NewClient(host string) (*Client, error) {
	base, transport, err := parseHost(host)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Transport: transport, Timeout: requestTimeout},
		slow:      &http.Client{Transport: transport},
		userAgent: defaultUserAgent,
		compose:   execComposeRunner{},
	}, nil
}

// Ping verifies the engine endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/_ping", nil, nil)
}

// ListContainers returns all containers, running or not, in engine order.
func (c *Client) ListContainers(ctx context.Context) ([]Container, error) {
	var raw []containerJSON
	if err := c.get(ctx, "/containers/json", url.Values{"all": {"1"}}, &raw); err != nil {
		return nil, err
	}
	out := make([]Container, 0, len(raw))
	for _, cj := range raw {
		out = append(out, cj.toContainer())
	}
	return out, nil
}

// ListImages returns local images.
func (c *Client) ListImages(ctx context.Context) ([]Image, error) {
	var raw []imageJSON
	if err := c.get(ctx, "/images/json", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]Image, 0, len(raw))
	for _, ij := range raw {
		out = append(out, ij.toImage())
	}
	return out, nil
}

// ListVolumes returns named volumes.
func (c *Client) ListVolumes(ctx context.Context) ([]Volume, error) {
	var raw volumeListJSON
	if err := c.get(ctx, "/volumes", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]Volume, 0, len(raw.Volumes))
	for _, vj := range raw.Volumes {
		out = append(out, vj.toVolume())
	}
	return out, nil
}

// ListNetworks returns networks with their first configured subnet.
func (c *Client) ListNetworks(ctx context.Context) ([]Network, error) {
	var raw []networkJSON
	if err := c.get(ctx, "/networks", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]Network, 0, len(raw))
	for _, nj := range raw {
		out = append(out, nj.toNetwork())
	}
	return out, nil
}

// ListComposeProjects derives compose projects from container labels. The
// engine has no first-class project listing, so this piggybacks on the
// container list the same way the compose CLI does.
func (c *Client) ListComposeProjects(ctx context.Context) ([]ComposeProject, error) {
	var raw []containerJSON
	if err := c.get(ctx, "/containers/json", url.Values{"all": {"1"}}, &raw); err != nil {
		return nil, err
	}
	type agg struct {
		files  string
		states map[string]bool
	}
	projects := make(map[string]*agg)
	for _, cj := range raw {
		name := cj.Labels[composeProjectLabel]
		if name == "" {
			continue
		}
		a := projects[name]
		if a == nil {
			files := cj.Labels[composeFilesLabel]
			if files == "" {
				files = "n/a"
			}
			a = &agg{files: files, states: make(map[string]bool)}
			projects[name] = a
		}
		a.states[cj.State] = true
	}
	out := make([]ComposeProject, 0, len(projects))
	for name, a := range projects {
		status := "mixed"
		if len(a.states) == 1 {
			for s := range a.states {
				status = s
			}
		}
		out = append(out, ComposeProject{Name: name, ConfigFiles: a.files, Status: status})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// FetchStats takes a single non-streaming stats sample for a container.
func (c *Client) FetchStats(ctx context.Context, containerID string) (ContainerStats, error) {
	if containerID == "" {
		return ContainerStats{}, fmt.Errorf("container id required")
	}
	var raw statsJSON
	path := "/containers/" + containerID + "/stats"
	if err := c.get(ctx, path, url.Values{"stream": {"0"}}, &raw); err != nil {
		return ContainerStats{}, err
	}
	return raw.toStats(), nil
}

func (s statsJSON) toStats() ContainerStats {
	cpuDelta := float64(s.CPUStats.CPUUsage.TotalUsage) - float64(s.PreCPUStats.CPUUsage.TotalUsage)
	sysDelta := float64(s.CPUStats.SystemCPUUsage) - float64(s.PreCPUStats.SystemCPUUsage)
	cpus := s.CPUStats.OnlineCPUs
	if cpus == 0 {
		cpus = len(s.CPUStats.CPUUsage.PercpuUsage)
	}
	if cpus == 0 {
		cpus = 1
	}
	percent := 0.0
	if cpuDelta > 0 && sysDelta > 0 {
		percent = cpuDelta / sysDelta * float64(cpus) * 100.0
	}
	memMB := float64(s.MemoryStats.Usage) / (1024 * 1024)
	return ContainerStats{
		CPU:    fmt.Sprintf("%.1f%%", percent),
		Memory: fmt.Sprintf("%.1fMB", memMB),
	}
}

func (c *Client) get(ctx context.Context, path string, values url.Values, dest any) error {
	rel := &url.URL{Path: apiPrefix + path}
	if values != nil {
		rel.RawQuery = values.Encode()
	}
	return c.do(ctx, http.MethodGet, rel, nil, dest)
}

func (c *Client) do(ctx context.Context, method string, rel *url.URL, body io.Reader, dest any) error {
	resp, err := c.roundTrip(ctx, c.http, method, rel, body, "")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if dest == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, hc *http.Client, method string, rel *url.URL, body io.Reader, contentType string) (*http.Response, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode >= 400 {
		msg := readErrorMessage(resp.Body)
		_ = resp.Body.Close()
		return nil, &APIError{Status: resp.StatusCode, Op: method + " " + rel.Path, Message: msg}
	}
	return resp, nil
}

// readErrorMessage extracts the engine's {"message": ...} error body when
// present; falls back to the raw text.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(data))
}

func parseHost(host string) (*url.URL, *http.Transport, error) {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		trimmed = defaultHost
	}
	switch {
	case strings.HasPrefix(trimmed, "unix://"):
		socketPath := strings.TrimPrefix(trimmed, "unix://")
		if socketPath == "" {
			return nil, nil, fmt.Errorf("unix host %q has no socket path", host)
		}
		transport := &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socketPath)
			},
		}
		// Host is a placeholder; the transport always dials the socket.
		return &url.URL{Scheme: "http", Host: "engine"}, transport, nil
	case strings.HasPrefix(trimmed, "tcp://"):
		trimmed = "http://" + strings.TrimPrefix(trimmed, "tcp://")
		fallthrough
	case strings.HasPrefix(trimmed, "http://"), strings.HasPrefix(trimmed, "https://"):
		u, err := url.Parse(trimmed)
		if err != nil {
			return nil, nil, fmt.Errorf("parse engine host %q: %w", host, err)
		}
		u.Path = ""
		u.RawQuery = ""
		u.Fragment = ""
		return u, &http.Transport{}, nil
	default:
		return nil, nil, fmt.Errorf("engine host %q: expected unix:// or tcp:// scheme", host)
	}
}
