package engine

import (
	"archive/tar"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Container lifecycle. Each verb is a single POST; the engine responds 204
// on success.

func (c *Client) StartContainer(ctx context.Context, id string) error {
	return c.post(ctx, "/containers/"+id+"/start", nil)
}

func (c *Client) StopContainer(ctx context.Context, id string) error {
	return c.post(ctx, "/containers/"+id+"/stop", nil)
}

func (c *Client) RestartContainer(ctx context.Context, id string) error {
	return c.post(ctx, "/containers/"+id+"/restart", nil)
}

func (c *Client) PauseContainer(ctx context.Context, id string) error {
	return c.post(ctx, "/containers/"+id+"/pause", nil)
}

func (c *Client) UnpauseContainer(ctx context.Context, id string) error {
	return c.post(ctx, "/containers/"+id+"/unpause", nil)
}

func (c *Client) RemoveContainer(ctx context.Context, id string) error {
	rel := &url.URL{Path: apiPrefix + "/containers/" + id, RawQuery: url.Values{"force": {"1"}}.Encode()}
	return c.do(ctx, http.MethodDelete, rel, nil, nil)
}

func (c *Client) RenameContainer(ctx context.Context, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("new name required")
	}
	return c.post(ctx, "/containers/"+id+"/rename", url.Values{"name": {name}})
}

func (c *Client) CommitContainer(ctx context.Context, id, repo, tag string) error {
	if strings.TrimSpace(repo) == "" {
		return fmt.Errorf("repository required")
	}
	values := url.Values{"container": {id}, "repo": {repo}}
	if tag != "" {
		values.Set("tag", tag)
	}
	return c.post(ctx, "/commit", values)
}

// CopyToContainer uploads srcPath into the container at destPath as a tar
// archive. Path validation happens in the action dispatcher before this is
// ever called; the engine enforces its own rules as well.
func (c *Client) CopyToContainer(ctx context.Context, id, srcPath, destPath string) error {
	archive, err := tarFile(srcPath)
	if err != nil {
		return err
	}
	rel := &url.URL{
		Path:     apiPrefix + "/containers/" + id + "/archive",
		RawQuery: url.Values{"path": {destPath}}.Encode(),
	}
	resp, err := c.roundTrip(ctx, c.slow, http.MethodPut, rel, archive, "application/x-tar")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// RunImage creates and starts a detached container from an image. An empty
// name lets the engine pick one.
func (c *Client) RunImage(ctx context.Context, imageID, name string) error {
	values := url.Values{}
	if strings.TrimSpace(name) != "" {
		values.Set("name", name)
	}
	rel := &url.URL{Path: apiPrefix + "/containers/create"}
	if len(values) > 0 {
		rel.RawQuery = values.Encode()
	}
	body := strings.NewReader(fmt.Sprintf(`{"Image":%q}`, imageID))
	var created struct {
		ID string `json:"Id"`
	}
	resp, err := c.roundTrip(ctx, c.http, http.MethodPost, rel, body, "application/json")
	if err != nil {
		return err
	}
	if err := decodeAndClose(resp, &created); err != nil {
		return err
	}
	return c.StartContainer(ctx, created.ID)
}

// Image operations.

// PullImage pulls an image by reference. The create endpoint streams progress
// JSON; portside only cares about completion, so the stream is drained.
func (c *Client) PullImage(ctx context.Context, ref string) error {
	if strings.TrimSpace(ref) == "" || ref == "<none>" {
		return fmt.Errorf("image reference required")
	}
	rel := &url.URL{
		Path:     apiPrefix + "/images/create",
		RawQuery: url.Values{"fromImage": {ref}}.Encode(),
	}
	resp, err := c.roundTrip(ctx, c.slow, http.MethodPost, rel, nil, "")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, err = io.Copy(io.Discard, resp.Body)
	return err
}

// BuildImage shells out to the CLI. Streaming a build context tarball through
// the API buys nothing for a dashboard and the CLI handles .dockerignore.
func (c *Client) BuildImage(ctx context.Context, dir, tag string) error {
	if strings.TrimSpace(tag) == "" {
		return fmt.Errorf("image tag required")
	}
	if dir == "" {
		dir = "."
	}
	return c.compose.run(ctx, "build", "-t", tag, dir)
}

// SaveImage exports an image to a local tar file.
func (c *Client) SaveImage(ctx context.Context, id, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("output path required")
	}
	rel := &url.URL{Path: apiPrefix + "/images/" + id + "/get"}
	resp, err := c.roundTrip(ctx, c.slow, http.MethodGet, rel, nil, "")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()
	if _, err := io.Copy(file, resp.Body); err != nil {
		return fmt.Errorf("write image archive: %w", err)
	}
	return nil
}

// LoadImage imports an image from a local tar file.
func (c *Client) LoadImage(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()
	rel := &url.URL{Path: apiPrefix + "/images/load"}
	resp, err := c.roundTrip(ctx, c.slow, http.MethodPost, rel, file, "application/x-tar")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, err = io.Copy(io.Discard, resp.Body)
	return err
}

func (c *Client) RemoveImage(ctx context.Context, id string) error {
	rel := &url.URL{Path: apiPrefix + "/images/" + id, RawQuery: url.Values{"force": {"1"}}.Encode()}
	return c.do(ctx, http.MethodDelete, rel, nil, nil)
}

// Volume and network operations.

func (c *Client) CreateVolume(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("volume name required")
	}
	rel := &url.URL{Path: apiPrefix + "/volumes/create"}
	body := strings.NewReader(fmt.Sprintf(`{"Name":%q}`, name))
	resp, err := c.roundTrip(ctx, c.http, http.MethodPost, rel, body, "application/json")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) RemoveVolume(ctx context.Context, name string) error {
	rel := &url.URL{Path: apiPrefix + "/volumes/" + name, RawQuery: url.Values{"force": {"1"}}.Encode()}
	return c.do(ctx, http.MethodDelete, rel, nil, nil)
}

func (c *Client) RemoveNetwork(ctx context.Context, id string) error {
	rel := &url.URL{Path: apiPrefix + "/networks/" + id}
	return c.do(ctx, http.MethodDelete, rel, nil, nil)
}

// PruneSystem removes stopped containers, dangling images, and unused
// volumes and networks. Failures after the first prune still abort; the
// dispatcher surfaces whichever step broke.
func (c *Client) PruneSystem(ctx context.Context) error {
	for _, path := range []string{"/containers/prune", "/images/prune", "/volumes/prune", "/networks/prune"} {
		if err := c.post(ctx, path, nil); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, values url.Values) error {
	rel := &url.URL{Path: apiPrefix + path}
	if values != nil {
		rel.RawQuery = values.Encode()
	}
	return c.do(ctx, http.MethodPost, rel, nil, nil)
}

func decodeAndClose(resp *http.Response, dest any) error {
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// tarFile packs a single file or directory into an in-memory tar archive
// rooted at its base name.
func tarFile(srcPath string) (io.Reader, error) {
	info, err := os.Stat(srcPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", srcPath, err)
	}
	buf := &bytes.Buffer{}
	tw := tar.NewWriter(buf)
	base := filepath.Base(srcPath)

	addFile := func(path, name string, fi os.FileInfo) error {
		hdr, err := tar.FileInfoHeader(fi, "")
		if err != nil {
			return err
		}
		hdr.Name = name
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = file.Close() }()
		_, err = io.Copy(tw, file)
		return err
	}

	if info.IsDir() {
		err = filepath.Walk(srcPath, func(path string, fi os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			relName, relErr := filepath.Rel(filepath.Dir(srcPath), path)
			if relErr != nil {
				return relErr
			}
			return addFile(path, filepath.ToSlash(relName), fi)
		})
	} else {
		err = addFile(srcPath, base, info)
	}
	if err != nil {
		return nil, fmt.Errorf("tar %s: %w", srcPath, err)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("tar %s: %w", srcPath, err)
	}
	return buf, nil
}
