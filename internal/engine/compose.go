package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// composeRunner abstracts the docker CLI for the handful of verbs that have
// no useful API equivalent (compose project control, image builds). A fake
// implementation stands in during tests.
type composeRunner interface {
	run(ctx context.Context, args ...string) error
}

type execComposeRunner struct{}

func (execComposeRunner) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "docker", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("docker %s: %w: %s", args[0], err, firstLine(detail))
		}
		return fmt.Errorf("docker %s: %w", args[0], err)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Compose project control. The project name comes from the container labels,
// so `-p` is enough to address a project without its config files.

func (c *Client) ComposeUp(ctx context.Context, project string) error {
	if err := requireProject(project); err != nil {
		return err
	}
	return c.compose.run(ctx, "compose", "-p", project, "up", "-d")
}

func (c *Client) ComposeDown(ctx context.Context, project string) error {
	if err := requireProject(project); err != nil {
		return err
	}
	return c.compose.run(ctx, "compose", "-p", project, "down")
}

// ComposeRemove tears down a project including its volumes.
func (c *Client) ComposeRemove(ctx context.Context, project string) error {
	if err := requireProject(project); err != nil {
		return err
	}
	return c.compose.run(ctx, "compose", "-p", project, "down", "-v")
}

func (c *Client) ComposePause(ctx context.Context, project string) error {
	if err := requireProject(project); err != nil {
		return err
	}
	return c.compose.run(ctx, "compose", "-p", project, "pause")
}

func requireProject(project string) error {
	if strings.TrimSpace(project) == "" {
		return fmt.Errorf("compose project name required")
	}
	return nil
}
