package engine

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// FetchLogs returns the last tail lines of a container's output. Containers
// without a TTY multiplex stdout/stderr into 8-byte framed records; TTY
// containers stream raw text. Both forms are handled.
func (c *Client) FetchLogs(ctx context.Context, containerID string, tail int) ([]string, error) {
	if containerID == "" {
		return nil, fmt.Errorf("container id required")
	}
	if tail <= 0 {
		tail = 50
	}
	values := url.Values{
		"stdout": {"1"},
		"stderr": {"1"},
		"tail":   {strconv.Itoa(tail)},
	}
	rel := &url.URL{
		Path:     apiPrefix + "/containers/" + containerID + "/logs",
		RawQuery: values.Encode(),
	}
	resp, err := c.roundTrip(ctx, c.http, http.MethodGet, rel, nil, "")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	return decodeLogStream(resp.Body)
}

// Frame header stream types per the engine's attach protocol.
const (
	streamStdin  = 0
	streamStdout = 1
	streamStderr = 2
)

// decodeLogStream reads a log payload in either framed or raw form and
// splits it into lines.
func decodeLogStream(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(8)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read log stream: %w", err)
	}
	if isFrameHeader(head) {
		return decodeFramedLogs(br)
	}
	return readLines(br)
}

// isFrameHeader reports whether head looks like a multiplex frame header:
// a known stream type followed by three zero padding bytes.
func isFrameHeader(head []byte) bool {
	if len(head) < 8 {
		return false
	}
	switch head[0] {
	case streamStdin, streamStdout, streamStderr:
	default:
		return false
	}
	return head[1] == 0 && head[2] == 0 && head[3] == 0
}

func decodeFramedLogs(br *bufio.Reader) ([]string, error) {
	var buf strings.Builder
	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(br, header); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read log frame header: %w", err)
		}
		size := binary.BigEndian.Uint32(header[4:])
		if size == 0 {
			continue
		}
		if _, err := io.CopyN(&buf, br, int64(size)); err != nil {
			// A truncated final frame still yields the lines read so far.
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, fmt.Errorf("read log frame: %w", err)
		}
	}
	return splitLogLines(buf.String()), nil
}

func readLines(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read log stream: %w", err)
	}
	return splitLogLines(string(data)), nil
}

func splitLogLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}
