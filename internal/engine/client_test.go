package engine

import (
	"context"
	"encoding/binary"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	return client
}

func TestListContainers_MapsWirePayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, apiPrefix+"/containers/json", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("all"))
		_, _ = w.Write([]byte(`[
			{"Id":"abcdef0123456789","Names":["/web"],"Image":"nginx:latest","State":"running","Status":"Up 2 hours",
			 "Labels":{"com.docker.compose.project":"shop"}},
			{"Id":"fedcba9876543210","Names":["/db"],"Image":"postgres:16","State":"exited","Status":"Exited (0)","Labels":{}}
		]`))
	}))

	containers, err := client.ListContainers(context.Background())
	require.NoError(t, err)
	require.Len(t, containers, 2)

	assert.Equal(t, "web", containers[0].Name)
	assert.Equal(t, "abcdef012345", containers[0].ShortID)
	assert.Equal(t, "shop", containers[0].Project)
	assert.Equal(t, "standalone", containers[1].Project)
	assert.Equal(t, "exited", containers[1].State)
}

func TestListImages_MapsWirePayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"Id":"sha256:0123456789abcdef0123","RepoTags":["nginx:latest"],"Size":157286400,"Created":1700000000},
			{"Id":"sha256:deadbeefdeadbeef1234","RepoTags":[],"Size":1048576,"Created":0}
		]`))
	}))

	images, err := client.ListImages(context.Background())
	require.NoError(t, err)
	require.Len(t, images, 2)

	assert.Equal(t, "0123456789ab", images[0].ShortID)
	assert.InDelta(t, 150.0, images[0].SizeMB, 0.01)
	assert.Equal(t, "2023-11-14", images[0].Created)
	assert.Equal(t, []string{"<none>"}, images[1].Tags)
}

func TestListComposeProjects_AggregatesByLabel(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"Id":"a1","Names":["/shop-web"],"State":"running","Labels":{"com.docker.compose.project":"shop","com.docker.compose.project.config_files":"compose.yaml"}},
			{"Id":"a2","Names":["/shop-db"],"State":"exited","Labels":{"com.docker.compose.project":"shop"}},
			{"Id":"a3","Names":["/blog"],"State":"running","Labels":{"com.docker.compose.project":"blog"}},
			{"Id":"a4","Names":["/loner"],"State":"running","Labels":{}}
		]`))
	}))

	projects, err := client.ListComposeProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)

	assert.Equal(t, "blog", projects[0].Name)
	assert.Equal(t, "running", projects[0].Status)
	assert.Equal(t, "shop", projects[1].Name)
	assert.Equal(t, "mixed", projects[1].Status)
	assert.Equal(t, "compose.yaml", projects[1].ConfigFiles)
}

func TestAPIError_CarriesStatusAndMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"No such container: nope"}`))
	}))

	err := client.StartContainer(context.Background(), "nope")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, apiErr.Message, "No such container")
}

func TestFetchStats_ComputesPercentages(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0", r.URL.Query().Get("stream"))
		_, _ = w.Write([]byte(`{
			"cpu_stats":{"cpu_usage":{"total_usage":400},"system_cpu_usage":2000,"online_cpus":2},
			"precpu_stats":{"cpu_usage":{"total_usage":200},"system_cpu_usage":1000},
			"memory_stats":{"usage":134217728}
		}`))
	}))

	stats, err := client.FetchStats(context.Background(), "abc")
	require.NoError(t, err)

	// delta 200 / 1000 * 2 cpus * 100 = 40%
	assert.Equal(t, "40.0%", stats.CPU)
	assert.Equal(t, "128.0MB", stats.Memory)
}

func TestFetchLogs_DemultiplexesFrames(t *testing.T) {
	frame := func(stream byte, payload string) []byte {
		head := make([]byte, 8)
		head[0] = stream
		binary.BigEndian.PutUint32(head[4:], uint32(len(payload)))
		return append(head, payload...)
	}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(frame(streamStdout, "hello\n"))
		_, _ = w.Write(frame(streamStderr, "oops\n"))
		_, _ = w.Write(frame(streamStdout, "world\n"))
	}))

	lines, err := client.FetchLogs(context.Background(), "abc", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "oops", "world"}, lines)
}

func TestFetchLogs_RawTTYStream(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain line one\r\nplain line two\n"))
	}))

	lines, err := client.FetchLogs(context.Background(), "abc", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"plain line one", "plain line two"}, lines)
}

func TestParseHost_RejectsUnknownScheme(t *testing.T) {
	_, err := NewClient("ftp://nope")
	assert.Error(t, err)
}

func TestParseHost_DefaultsToUnixSocket(t *testing.T) {
	client, err := NewClient("")
	require.NoError(t, err)
	assert.Equal(t, "engine", client.baseURL.Host)
}
