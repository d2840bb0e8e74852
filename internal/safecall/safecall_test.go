package safecall

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portside/portside/internal/engine"
)

type recordingSink struct {
	messages []string
}

func (s *recordingSink) SetError(msg string) {
	s.messages = append(s.messages, msg)
}

func TestCall_SuccessPassesThrough(t *testing.T) {
	sink := &recordingSink{}

	got, ok := Call(sink, "list containers", []string(nil), func() ([]string, error) {
		return []string{"a", "b"}, nil
	})

	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Empty(t, sink.messages, "success must not touch the error slot")
}

func TestCall_FailureReturnsDefaultAndSetsErrorOnce(t *testing.T) {
	sink := &recordingSink{}
	def := []string{"fallback"}

	got, ok := Call(sink, "list containers", def, func() ([]string, error) {
		return nil, errors.New("boom")
	})

	assert.False(t, ok)
	assert.Equal(t, def, got)
	require.Len(t, sink.messages, 1)
	assert.Contains(t, sink.messages[0], "list containers")
}

func TestDo_ReportsFailure(t *testing.T) {
	sink := &recordingSink{}

	ok := Do(sink, "stop container", func() error {
		return &engine.APIError{Status: http.StatusNotFound, Op: "POST /containers/x/stop"}
	})

	assert.False(t, ok)
	require.Len(t, sink.messages, 1)
	assert.Contains(t, sink.messages[0], "not found")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"api 404", &engine.APIError{Status: 404}, KindNotFound},
		{"api 403", &engine.APIError{Status: 403}, KindPermissionDenied},
		{"api 401", &engine.APIError{Status: 401}, KindPermissionDenied},
		{"api 500", &engine.APIError{Status: 500}, KindUnavailable},
		{"api 409", &engine.APIError{Status: 409}, KindUnexpected},
		{"wrapped api error", fmt.Errorf("list: %w", &engine.APIError{Status: 404}), KindNotFound},
		{"net error", &net.OpError{Op: "dial", Err: errors.New("refused")}, KindUnavailable},
		{"deadline", context.DeadlineExceeded, KindUnavailable},
		{"validation", Validation("copy", errors.New("bad path")), KindValidationFailed},
		{"plain error", errors.New("nope"), KindUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestReport_ValidationMessageIsShownVerbatim(t *testing.T) {
	sink := &recordingSink{}

	Report(sink, "copy to container", Validation("copy", errors.New("source path escapes the working directory")))

	require.Len(t, sink.messages, 1)
	assert.Contains(t, sink.messages[0], "source path escapes the working directory")
}

func TestReport_UnexpectedHidesDetail(t *testing.T) {
	sink := &recordingSink{}

	Report(sink, "prune", errors.New("open /home/someone/.secret: permission denied"))

	require.Len(t, sink.messages, 1)
	assert.NotContains(t, sink.messages[0], "/home/someone", "internal paths must not reach the UI")
}
