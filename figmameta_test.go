package figmameta

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellenic-development/figma-meta/pkg/figma"
)

// recordingLogger collects messages per level.
type recordingLogger struct {
	infos, warns, errs []string
}

func (l *recordingLogger) Infof(f string, a ...any)  { l.infos = append(l.infos, fmt.Sprintf(f, a...)) }
func (l *recordingLogger) Warnf(f string, a ...any)  { l.warns = append(l.warns, fmt.Sprintf(f, a...)) }
func (l *recordingLogger) Errorf(f string, a ...any) { l.errs = append(l.errs, fmt.Sprintf(f, a...)) }

func newFigmaServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func TestRunValidation(t *testing.T) {
	srv, calls := newFigmaServer(t, http.StatusOK, `{"nodes": {}}`)

	tests := []struct {
		name string
		opts Options
		msg  string
	}{
		{"missing token", Options{FileKey: "K", NodeIDs: "1:1"}, "missing required input: access token"},
		{"missing file key", Options{AccessToken: "t", NodeIDs: "1:1"}, "missing required input: file key"},
		{"blank node ids", Options{AccessToken: "t", FileKey: "K", NodeIDs: "  "}, "missing required input: node IDs"},
		{"only commas", Options{AccessToken: "t", FileKey: "K", NodeIDs: ", ,"}, "missing required input: node IDs"},
		{"everything missing", Options{}, "missing required input: access token, file key, node IDs"},
		{"depth too deep", Options{AccessToken: "t", FileKey: "K", NodeIDs: "1:1", MaxDepth: 9}, "max depth must be between 1 and 8, got 9"},
		{"negative depth", Options{AccessToken: "t", FileKey: "K", NodeIDs: "1:1", MaxDepth: -2}, "max depth must be between 1 and 8, got -2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.BaseURL = srv.URL
			res, err := Run(context.Background(), tt.opts)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, CodeInvalidInput, ErrorCode(err))
			assert.Equal(t, tt.msg, UserMessage(err))
		})
	}

	assert.Zero(t, calls.Load(), "validation failures must not reach the network")
}

func TestRunInvalidFileKey(t *testing.T) {
	_, err := Run(context.Background(), Options{AccessToken: "t", FileKey: "https://example.com/x", NodeIDs: "1:1"})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidInput, ErrorCode(err))
}

func TestRunPrunesNodes(t *testing.T) {
	body := `{
		"name": "Kit",
		"nodes": {
			"1:1": {"document": {
				"id": "1:1", "name": "Screen", "type": "FRAME", "visible": true,
				"children": [
					{"id": "1:2", "type": "GROUP", "children": [
						{"id": "1:3", "type": "TEXT", "characters": "deep"}
					]}
				]
			}},
			"2:2": {}
		}
	}`
	srv, calls := newFigmaServer(t, http.StatusOK, body)
	logger := &recordingLogger{}

	res, err := Run(context.Background(), Options{
		AccessToken: "t",
		FileKey:     "https://www.figma.com/design/KEY123/Kit",
		NodeIDs:     "1-1, 2:2",
		MaxDepth:    1,
		BaseURL:     srv.URL,
		Logger:      logger,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())

	assert.Equal(t, "KEY123", res.FileKey)
	assert.Equal(t, "figma_KEY123_meta.json", res.FileName)
	assert.Equal(t, "Kit", res.DocumentName)
	assert.Equal(t, []string{"1:1", "2:2"}, res.NodeIDs)
	assert.Equal(t, []string{"2:2"}, res.Skipped)
	require.Len(t, res.Nodes, 1)

	want := `{
  "1:1": {
    "children": [
      {
        "children": [],
        "id": "1:2",
        "type": "GROUP"
      }
    ],
    "id": "1:1",
    "name": "Screen",
    "type": "FRAME"
  }
}
`
	assert.Equal(t, want, string(res.JSON))
	assert.Len(t, logger.warns, 1)
	assert.Empty(t, logger.errs)
}

func TestRunDefaultDepth(t *testing.T) {
	srv, _ := newFigmaServer(t, http.StatusOK, `{"nodes": {"1:1": {"document": {"id": "1:1"}}}}`)

	res, err := Run(context.Background(), Options{AccessToken: "t", FileKey: "K", NodeIDs: "1:1", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"1:1\": {\n    \"id\": \"1:1\"\n  }\n}\n", string(res.JSON))
}

func TestRunNoDocumentYieldsEmptyMap(t *testing.T) {
	srv, _ := newFigmaServer(t, http.StatusOK, `{"nodes": {"1:1": {}}}`)

	res, err := Run(context.Background(), Options{AccessToken: "t", FileKey: "K", NodeIDs: "1:1", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Empty(t, res.Nodes)
	assert.Equal(t, "{}\n", string(res.JSON))
}

func TestRunAPIError(t *testing.T) {
	srv, _ := newFigmaServer(t, http.StatusForbidden, `{"status":403,"err":"Invalid token"}`)
	logger := &recordingLogger{}

	res, err := Run(context.Background(), Options{AccessToken: "t", FileKey: "K", NodeIDs: "1:1", BaseURL: srv.URL, Logger: logger})
	require.Error(t, err)
	assert.Nil(t, res)

	assert.Equal(t, CodeAPI, ErrorCode(err))
	assert.Equal(t, http.StatusForbidden, StatusCode(err))
	assert.Equal(t, "Figma API error: HTTP 403", UserMessage(err))

	var apiErr *figma.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Len(t, logger.errs, 1)
}

func TestRunMalformedResponse(t *testing.T) {
	srv, _ := newFigmaServer(t, http.StatusOK, `not json`)

	_, err := Run(context.Background(), Options{AccessToken: "t", FileKey: "K", NodeIDs: "1:1", BaseURL: srv.URL})
	require.Error(t, err)
	assert.Equal(t, CodeInternal, ErrorCode(err))
	assert.Zero(t, StatusCode(err))
	assert.Contains(t, UserMessage(err), "Unexpected error: fetch nodes: failed to parse response")
}

func TestRunUsesProvidedHTTPClient(t *testing.T) {
	srv, calls := newFigmaServer(t, http.StatusOK, `{"nodes": {}}`)

	_, err := Run(context.Background(), Options{AccessToken: " t ", FileKey: "K", NodeIDs: "1:1", BaseURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestErrorCodeForeignErrors(t *testing.T) {
	assert.Equal(t, Code(""), ErrorCode(nil))
	assert.Equal(t, CodeInternal, ErrorCode(errors.New("boom")))
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "Unexpected error: boom", UserMessage(errors.New("boom")))
}

func TestVersionIsSet(t *testing.T) {
	assert.NotEmpty(t, Version)
}
