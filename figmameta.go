package figmameta

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hellenic-development/figma-meta/pkg/figma"
	"github.com/hellenic-development/figma-meta/pkg/filter"
	"github.com/hellenic-development/figma-meta/pkg/formatter"
)

// Version is the current figma-meta release.
const Version = "0.1.0"

const (
	// MinDepth and MaxDepth bound Options.MaxDepth as accepted by Run.
	MinDepth = 1
	MaxDepth = 8
	// DefaultDepth is used when Options.MaxDepth is zero.
	DefaultDepth = 4
)

// Options configures one extraction.
type Options struct {
	AccessToken string
	FileKey     string       // bare key or figma.com file URL
	NodeIDs     string       // comma-separated, "1:2" or "1-2"
	MaxDepth    int          // 0 = DefaultDepth
	BaseURL     string       // empty = Figma production API
	HTTPClient  *http.Client // nil = client with transport defaults
	Logger      Logger       // nil = no logging
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Result contains the extraction output.
type Result struct {
	FileKey      string
	FileName     string // download name, figma_{key}_meta.json
	DocumentName string // Figma file name
	NodeIDs      []string
	Nodes        filter.NodeMap
	Skipped      []string // requested IDs Figma returned without a document
	JSON         []byte   // Nodes, indented with two spaces
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

func (o *Options) logError(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Errorf(f, a...)
	}
}

// Validate checks the required inputs without touching the network.
func (o *Options) Validate() error {
	var missing []string
	if strings.TrimSpace(o.AccessToken) == "" {
		missing = append(missing, "access token")
	}
	if strings.TrimSpace(o.FileKey) == "" {
		missing = append(missing, "file key")
	}
	if strings.TrimSpace(o.NodeIDs) == "" {
		missing = append(missing, "node IDs")
	}
	if len(missing) > 0 {
		return newError(CodeInvalidInput, "missing required input: %s", strings.Join(missing, ", "))
	}

	if o.MaxDepth != 0 && (o.MaxDepth < MinDepth || o.MaxDepth > MaxDepth) {
		return newError(CodeInvalidInput, "max depth must be between %d and %d, got %d", MinDepth, MaxDepth, o.MaxDepth)
	}

	return nil
}

// Run fetches the requested nodes and prunes each document to the allowlisted
// fields down to MaxDepth. Every failure is returned as an *Error.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultDepth
	}

	fileKey, err := figma.ResolveFileKey(opts.FileKey)
	if err != nil {
		return nil, wrapError(CodeInvalidInput, err, "invalid file key")
	}

	nodeIDs := figma.NormalizeNodeIDs(opts.NodeIDs)
	if len(nodeIDs) == 0 {
		return nil, newError(CodeInvalidInput, "missing required input: node IDs")
	}
	opts.logInfo("File key: %s, %d node(s), max depth %d", fileKey, len(nodeIDs), opts.MaxDepth)

	var clientOpts []figma.Option
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, figma.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, figma.WithHTTPClient(opts.HTTPClient))
	}
	client := figma.NewClient(strings.TrimSpace(opts.AccessToken), clientOpts...)

	opts.logInfo("Fetching nodes from Figma...")
	resp, err := client.GetFileNodes(ctx, fileKey, strings.Join(nodeIDs, ","))
	if err != nil {
		var apiErr *figma.APIError
		if errors.As(err, &apiErr) {
			opts.logError("Figma API returned status %d", apiErr.StatusCode)
			return nil, wrapError(CodeAPI, err, "fetch nodes")
		}
		opts.logError("Fetching nodes failed: %v", err)
		return nil, wrapError(CodeInternal, err, "fetch nodes")
	}
	opts.logInfo("Retrieved %d node(s) from %q", len(resp.Nodes), resp.Name)

	var skipped []string
	for _, id := range nodeIDs {
		if data, ok := resp.Nodes[id]; !ok || data.Document == nil {
			skipped = append(skipped, id)
			opts.logWarn("Node %s was not resolved by Figma, skipping", id)
		}
	}

	nodes := filter.PruneNodes(resp.Nodes, opts.MaxDepth)
	for id, node := range nodes {
		opts.logInfo("Node %s: %d node(s) kept, %d level(s) deep", id, filter.Count(node), filter.Depth(node))
	}

	data, err := formatter.ToJSON(nodes)
	if err != nil {
		return nil, wrapError(CodeInternal, err, "serialize nodes")
	}

	return &Result{
		FileKey:      fileKey,
		FileName:     formatter.FileName(fileKey),
		DocumentName: resp.Name,
		NodeIDs:      nodeIDs,
		Nodes:        nodes,
		Skipped:      skipped,
		JSON:         data,
	}, nil
}
