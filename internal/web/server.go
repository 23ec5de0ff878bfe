// Package web serves the browser front end: a form collecting the
// credentials, the rendered JSON result and a download link.
package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	figmameta "github.com/hellenic-development/figma-meta"
	"github.com/hellenic-development/figma-meta/internal/config"
)

// ExtractFunc runs one extraction. figmameta.Run in production.
type ExtractFunc func(ctx context.Context, opts figmameta.Options) (*figmameta.Result, error)

// Server hosts the web UI. It keeps no state between requests besides the
// read-only configuration.
type Server struct {
	cfg        *config.Config
	logger     *zap.Logger
	extract    ExtractFunc
	baseURL    string
	httpClient *http.Client
	router     chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithExtractFunc replaces the extraction pipeline.
func WithExtractFunc(fn ExtractFunc) Option {
	return func(s *Server) { s.extract = fn }
}

// WithFigmaBaseURL points extractions at another Figma API base URL.
func WithFigmaBaseURL(base string) Option {
	return func(s *Server) { s.baseURL = base }
}

// WithHTTPClient sets the client used to reach Figma.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Server) { s.httpClient = hc }
}

// New creates a Server. A nil logger discards all output.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		extract: figmameta.Run,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/extract", s.handleExtract)
	r.Post("/api/extract", s.handleAPIExtract)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web UI listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down web UI")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// extractRequest is the form (or JSON body) submitted by the user.
type extractRequest struct {
	Token    string `json:"token"`
	FileKey  string `json:"file_key"`
	NodeIDs  string `json:"node_ids"`
	MaxDepth int    `json:"max_depth"`
}

// options applies the configured fallbacks: an empty field takes the value
// loaded at startup, and a zero depth takes the configured depth.
func (s *Server) options(r *http.Request, req extractRequest) figmameta.Options {
	opts := figmameta.Options{
		AccessToken: strings.TrimSpace(req.Token),
		FileKey:     strings.TrimSpace(req.FileKey),
		NodeIDs:     strings.TrimSpace(req.NodeIDs),
		MaxDepth:    req.MaxDepth,
		BaseURL:     s.baseURL,
		HTTPClient:  s.httpClient,
		Logger:      s.logger.Sugar().With("request_id", middleware.GetReqID(r.Context())),
	}
	if opts.AccessToken == "" {
		opts.AccessToken = s.cfg.Token
	}
	if opts.FileKey == "" {
		opts.FileKey = s.cfg.FileKey
	}
	if opts.NodeIDs == "" {
		opts.NodeIDs = s.cfg.NodeIDs
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = s.cfg.MaxDepth
	}
	return opts
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, s.newPage(extractRequest{}))
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		page := s.newPage(extractRequest{})
		page.Error = "Could not read the form: " + err.Error()
		s.render(w, http.StatusBadRequest, page)
		return
	}

	req := extractRequest{
		Token:   r.PostForm.Get("token"),
		FileKey: r.PostForm.Get("file_key"),
		NodeIDs: r.PostForm.Get("node_ids"),
	}
	if d, err := strconv.Atoi(r.PostForm.Get("max_depth")); err == nil {
		req.MaxDepth = d
	}

	page := s.newPage(req)

	res, err := s.extract(r.Context(), s.options(r, req))
	if err != nil {
		s.logger.Warn("extraction failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("code", string(figmameta.ErrorCode(err))),
			zap.Error(err))
		page.Error = figmameta.UserMessage(err)
		s.render(w, statusFor(err), page)
		return
	}

	page.Result = &resultView{
		FileName:     res.FileName,
		DocumentName: res.DocumentName,
		NodeCount:    len(res.Nodes),
		Skipped:      res.Skipped,
		JSON:         string(res.JSON),
		DownloadHref: template.URL("data:application/json;base64," + base64.StdEncoding.EncodeToString(res.JSON)),
	}
	s.render(w, http.StatusOK, page)
}

func (s *Server) handleAPIExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, figmameta.CodeInvalidInput, "invalid request body: "+err.Error(), 0)
		return
	}

	res, err := s.extract(r.Context(), s.options(r, req))
	if err != nil {
		s.logger.Warn("extraction failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("code", string(figmameta.ErrorCode(err))),
			zap.Error(err))
		writeJSONError(w, statusFor(err), figmameta.ErrorCode(err), figmameta.UserMessage(err), figmameta.StatusCode(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(res.JSON)
}

// statusFor maps an extraction failure to the HTTP status shown to the browser.
func statusFor(err error) int {
	switch figmameta.ErrorCode(err) {
	case figmameta.CodeInvalidInput:
		return http.StatusBadRequest
	case figmameta.CodeAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type apiError struct {
	Error       string `json:"error"`
	Code        string `json:"code"`
	FigmaStatus int    `json:"figma_status,omitempty"`
}

func writeJSONError(w http.ResponseWriter, status int, code figmameta.Code, msg string, figmaStatus int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiError{Error: msg, Code: string(code), FigmaStatus: figmaStatus})
}

// requestLogger logs one line per request through zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Info("request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
