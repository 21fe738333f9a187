// inlinedoc/rpc_server.go
// Implements the editor-facing JSON-RPC server: document lifecycle, inline
// documentation requests, cache reset, and outgoing refresh notifications.
package inlinedoc

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
)

// ============================================================================
// Wire Types
// ============================================================================

// OpenParams opens a document with its full text.
type OpenParams struct {
	URI  string `json:"uri"`
	Text string `json:"text"`
}

// ChangeParams applies one range edit. End == -1 replaces the whole document
// with Text.
type ChangeParams struct {
	URI   string `json:"uri"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// DocParams addresses a document without a position (close, reset).
type DocParams struct {
	URI string `json:"uri"`
}

// InlineParams asks for the documentation line at a byte offset.
type InlineParams struct {
	URI      string `json:"uri"`
	Position int    `json:"position"`
}

// InlineResult carries the display string; empty means nothing to show (yet).
type InlineResult struct {
	Contents string `json:"contents"`
}

// RefreshParams is the payload of the outgoing "doc/refresh" notification,
// telling the editor to re-request doc/inline for its current cursor.
type RefreshParams struct {
	URI string `json:"uri"`
}

// ============================================================================
// Server
// ============================================================================

// BackendFactory builds the Backend for a newly opened document. A nil
// factory (or a nil return) selects the built-in declaration scanner.
type BackendFactory func(uri string, doc *Document) Backend

// Server speaks JSON-RPC 2.0 over a byte stream (normally stdio) and owns one
// Engine per open document.
type Server struct {
	conn       *jsonrpc2.Conn
	logger     *slog.Logger
	config     Config
	newBackend BackendFactory
	serverName string
	version    string

	enginesMu sync.RWMutex
	engines   map[string]*Engine
}

// NewServer creates a server with the given configuration and backend factory.
func NewServer(cfg Config, newBackend BackendFactory, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		logger:     logger,
		config:     cfg,
		newBackend: newBackend,
		serverName: "inlinedoc",
		version:    version,
		engines:    make(map[string]*Engine),
	}
	publishExpvarMetrics(s)
	return s
}

// Run starts the server loop on r/w and blocks until the connection closes.
func (s *Server) Run(r io.Reader, w io.Writer) {
	s.logger.Info("Starting RPC server run loop", "version", s.version)

	stream := &stdrwc{r: r, w: w}
	handler := jsonrpc2.HandlerWithError(s.handle)
	s.conn = jsonrpc2.NewConn(context.Background(), jsonrpc2.NewPlainObjectStream(stream), handler)
	s.logger.Info("JSON-RPC connection established")

	<-s.conn.DisconnectNotify()
	s.closeAllEngines()
	s.logger.Info("JSON-RPC connection closed")
}

// stdrwc adapts separate reader/writer halves (stdin/stdout) to an
// io.ReadWriteCloser without closing them.
type stdrwc struct {
	r io.Reader
	w io.Writer
}

func (s *stdrwc) Read(p []byte) (int, error)  { return s.r.Read(p) }
func (s *stdrwc) Write(p []byte) (int, error) { return s.w.Write(p) }
func (s *stdrwc) Close() error                { return nil }

// handle routes incoming requests and notifications.
func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result any, err error) {
	methodLogger := s.logger.With("method", req.Method, "is_notification", req.Notif)
	methodLogger.Debug("Received request/notification")

	defer func() {
		if r := recover(); r != nil {
			methodLogger.Error("Panic recovered in handler", "panic_value", r, "stack", string(debug.Stack()))
			err = &jsonrpc2.Error{
				Code:    jsonrpc2.CodeInternalError,
				Message: fmt.Sprintf("internal error: %v", r),
			}
		}
	}()

	switch req.Method {
	case "doc/open":
		var params OpenParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.handleOpen(params, methodLogger)
	case "doc/change":
		var params ChangeParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.handleChange(params, methodLogger)
	case "doc/close":
		var params DocParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.handleClose(params, methodLogger)
	case "doc/inline":
		var params InlineParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.handleInline(ctx, params, methodLogger)
	case "doc/reset":
		var params DocParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.handleReset(params, methodLogger)
	default:
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: fmt.Sprintf("method not supported: %s", req.Method)}
	}
}

func unmarshalParams(req *jsonrpc2.Request, v any) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}

// ============================================================================
// Method Handlers
// ============================================================================

func (s *Server) handleOpen(params OpenParams, logger *slog.Logger) (any, error) {
	if params.URI == "" {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "uri must not be empty"}
	}
	logger.Info("Opening document", "uri", params.URI, "size", len(params.Text))

	uri := params.URI
	refresh := func() { s.notifyRefresh(uri) }

	engine, err := NewEngine(params.Text, nil, refresh, s.config, s.logger.With("uri", uri))
	if err != nil {
		return nil, fmt.Errorf("creating engine for %s: %w", uri, err)
	}
	if s.newBackend != nil {
		if backend := s.newBackend(uri, engine.Document()); backend != nil {
			engine.backend = backend
		}
	}

	s.enginesMu.Lock()
	if prev, exists := s.engines[uri]; exists {
		logger.Warn("Document reopened, discarding previous engine", "uri", uri)
		prev.Close()
	}
	s.engines[uri] = engine
	s.enginesMu.Unlock()
	return nil, nil
}

func (s *Server) handleChange(params ChangeParams, logger *slog.Logger) (any, error) {
	engine, err := s.engine(params.URI)
	if err != nil {
		return nil, err
	}
	if params.End == -1 {
		logger.Debug("Replacing document text", "uri", params.URI, "size", len(params.Text))
		engine.SetText(params.Text)
		return nil, nil
	}
	logger.Debug("Applying edit", "uri", params.URI, "start", params.Start, "end", params.End, "replacement_len", len(params.Text))
	if err := engine.ApplyEdit(params.Start, params.End, params.Text); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleClose(params DocParams, logger *slog.Logger) (any, error) {
	logger.Info("Closing document", "uri", params.URI)
	s.enginesMu.Lock()
	engine, ok := s.engines[params.URI]
	delete(s.engines, params.URI)
	s.enginesMu.Unlock()
	if ok {
		if err := engine.Close(); err != nil {
			logger.Warn("Error closing engine", "uri", params.URI, "error", err)
		}
	}
	return nil, nil
}

func (s *Server) handleInline(ctx context.Context, params InlineParams, logger *slog.Logger) (any, error) {
	engine, err := s.engine(params.URI)
	if err != nil {
		return nil, err
	}
	contents, docErr := engine.DocumentAt(ctx, params.Position)
	if docErr != nil {
		logger.Warn("doc/inline failed", "uri", params.URI, "position", params.Position, "error", docErr)
		return nil, docErr
	}
	return InlineResult{Contents: contents}, nil
}

func (s *Server) handleReset(params DocParams, logger *slog.Logger) (any, error) {
	engine, err := s.engine(params.URI)
	if err != nil {
		return nil, err
	}
	logger.Info("Resetting caches", "uri", params.URI)
	engine.ResetCache()
	return nil, nil
}

// ============================================================================
// Helpers
// ============================================================================

func (s *Server) engine(uri string) (*Engine, error) {
	s.enginesMu.RLock()
	defer s.enginesMu.RUnlock()
	engine, ok := s.engines[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotOpen, uri)
	}
	return engine, nil
}

// notifyRefresh asks the editor to re-request the documentation line. This is
// the refresh-request interface: fired only from asynchronous reply handlers.
func (s *Server) notifyRefresh(uri string) {
	conn := s.conn
	if conn == nil {
		return
	}
	if err := conn.Notify(context.Background(), "doc/refresh", RefreshParams{URI: uri}); err != nil {
		s.logger.Warn("Failed to send doc/refresh notification", "uri", uri, "error", err)
	}
}

func (s *Server) closeAllEngines() {
	s.enginesMu.Lock()
	defer s.enginesMu.Unlock()
	for uri, engine := range s.engines {
		if err := engine.Close(); err != nil {
			s.logger.Warn("Error closing engine on shutdown", "uri", uri, "error", err)
		}
	}
	s.engines = make(map[string]*Engine)
}

// ============================================================================
// Metrics
// ============================================================================

var expvarOnce sync.Once

// publishExpvarMetrics exposes open-document and memo-cache counters under
// /debug/vars. Published once per process, for the first server constructed.
func publishExpvarMetrics(s *Server) {
	expvarOnce.Do(func() {
		expvar.Publish("inlinedoc_open_documents", expvar.Func(func() any {
			s.enginesMu.RLock()
			defer s.enginesMu.RUnlock()
			return len(s.engines)
		}))
		expvar.Publish("inlinedoc_memo_hits", expvar.Func(func() any {
			s.enginesMu.RLock()
			defer s.enginesMu.RUnlock()
			var hits uint64
			for _, engine := range s.engines {
				if m := engine.CacheMetrics(); m != nil {
					hits += m.Hits()
				}
			}
			return hits
		}))
	})
}
