// inlinedoc/backend_jsonrpc.go
// Contains RemoteBackend, a Backend adapter that forwards candidate queries to
// an external symbol engine over JSON-RPC 2.0.
package inlinedoc

import (
	"context"
	"log/slog"
	"net"

	"github.com/sourcegraph/jsonrpc2"
)

// CandidateQuery is the wire request for the "symbols/candidates" method.
type CandidateQuery struct {
	URI      string `json:"uri"`
	Position int    `json:"position"`
}

// RemoteBackend queries an external engine that tracks the same document. Its
// replies always arrive on a later goroutine (the asynchronous dispatch path);
// request failures degrade to backend silence — the tick simply never leaves
// Resolving, which the design accepts.
type RemoteBackend struct {
	conn   *jsonrpc2.Conn
	uri    string
	logger *slog.Logger
}

// DialBackend connects to a backend at a host:port address and returns the
// JSON-RPC connection. The connection only issues outgoing requests; incoming
// ones are answered with "method not found".
func DialBackend(ctx context.Context, addr string, logger *slog.Logger) (*jsonrpc2.Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var d net.Dialer
	netConn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	handler := jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "client does not serve requests"}
	})
	conn := jsonrpc2.NewConn(ctx, jsonrpc2.NewPlainObjectStream(netConn), handler)
	logger.Info("Connected to symbol backend", "addr", addr)
	return conn, nil
}

// NewRemoteBackend wraps an established connection for one document URI.
func NewRemoteBackend(conn *jsonrpc2.Conn, uri string, logger *slog.Logger) *RemoteBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteBackend{
		conn:   conn,
		uri:    uri,
		logger: logger.With("component", "RemoteBackend", "uri", uri),
	}
}

// RequestCandidates implements Backend. The RPC round trip runs on its own
// goroutine so the dispatcher never blocks; onReply fires once on success and
// not at all on failure.
func (b *RemoteBackend) RequestCandidates(ctx context.Context, pos int, onReply func([]Candidate)) {
	go func() {
		var candidates []Candidate
		err := b.conn.Call(ctx, "symbols/candidates", CandidateQuery{URI: b.uri, Position: pos}, &candidates)
		if err != nil {
			b.logger.Warn("Backend candidate request failed", "position", pos, "error", err)
			return
		}
		onReply(candidates)
	}()
}
