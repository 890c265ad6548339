// Package lsp serves Et1 documents over the Language Server Protocol:
// pipeline diagnostics, hover with resolved types, go to definition and
// completion of the bindings in scope.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/excyrender/et1/internal/passes"
)

// Server represents the LSP server.
type Server struct {
	mu        sync.RWMutex
	documents map[string]*Document

	out    io.Writer
	outMu  sync.Mutex
	logger *slog.Logger
	opts   []passes.Option

	rootPath string
	shutdown bool
}

// NewServer creates a server that analyzes documents with the given pass
// options.
func NewServer(logger *slog.Logger, opts ...passes.Option) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		documents: make(map[string]*Document),
		logger:    logger,
		opts:      opts,
	}
}

// Document returns the open document at uri.
func (s *Server) Document(uri string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[uri]
	return doc, ok
}

// Run serves framed messages from in until the client sends exit, in is
// exhausted or ctx is done. Responses and notifications go to out.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	s.out = out
	reader := bufio.NewReader(in)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := readMessage(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var msg jsonrpcMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			s.logger.Warn("malformed message", "err", err)
			continue
		}
		if msg.Method == "exit" {
			return nil
		}

		if response := s.handleMessage(&msg); response != nil {
			if err := s.send(response); err != nil {
				return err
			}
		}
	}
}

// readMessage reads one Content-Length framed body.
func readMessage(r *bufio.Reader) ([]byte, error) {
	length := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		if length, err = strconv.Atoi(strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("invalid Content-Length header: %w", err)
		}
	}
	if length < 0 {
		return nil, errors.New("message without Content-Length header")
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}
	return body, nil
}

func (s *Server) send(msg *jsonrpcMessage) error {
	msg.JSONRPC = "2.0"
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()
	if _, err := fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := s.out.Write(data); err != nil {
		return fmt.Errorf("failed to write body: %w", err)
	}
	return nil
}

func (s *Server) notify(method string, params any) {
	data, err := json.Marshal(params)
	if err != nil {
		s.logger.Error("failed to marshal notification", "method", method, "err", err)
		return
	}
	if err := s.send(&jsonrpcMessage{Method: method, Params: data}); err != nil {
		s.logger.Error("failed to send notification", "method", method, "err", err)
	}
}

func reply(msg *jsonrpcMessage, result any) *jsonrpcMessage {
	if result == nil {
		result = json.RawMessage("null")
	}
	return &jsonrpcMessage{ID: msg.ID, Result: result}
}

func replyError(msg *jsonrpcMessage, code int, format string, args ...any) *jsonrpcMessage {
	return &jsonrpcMessage{ID: msg.ID, Error: &jsonrpcError{Code: code, Message: fmt.Sprintf(format, args...)}}
}

// handleMessage processes a JSON-RPC message and returns a response.
// Notifications return nil.
func (s *Server) handleMessage(msg *jsonrpcMessage) *jsonrpcMessage {
	s.logger.Debug("lsp message", "method", msg.Method)
	if s.shutdown && msg.ID != nil {
		return replyError(msg, codeInvalidRequest, "server is shutting down")
	}

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "textDocument/didOpen":
		s.handleDidOpen(msg)
		return nil
	case "textDocument/didChange":
		s.handleDidChange(msg)
		return nil
	case "textDocument/didClose":
		s.handleDidClose(msg)
		return nil
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "shutdown":
		s.shutdown = true
		return reply(msg, nil)
	default:
		if msg.ID != nil {
			return replyError(msg, codeMethodNotFound, "method not found: %s", msg.Method)
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *jsonrpcMessage) *jsonrpcMessage {
	var params InitializeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return replyError(msg, codeInvalidParams, "invalid params: %v", err)
	}

	if params.RootURI != "" {
		s.rootPath = uriToPath(params.RootURI)
	} else {
		s.rootPath = params.RootPath
	}

	s.logger.Info("lsp initialized", "root", s.rootPath)
	return reply(msg, InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:   1, // full document sync
			CompletionProvider: map[string]any{"triggerCharacters": []string{"(", ","}},
			HoverProvider:      true,
			DefinitionProvider: true,
		},
		ServerInfo: ServerInfo{Name: "et1-lsp", Version: "0.1.0"},
	})
}

func (s *Server) handleDidOpen(msg *jsonrpcMessage) {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Warn("invalid didOpen params", "err", err)
		return
	}

	doc := &Document{
		URI:     params.TextDocument.URI,
		Version: params.TextDocument.Version,
	}
	doc.update(params.TextDocument.Text, s.opts)

	s.mu.Lock()
	s.documents[doc.URI] = doc
	s.mu.Unlock()

	s.publishDiagnostics(doc)
}

func (s *Server) handleDidChange(msg *jsonrpcMessage) {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Warn("invalid didChange params", "err", err)
		return
	}
	if len(params.ContentChanges) == 0 {
		return
	}

	s.mu.Lock()
	doc, ok := s.documents[params.TextDocument.URI]
	if ok {
		doc.Version = params.TextDocument.Version
		doc.update(params.ContentChanges[len(params.ContentChanges)-1].Text, s.opts)
	}
	s.mu.Unlock()

	if ok {
		s.publishDiagnostics(doc)
	}
}

func (s *Server) handleDidClose(msg *jsonrpcMessage) {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Warn("invalid didClose params", "err", err)
		return
	}

	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	s.mu.Unlock()

	// Clear what the editor shows for the closed file.
	s.notify("textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []Diagnostic{},
	})
}

func (s *Server) publishDiagnostics(doc *Document) {
	s.mu.RLock()
	params := PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     doc.Version,
		Diagnostics: make([]Diagnostic, 0, len(doc.Errors)),
	}
	for _, d := range doc.Errors {
		params.Diagnostics = append(params.Diagnostics, doc.lspDiagnostic(d))
	}
	s.mu.RUnlock()

	s.notify("textDocument/publishDiagnostics", params)
}

// positionRequest decodes the document and position of a request. The
// caller holds s.mu.
func (s *Server) positionRequest(msg *jsonrpcMessage) (*Document, int, *jsonrpcMessage) {
	var params TextDocumentPositionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil, 0, replyError(msg, codeInvalidParams, "invalid params: %v", err)
	}
	doc, ok := s.documents[params.TextDocument.URI]
	if !ok {
		return nil, 0, nil
	}
	return doc, doc.offset(params.Position), nil
}

// uriToPath converts a file:// URI to a file path.
func uriToPath(uri string) string {
	path, ok := strings.CutPrefix(uri, "file://")
	if !ok {
		return uri
	}
	// Windows drive letters arrive as /C:/...
	if len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return path
}
