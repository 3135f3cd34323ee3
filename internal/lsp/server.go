// Package lsp serves valus programs over the Language Server Protocol:
// parse diagnostics, hover with normal forms, go-to-definition and
// completion.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/valus-lang/valus/internal/ast"
	"github.com/valus-lang/valus/internal/diag"
	"github.com/valus-lang/valus/internal/lexer"
	"github.com/valus-lang/valus/internal/parser"
)

// DefaultHoverFuel bounds the reduction performed to show a normal form on
// hover.
const DefaultHoverFuel = 10000

// Server represents the LSP server.
type Server struct {
	// Documents tracks open files by URI
	Documents map[string]*Document
	mu        sync.RWMutex

	out   io.Writer
	outMu sync.Mutex

	hoverFuel int
	exited    bool
}

// Document represents an open document.
type Document struct {
	URI     string
	Content string
	Version int
	Program *ast.Program
	Errors  []diag.Diagnostic
}

// Option configures a Server.
type Option func(*Server)

// WithHoverFuel sets the step budget used when hovering a definition.
func WithHoverFuel(fuel int) Option {
	return func(s *Server) { s.hoverFuel = fuel }
}

// NewServer creates a new LSP server.
func NewServer(opts ...Option) *Server {
	s := &Server{
		Documents: make(map[string]*Document),
		hoverFuel: DefaultHoverFuel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves requests read from in and writes responses and notifications
// to out until in is exhausted, the client sends exit, or ctx is done.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	s.out = out
	reader := bufio.NewReader(in)

	for !s.exited {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := readMessage(reader)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		var msg jsonrpcMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			log.Printf("Failed to parse JSON-RPC message: %v", err)
			continue
		}

		if response := s.handleMessage(ctx, &msg); response != nil {
			if err := s.send(response); err != nil {
				log.Printf("Failed to send response: %v", err)
			}
		}
	}
	return nil
}

// readMessage reads one Content-Length framed message body.
func readMessage(reader *bufio.Reader) ([]byte, error) {
	contentLength := -1
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && line == "" {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		if line == "\r\n" || line == "\n" {
			break
		}
		var n int
		if _, err := fmt.Sscanf(line, "Content-Length: %d", &n); err == nil {
			contentLength = n
		}
	}
	if contentLength < 0 {
		return nil, errors.New("message without Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(reader, body); err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}
	return body, nil
}

// jsonrpcMessage represents a JSON-RPC 2.0 message.
type jsonrpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
)

func reply(msg *jsonrpcMessage, result any) *jsonrpcMessage {
	return &jsonrpcMessage{JSONRPC: "2.0", ID: msg.ID, Result: result}
}

func replyError(msg *jsonrpcMessage, code int, format string, args ...any) *jsonrpcMessage {
	return &jsonrpcMessage{
		JSONRPC: "2.0",
		ID:      msg.ID,
		Error:   &jsonrpcError{Code: code, Message: fmt.Sprintf(format, args...)},
	}
}

// handleMessage processes a JSON-RPC message and returns a response.
func (s *Server) handleMessage(_ context.Context, msg *jsonrpcMessage) *jsonrpcMessage {
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
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "shutdown":
		return reply(msg, nil)
	case "exit":
		s.exited = true
		return nil
	default:
		if msg.ID != nil {
			return replyError(msg, codeMethodNotFound, "Method not found: %s", msg.Method)
		}
		return nil
	}
}

// send writes a framed JSON-RPC message.
func (s *Server) send(msg *jsonrpcMessage) error {
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

// InitializeParams represents the initialize request parameters.
type InitializeParams struct {
	ProcessID    int            `json:"processId,omitempty"`
	RootURI      string         `json:"rootUri,omitempty"`
	Capabilities map[string]any `json:"capabilities,omitempty"`
}

// InitializeResult represents the initialize response.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   ServerInfo         `json:"serverInfo"`
}

type ServerCapabilities struct {
	TextDocumentSync   int            `json:"textDocumentSync"`
	CompletionProvider map[string]any `json:"completionProvider,omitempty"`
	HoverProvider      bool           `json:"hoverProvider"`
	DefinitionProvider bool           `json:"definitionProvider"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (s *Server) handleInitialize(msg *jsonrpcMessage) *jsonrpcMessage {
	var params InitializeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return replyError(msg, codeInvalidParams, "Invalid params: %v", err)
	}

	return reply(msg, InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: 1, // full document sync
			CompletionProvider: map[string]any{
				"triggerCharacters": []string{"#", "."},
			},
			HoverProvider:      true,
			DefinitionProvider: true,
		},
		ServerInfo: ServerInfo{Name: "valus-lsp", Version: "0.1.0"},
	})
}

// DidOpenTextDocumentParams represents didOpen notification parameters.
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

func (s *Server) handleDidOpen(msg *jsonrpcMessage) {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		log.Printf("Failed to parse didOpen params: %v", err)
		return
	}

	doc := &Document{
		URI:     params.TextDocument.URI,
		Content: params.TextDocument.Text,
		Version: params.TextDocument.Version,
	}
	updateDocument(doc)

	s.mu.Lock()
	s.Documents[doc.URI] = doc
	s.mu.Unlock()

	s.publishDiagnostics(doc)
}

// DidChangeTextDocumentParams represents didChange notification parameters.
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

func (s *Server) handleDidChange(msg *jsonrpcMessage) {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		log.Printf("Failed to parse didChange params: %v", err)
		return
	}
	if len(params.ContentChanges) == 0 {
		return
	}

	// Full sync: the last change carries the whole document.
	doc := &Document{
		URI:     params.TextDocument.URI,
		Content: params.ContentChanges[len(params.ContentChanges)-1].Text,
		Version: params.TextDocument.Version,
	}
	updateDocument(doc)

	s.mu.Lock()
	if _, ok := s.Documents[doc.URI]; !ok {
		s.mu.Unlock()
		return
	}
	s.Documents[doc.URI] = doc
	s.mu.Unlock()

	s.publishDiagnostics(doc)
}

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

func (s *Server) handleDidClose(msg *jsonrpcMessage) {
	var params struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		log.Printf("Failed to parse didClose params: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Documents, params.TextDocument.URI)
}

func (s *Server) document(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Documents[uri]
}

// updateDocument parses a document and records its diagnostics. Definitions
// that parsed cleanly stay usable for hover and navigation.
func updateDocument(doc *Document) {
	p := parser.New(doc.Content, parser.WithFilename(uriToPath(doc.URI)))
	doc.Program = p.ParseProgram()
	doc.Errors = p.Diagnostics()
}

// publishDiagnostics sends diagnostics to the client.
func (s *Server) publishDiagnostics(doc *Document) {
	lspDiagnostics := make([]Diagnostic, 0, len(doc.Errors))
	for _, d := range doc.Errors {
		lspDiagnostics = append(lspDiagnostics, Diagnostic{
			Range:    lexerRange(lexer.Span(d.Span)),
			Severity: diagnosticSeverity(d.Severity),
			Message:  d.Message,
			Code:     string(d.Code),
			Source:   "valus",
		})
	}

	params, err := json.Marshal(PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     doc.Version,
		Diagnostics: lspDiagnostics,
	})
	if err != nil {
		log.Printf("Failed to marshal diagnostics: %v", err)
		return
	}
	if err := s.send(&jsonrpcMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params:  params,
	}); err != nil {
		log.Printf("Failed to publish diagnostics: %v", err)
	}
}

type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Version     int          `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Diagnostic represents an LSP diagnostic.
type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
	Source   string `json:"source,omitempty"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

func diagnosticSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SeverityWarning:
		return 2
	case diag.SeverityNote:
		return 3
	default:
		return 1
	}
}

// uriToPath converts a file:// URI to a file path.
func uriToPath(uri string) string {
	if len(uri) > 7 && uri[:7] == "file://" {
		path := uri[7:]
		// Windows drive letters arrive as /C:/...
		if len(path) > 2 && path[0] == '/' && path[2] == ':' {
			path = path[1:]
		}
		return path
	}
	return uri
}
