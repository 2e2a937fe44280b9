package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

const source = "formula"

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found",
	}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params",
	}
)

type server struct {
	env    lang.Environment
	logger log.Logger

	mu      sync.Mutex
	content map[lsp.DocumentURI]string
}

func newServer(env lang.Environment, logger log.Logger) *server {
	if env == nil {
		env = lang.NewMap(nil)
	}

	return &server{
		env:     env,
		logger:  logger,
		content: make(map[lsp.DocumentURI]string),
	}
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func (s *server) handler() jsonrpc2.Handler {
	return s.routingHandler(map[string]method{
		"initialize":              s.initialize,
		"shutdown":                noop,
		"exit":                    exit,
		"textDocument/didOpen":    s.didOpen,
		"textDocument/didChange":  s.didChange,
		"textDocument/didClose":   s.didClose,
		"textDocument/hover":      s.hover,
		"textDocument/completion": s.completion,

		"initialized":                     noop,
		"$/cancelRequest":                 noop,
		"workspace/didChangeWatchedFiles": noop,
	})
}

func noop(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error) {
	return nil, nil
}

func exit(_ context.Context, conn jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	if err := conn.Close(); err != nil && !errors.Is(err, jsonrpc2.ErrClosed) {
		return nil, err
	}

	return nil, nil
}

func (s *server) routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(
		ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request,
	) (any, error) {
		s.logger.TraceContext(ctx, "request", slog.String("method", req.Method))

		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}

		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}

		res, err := fn(ctx, conn, params)
		if err != nil {
			s.logger.DebugContext(ctx, "request failed",
				slog.String("method", req.Method),
				slog.Any("error", err))
		}

		return res, err
	})
}

func (s *server) initialize(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			HoverProvider:      true,
			CompletionProvider: &lsp.CompletionOptions{TriggerCharacters: []string{"."}},
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, raw json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(raw, &params) != nil {
		return nil, errInvalidParams
	}

	uri, content := params.TextDocument.URI, params.TextDocument.Text
	s.store(uri, content)

	return nil, s.publish(ctx, conn, uri, s.diagnose(ctx, content))
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, raw json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(raw, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}

	// Only full synchronization is advertised, so the last change holds the
	// whole document.
	uri := params.TextDocument.URI
	content := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.store(uri, content)

	return nil, s.publish(ctx, conn, uri, s.diagnose(ctx, content))
}

func (s *server) didClose(ctx context.Context, conn jsonrpc2.JSONRPC2, raw json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(raw, &params) != nil {
		return nil, errInvalidParams
	}

	s.mu.Lock()
	delete(s.content, params.TextDocument.URI)
	s.mu.Unlock()

	return nil, s.publish(ctx, conn, params.TextDocument.URI, []lsp.Diagnostic{})
}

func (s *server) hover(ctx context.Context, _ jsonrpc2.JSONRPC2, raw json.RawMessage) (any, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(raw, &params) != nil {
		return nil, errInvalidParams
	}

	line, ok := s.line(params.TextDocument.URI, params.Position.Line)
	if !ok || strings.TrimSpace(line) == "" {
		return nil, nil
	}

	e, err := lang.ParseCached(ctx, line)
	if err != nil {
		return lsp.Hover{Contents: []lsp.MarkedString{
			{Language: "text", Value: err.Error()},
		}}, nil
	}

	contents := []lsp.MarkedString{{Language: source, Value: e.String()}}

	if free := lang.FreeVariables(e); len(free) > 0 {
		contents = append(contents, lsp.RawMarkedString("free: "+strings.Join(free, ", ")))
	}

	col := byteIndex(line, params.Position.Character)
	start, end := identifierAt(line, col)

	if name := line[start:end]; name != "" {
		if v, bound := s.env.Lookup(name); bound {
			contents = append(contents, lsp.RawMarkedString(name+" = "+describe(v)))
		}
	}

	return lsp.Hover{Contents: contents}, nil
}

func (s *server) completion(_ context.Context, _ jsonrpc2.JSONRPC2, raw json.RawMessage) (any, error) {
	var params lsp.CompletionParams
	if json.Unmarshal(raw, &params) != nil {
		return nil, errInvalidParams
	}

	line, _ := s.line(params.TextDocument.URI, params.Position.Line)
	col := byteIndex(line, params.Position.Character)
	start, _ := identifierAt(line, col)

	replace := lsp.Range{
		Start: lsp.Position{Line: params.Position.Line, Character: utf16Len(line[:start])},
		End:   lsp.Position{Line: params.Position.Line, Character: utf16Len(line[:col])},
	}

	candidates := complete(s.env, line[start:col])
	items := make([]lsp.CompletionItem, len(candidates))

	for i, c := range candidates {
		items[i] = lsp.CompletionItem{
			Label:    c.name,
			Kind:     c.kind,
			Detail:   c.detail,
			TextEdit: &lsp.TextEdit{Range: replace, NewText: c.name},
		}
	}

	return &lsp.CompletionList{Items: items}, nil
}

func (s *server) store(uri lsp.DocumentURI, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.content[uri] = content
}

func (s *server) line(uri lsp.DocumentURI, n int) (string, bool) {
	s.mu.Lock()
	content, ok := s.content[uri]
	s.mu.Unlock()

	if !ok {
		return "", false
	}

	lines := splitLines(content)
	if n < 0 || n >= len(lines) {
		return "", false
	}

	return lines[n], true
}

func (s *server) publish(
	ctx context.Context,
	conn jsonrpc2.JSONRPC2,
	uri lsp.DocumentURI,
	diags []lsp.Diagnostic,
) error {
	s.logger.DebugContext(ctx, "publish diagnostics",
		slog.String("uri", string(uri)),
		slog.Int("count", len(diags)))

	return conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: diags})
}

// diagnose parses every non-blank line of content as a formula.
func (s *server) diagnose(ctx context.Context, content string) []lsp.Diagnostic {
	diags := []lsp.Diagnostic{}

	for n, line := range splitLines(content) {
		if strings.TrimSpace(line) == "" {
			continue
		}

		e, err := lang.ParseCached(ctx, line)
		if err != nil {
			diags = append(diags, syntaxDiagnostic(n, line, err))

			continue
		}

		for _, name := range lang.FreeVariables(e) {
			if s.env.Contains(name) {
				continue
			}

			diags = append(diags, lsp.Diagnostic{
				Range:    nameRange(n, line, name),
				Severity: lsp.Warning,
				Source:   source,
				Message:  "undefined variable " + name,
			})
		}
	}

	return diags
}

func syntaxDiagnostic(n int, line string, err error) lsp.Diagnostic {
	d := lsp.Diagnostic{
		Range:    lsp.Range{Start: lsp.Position{Line: n}, End: lsp.Position{Line: n, Character: utf16Len(line)}},
		Severity: lsp.Error,
		Source:   source,
		Message:  err.Error(),
	}

	var se *lang.SyntaxError
	if errors.As(err, &se) {
		col := min(max(se.Column-1, 0), len(line))
		d.Range.Start.Character = utf16Len(line[:col])
	}

	return d
}

func nameRange(n int, line, name string) lsp.Range {
	start := indexIdentifier(line, name)
	if start < 0 {
		return lsp.Range{Start: lsp.Position{Line: n}, End: lsp.Position{Line: n, Character: utf16Len(line)}}
	}

	return lsp.Range{
		Start: lsp.Position{Line: n, Character: utf16Len(line[:start])},
		End:   lsp.Position{Line: n, Character: utf16Len(line[:start+len(name)])},
	}
}

func describe(v lang.Value) string {
	if fn, ok := v.AsFunc(); ok {
		return "function " + fn.Name
	}

	return v.Repr()
}
