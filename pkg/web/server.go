package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/computerscienceiscool/file-explorer/pkg/audit"
	"github.com/computerscienceiscool/file-explorer/pkg/editor"
	apperrors "github.com/computerscienceiscool/file-explorer/pkg/errors"
)

// Server exposes editor sessions as JSON-RPC over a websocket
type Server struct {
	sessions *Registry
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  []*wsClient
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

type rpcRequest struct {
	ID     any             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     any       `json:"id"`
	Result any       `json:"result,omitempty"`
	Error  *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *errorData `json:"data,omitempty"`
}

type errorData struct {
	Code string `json:"code"`
}

// sessionStatus is attached to every reply that can change what the editor shows
type sessionStatus struct {
	Dirty      bool         `json:"dirty"`
	State      string       `json:"state"`
	Lines      int          `json:"lines"`
	Chars      int          `json:"chars"`
	Matches    int          `json:"matches"`
	Position   int          `json:"position"`
	FindStatus string       `json:"findStatus"`
	Current    *editor.Span `json:"current,omitempty"`
}

type sessionParams struct {
	Session string `json:"session"`
}

// NewServer creates a server whose sessions load from and save to store
func NewServer(store editor.FileStore, sink audit.Sink) *Server {
	return &Server{
		sessions: NewRegistry(store, sink),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Sessions returns the session registry
func (s *Server) Sessions() *Registry {
	return s.sessions
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ws":
		s.handleWebSocket(w, r)
	case "/healthz":
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "sessions": s.sessions.Len()})
	default:
		http.NotFound(w, r)
	}
}

// ListenAndServe serves on addr until ctx is canceled, then discards all sessions
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Printf("file explorer listening on %s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeClients()
	s.sessions.DiscardAll()
	return err
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		c.conn.Close()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	client := &wsClient{conn: conn}
	s.mu.Lock()
	s.clients = append(s.clients, client)
	s.mu.Unlock()

	// sessions opened on this connection do not outlive it
	owned := make(map[string]bool)

	defer func() {
		conn.Close()
		for id := range owned {
			s.sessions.Discard(id)
		}
		s.mu.Lock()
		for i, c := range s.clients {
			if c == client {
				s.clients = append(s.clients[:i], s.clients[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}()

	ctx := r.Context()
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req rpcRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.write(client, rpcResponse{Error: &rpcError{Code: -32700, Message: "parse error"}})
			continue
		}

		resp := s.handleRPC(ctx, req)
		switch req.Method {
		case "open":
			if res, ok := resp.Result.(openResult); ok {
				owned[res.Session] = true
			}
		case "close":
			if resp.Error == nil {
				var p sessionParams
				_ = json.Unmarshal(req.Params, &p)
				delete(owned, p.Session)
			}
		}
		s.write(client, resp)
	}
}

func (s *Server) write(client *wsClient, resp rpcResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Printf("encode response: %v", err)
		return
	}
	client.mu.Lock()
	defer client.mu.Unlock()
	_ = client.conn.WriteMessage(websocket.TextMessage, data)
}

type openResult struct {
	Session  string        `json:"session"`
	Path     string        `json:"path"`
	Filename string        `json:"filename"`
	Text     string        `json:"text"`
	Status   sessionStatus `json:"status"`
}

func (s *Server) handleRPC(ctx context.Context, req rpcRequest) rpcResponse {
	switch req.Method {
	case "open":
		return s.rpcOpen(ctx, req)
	case "close":
		return s.rpcClose(req)
	case "edit":
		var p struct {
			sessionParams
			Start int    `json:"start"`
			End   int    `json:"end"`
			Text  string `json:"text"`
		}
		return s.withSession(req, &p, &p.sessionParams, func(sess *editor.Session) (any, error) {
			return statusResult(sess), sess.Edit(p.Start, p.End, p.Text)
		})
	case "setText":
		var p struct {
			sessionParams
			Text string `json:"text"`
		}
		return s.withSession(req, &p, &p.sessionParams, func(sess *editor.Session) (any, error) {
			return statusResult(sess), sess.SetText(p.Text)
		})
	case "find":
		var p struct {
			sessionParams
			Pattern       string `json:"pattern"`
			CaseSensitive bool   `json:"caseSensitive"`
			WholeWord     bool   `json:"wholeWord"`
		}
		return s.withSession(req, &p, &p.sessionParams, func(sess *editor.Session) (any, error) {
			q := editor.Query{Pattern: p.Pattern, CaseSensitive: p.CaseSensitive, WholeWord: p.WholeWord}
			if err := sess.Find(q); err != nil {
				return nil, err
			}
			return map[string]any{"spans": spansOrEmpty(sess.Matches()), "status": statusOf(sess)}, nil
		})
	case "next":
		return s.withSession(req, nil, nil, func(sess *editor.Session) (any, error) {
			return statusResult(sess), sess.Next()
		})
	case "previous":
		return s.withSession(req, nil, nil, func(sess *editor.Session) (any, error) {
			return statusResult(sess), sess.Previous()
		})
	case "clearFind":
		return s.withSession(req, nil, nil, func(sess *editor.Session) (any, error) {
			return statusResult(sess), sess.ClearFind()
		})
	case "replace":
		var p struct {
			sessionParams
			Text string `json:"text"`
		}
		return s.withSession(req, &p, &p.sessionParams, func(sess *editor.Session) (any, error) {
			return statusResult(sess), sess.ReplaceCurrent(p.Text)
		})
	case "replaceAll":
		var p struct {
			sessionParams
			Text string `json:"text"`
		}
		return s.withSession(req, &p, &p.sessionParams, func(sess *editor.Session) (any, error) {
			count, err := sess.ReplaceAll(p.Text)
			if err != nil {
				return nil, err
			}
			return map[string]any{"count": count, "status": statusOf(sess)}, nil
		})
	case "save":
		return s.withSession(req, nil, nil, func(sess *editor.Session) (any, error) {
			return statusResult(sess), sess.Save(ctx)
		})
	case "saveAs":
		var p struct {
			sessionParams
			Name string `json:"name"`
		}
		return s.withSession(req, &p, &p.sessionParams, func(sess *editor.Session) (any, error) {
			newPath, err := sess.SaveAs(ctx, p.Name)
			if err != nil {
				return nil, err
			}
			return map[string]any{"path": newPath, "status": statusOf(sess)}, nil
		})
	case "status":
		return s.withSession(req, nil, nil, func(sess *editor.Session) (any, error) {
			text, err := sess.Text()
			if err != nil {
				return nil, err
			}
			return map[string]any{"text": text, "status": statusOf(sess)}, nil
		})
	default:
		return rpcResponse{
			ID:    req.ID,
			Error: &rpcError{Code: -32601, Message: fmt.Sprintf("unknown method: %s", req.Method)},
		}
	}
}

func (s *Server) rpcOpen(ctx context.Context, req rpcRequest) rpcResponse {
	var p struct {
		Path string `json:"path"`
	}
	if err := decodeParams(req, &p); err != nil {
		return paramError(req, err)
	}
	sess, err := s.sessions.Open(ctx, p.Path)
	if err != nil {
		return domainError(req, err)
	}
	text, _ := sess.Text()
	return rpcResponse{ID: req.ID, Result: openResult{
		Session:  sess.ID(),
		Path:     sess.Path(),
		Filename: sess.Filename(),
		Text:     text,
		Status:   statusOf(sess),
	}}
}

func (s *Server) rpcClose(req rpcRequest) rpcResponse {
	var p struct {
		sessionParams
		Confirm bool `json:"confirm"`
	}
	if err := decodeParams(req, &p); err != nil {
		return paramError(req, err)
	}
	if p.Session == "" {
		return paramError(req, fmt.Errorf("missing session"))
	}
	if err := s.sessions.Close(p.Session, p.Confirm); err != nil {
		return domainError(req, err)
	}
	return rpcResponse{ID: req.ID, Result: map[string]any{"closed": true}}
}

// withSession decodes params into p (when non-nil), locks the named session and runs fn.
// The result is built after fn's error is known so a failed call still reports the error.
func (s *Server) withSession(req rpcRequest, p any, sp *sessionParams, fn func(*editor.Session) (any, error)) rpcResponse {
	if p == nil {
		sp = &sessionParams{}
		p = sp
	}
	if err := decodeParams(req, p); err != nil {
		return paramError(req, err)
	}
	if sp.Session == "" {
		return paramError(req, fmt.Errorf("missing session"))
	}

	var result any
	err := s.sessions.With(sp.Session, func(sess *editor.Session) error {
		res, err := fn(sess)
		if err != nil {
			return err
		}
		if lazy, ok := res.(lazyStatus); ok {
			res = lazy.resolve()
		}
		result = res
		return nil
	})
	if err != nil {
		return domainError(req, err)
	}
	return rpcResponse{ID: req.ID, Result: result}
}

// lazyStatus defers reading the session status until the operation has run
type lazyStatus struct {
	sess *editor.Session
}

func (l lazyStatus) resolve() any {
	return map[string]any{"status": statusOf(l.sess)}
}

func statusResult(sess *editor.Session) any {
	return lazyStatus{sess: sess}
}

func statusOf(sess *editor.Session) sessionStatus {
	stats := sess.Stats()
	st := sessionStatus{
		Dirty:      sess.Dirty(),
		State:      sess.State().String(),
		Lines:      stats.Lines,
		Chars:      stats.Chars,
		Matches:    len(sess.Matches()),
		Position:   sess.Position(),
		FindStatus: sess.FindStatus(),
	}
	if span, ok := sess.Current(); ok {
		st.Current = &span
	}
	return st
}

func spansOrEmpty(spans []editor.Span) []editor.Span {
	if spans == nil {
		return []editor.Span{}
	}
	return spans
}

func decodeParams(req rpcRequest, p any) error {
	if len(req.Params) == 0 {
		return nil
	}
	return json.Unmarshal(req.Params, p)
}

func paramError(req rpcRequest, err error) rpcResponse {
	return rpcResponse{ID: req.ID, Error: &rpcError{Code: -32602, Message: err.Error()}}
}

func domainError(req rpcRequest, err error) rpcResponse {
	return rpcResponse{ID: req.ID, Error: &rpcError{
		Code:    -32000,
		Message: apperrors.Message(err),
		Data:    &errorData{Code: apperrors.Code(err)},
	}}
}
