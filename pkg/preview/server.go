// Package preview serves generated meshes to an external renderer over a
// websocket. A client sends a recipe or a single shape request and gets
// back the renderer buffers of every generated part.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/chazu/rhinophore/pkg/kernel"
	"github.com/chazu/rhinophore/pkg/shape"
	"github.com/gorilla/websocket"
)

// Generator produces renderer buffers from a recipe, a scene file or a
// single request.
type Generator interface {
	GenerateRecipe(source string) (*Frame, error)
	GenerateScene(path string) (*Frame, error)
	GenerateShape(req shape.Request) (*Frame, error)
}

// Sessioner is implemented by generators that keep per-caller state. The
// server asks for a fresh session for every connection and every Watch, so
// one caller's requests never cancel another's.
type Sessioner interface {
	Session() Generator
}

// Frame is one generation result.
type Frame struct {
	Meshes   []*kernel.Buffers `json:"meshes"`
	Warnings []string          `json:"warnings,omitempty"`
}

// Message types exchanged over the websocket.
const (
	TypeRecipe = "recipe"
	TypeShape  = "shape"
	TypeSchema = "schema"
	TypeFrame  = "frame"
	TypeError  = "error"
)

// Request is a client message.
type Request struct {
	Type    string         `json:"type"`
	Source  string         `json:"source,omitempty"`
	Kind    string         `json:"kind,omitempty"`
	Seed    *int64         `json:"seed,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

// Response is a server message.
type Response struct {
	Type   string             `json:"type"`
	Frame  *Frame             `json:"frame,omitempty"`
	Schema []shape.OptionSpec `json:"schema,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// Server hands frames to websocket clients.
type Server struct {
	gen      Generator
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	last    *Response // latest broadcast, replayed to new clients
}

// client serializes writes to one connection; the read loop and
// Broadcast both write.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) send(resp Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(resp)
}

// NewServer returns a server backed by gen. A nil logger discards logs.
func NewServer(gen Generator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		gen:     gen,
		log:     logger,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			// The renderer is served from elsewhere during development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler routes /ws to the websocket endpoint and /schema to the option
// schema as JSON.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/schema", s.handleSchema)
	return mux
}

// session returns the generator one caller should use.
func (s *Server) session() Generator {
	if ss, ok := s.gen.(Sessioner); ok {
		return ss.Session()
	}
	return s.gen
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Broadcast sends resp to every connected client and keeps it for clients
// that connect later.
func (s *Server) Broadcast(resp Response) {
	s.mu.Lock()
	s.last = &resp
	targets := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		if err := c.send(resp); err != nil {
			s.log.Warn("broadcast", "remote", c.conn.RemoteAddr(), "err", err)
		}
	}
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("preview server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(shape.Schema()); err != nil {
		s.log.Error("write schema", "err", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	gen := s.session()
	s.mu.Lock()
	s.clients[c] = struct{}{}
	last := s.last
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
	}()
	s.log.Info("client connected", "remote", r.RemoteAddr)

	if last != nil {
		if err := c.send(*last); err != nil {
			s.log.Warn("websocket write", "remote", r.RemoteAddr, "err", err)
			return
		}
	}

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("websocket read", "remote", r.RemoteAddr, "err", err)
			}
			return
		}
		resp := s.respond(gen, req)
		if err := c.send(resp); err != nil {
			s.log.Warn("websocket write", "remote", r.RemoteAddr, "err", err)
			return
		}
	}
}

// respond handles one client message. Scene files are only read through
// Watch; a client cannot name a path on the server.
func (s *Server) respond(gen Generator, req Request) Response {
	start := time.Now()
	var (
		frame *Frame
		err   error
	)
	switch req.Type {
	case TypeSchema:
		return Response{Type: TypeSchema, Schema: shape.Schema()}
	case TypeRecipe:
		frame, err = gen.GenerateRecipe(req.Source)
	case TypeShape:
		var sr shape.Request
		sr, err = req.shapeRequest()
		if err == nil {
			frame, err = gen.GenerateShape(sr)
		}
	default:
		err = fmt.Errorf("unknown message type %q", req.Type)
	}
	if err != nil {
		s.log.Warn("generate", "type", req.Type, "err", err)
		return Response{Type: TypeError, Error: err.Error()}
	}
	s.log.Debug("generate", "type", req.Type, "meshes", len(frame.Meshes), "duration", time.Since(start))
	return Response{Type: TypeFrame, Frame: frame}
}

func (req Request) shapeRequest() (shape.Request, error) {
	kind, err := shape.ParseKind(req.Kind)
	if err != nil {
		return shape.Request{}, err
	}
	sr := shape.NewRequest(kind)
	if req.Seed != nil {
		sr.Seed = *req.Seed
	}
	if err := sr.Options.SetAll(req.Options); err != nil {
		return shape.Request{}, err
	}
	return sr, nil
}
