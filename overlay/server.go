// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package overlay serves the current track and transport state to browser
// sources over a websocket.
package overlay

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spezifisch/tunebar/display"
	"github.com/spezifisch/tunebar/logger"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 1024
	sendBuffer   = 16
)

var (
	_ display.TrackSurface     = (*Server)(nil)
	_ display.TransportSurface = (*Server)(nil)
)

type client struct {
	id        string
	conn      *websocket.Conn
	send      chan interface{}
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan interface{}, sendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue hands v to the client's writer. It reports false when the client
// is too far behind to take more.
func (c *client) enqueue(v interface{}) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- v:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// Server is a display surface that mirrors everything it is shown to all
// connected websocket clients.
type Server struct {
	logger         logger.LoggerInterface
	upgrader       websocket.Upgrader
	allowedOrigins []string
	ctx            context.Context
	cancel         context.CancelFunc

	httpServer *http.Server
	listener   net.Listener

	mu        sync.RWMutex
	clients   map[string]*client
	track     *display.TrackView
	transport TransportUpdate
}

func NewServer(allowedOrigins []string, logger logger.LoggerInterface) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		logger:         logger,
		allowedOrigins: allowedOrigins,
		ctx:            ctx,
		cancel:         cancel,
		clients:        make(map[string]*client),
		transport: TransportUpdate{
			Type:     "transport",
			Position: display.FormatTime(0),
			Duration: display.FormatTime(0),
		},
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Routes returns the handler serving /ws.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket)
	return mux
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.PrintError("overlay.Serve", err)
		}
	}()
	go s.keepAlive()

	s.logger.Printf("overlay: listening on %s", listener.Addr())
	return nil
}

// Addr is the address the server listens on, once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close drops every client and shuts the HTTP server down.
func (s *Server) Close(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	clients := s.clients
	s.clients = make(map[string]*client)
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) ShowTrack(view display.TrackView) {
	s.mu.Lock()
	s.track = &view
	s.mu.Unlock()
	s.broadcast(changeFor(&view))
}

func (s *Server) SetPlaying(playing bool) {
	s.updateTransport(func(t *TransportUpdate) { t.Playing = playing })
}

func (s *Server) SetProgress(percent float64, current string) {
	s.updateTransport(func(t *TransportUpdate) {
		t.Progress = percent
		t.Position = current
	})
}

func (s *Server) SetDuration(label string) {
	s.updateTransport(func(t *TransportUpdate) { t.Duration = label })
}

func (s *Server) SetVolume(percent float64, muted bool) {
	s.updateTransport(func(t *TransportUpdate) {
		t.Volume = percent
		t.Muted = muted
	})
}

func (s *Server) updateTransport(fn func(t *TransportUpdate)) {
	s.mu.Lock()
	fn(&s.transport)
	update := s.transport
	s.mu.Unlock()
	s.broadcast(update)
}

func (s *Server) broadcast(update interface{}) {
	select {
	case <-s.ctx.Done():
		return
	default:
	}

	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if !c.enqueue(update) {
			s.logger.Printf("overlay: dropping client %s: too slow", c.id)
			s.removeClient(c)
		}
	}
}

// writePump owns all data writes to one client.
func (s *Server) writePump(c *client) {
	for {
		select {
		case <-c.done:
			return
		case v := <-c.send:
			err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err == nil {
				err = c.conn.WriteJSON(v)
			}
			if err != nil {
				s.logger.Printf("overlay: dropping client %s: %v", c.id, err)
				s.removeClient(c)
				return
			}
		}
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.PrintError("overlay.Upgrade", err)
		return
	}

	c := newClient(conn)
	defer s.removeClient(c)

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	// the current state is queued before the client is visible to broadcast
	s.mu.Lock()
	c.send <- changeFor(s.track)
	c.send <- s.transport
	s.clients[c.id] = c
	s.mu.Unlock()

	go s.writePump(c)
	s.logger.Printf("overlay: client %s connected", c.id)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Printf("overlay: read error from %s: %v", c.id, err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c.id]
	delete(s.clients, c.id)
	s.mu.Unlock()

	c.close()
	if ok {
		s.logger.Printf("overlay: client %s disconnected", c.id)
	}
}

// keepAlive pings every client; a client that misses its pongs runs into
// the read deadline and is dropped by its reader.
func (s *Server) keepAlive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
		}

		s.mu.RLock()
		clients := make([]*client, 0, len(s.clients))
		for _, c := range s.clients {
			clients = append(clients, c)
		}
		s.mu.RUnlock()

		deadline := time.Now().Add(writeTimeout)
		for _, c := range clients {
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Printf("overlay: ping to %s failed: %v", c.id, err)
				s.removeClient(c)
			}
		}
	}
}

// checkOrigin allows native clients without an Origin, same-host pages,
// localhost and the configured origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		s.logger.Printf("overlay: invalid origin %q: %v", origin, err)
		return false
	}
	if originURL.Host == r.Host {
		return true
	}
	hostname := originURL.Hostname()
	if hostname == "localhost" || hostname == "127.0.0.1" {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}

	s.logger.Printf("overlay: rejected websocket connection from origin %s", origin)
	return false
}
