// Server exposes a Hub's broadcast stream to TCP subscribers, and pipes
// whatever bytes a subscriber sends back through the engine so a ground
// control tool can originate MAVLink commands. It is grounded on the
// teacher's internal/server.Server: same functional-options construction,
// Ready() channel, and per-connection reader/writer goroutine
// pair, with the teacher's cannelloni handshake and CAN-frame batching
// codec dropped since a raw MAVLink TCP relay needs neither (MAVLink
// frames are already self-delimiting via internal/frame).
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/kstaniek/mavlink-go/internal/engine"
	"github.com/kstaniek/mavlink-go/internal/logging"
	"github.com/kstaniek/mavlink-go/internal/metrics"
)

// Sentinel errors for wrapping so callers can classify via errors.Is.
var (
	ErrListen   = errors.New("relay: listen")
	ErrAccept   = errors.New("relay: accept")
	ErrConnRead = errors.New("relay: conn_read")
)

// Server accepts TCP subscribers and relays Hub broadcasts to them,
// while feeding bytes read from subscribers into an Engine.
type Server struct {
	mu   sync.RWMutex
	addr string

	Hub    *Hub
	Engine *engine.Engine
	// OnInbound is invoked with every message the Engine decodes from a
	// subscriber connection (e.g. to forward a command upstream).
	OnInbound func(*engine.ParsedMessage)

	readDeadline time.Duration
	maxClients   int
	readyOnce    sync.Once
	readyCh      chan struct{}
	listener     net.Listener
	clientsMu    sync.RWMutex
	clients      map[*Client]net.Conn
	wg           sync.WaitGroup
	logger       *slog.Logger
}

const defaultReadDeadline = 60 * time.Second

// Option configures a Server.
type Option func(*Server)

// NewServer builds a Server from opts.
func NewServer(opts ...Option) *Server {
	s := &Server{
		readDeadline: defaultReadDeadline,
		readyCh:      make(chan struct{}),
		clients:      make(map[*Client]net.Conn),
		logger:       logging.L(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.addr == "" {
		s.addr = ":0"
	}
	return s
}

func WithListenAddr(a string) Option          { return func(s *Server) { s.addr = a } }
func WithHub(h *Hub) Option                   { return func(s *Server) { s.Hub = h } }
func WithEngine(e *engine.Engine) Option       { return func(s *Server) { s.Engine = e } }
func WithInboundHandler(fn func(*engine.ParsedMessage)) Option {
	return func(s *Server) { s.OnInbound = fn }
}
func WithMaxClients(n int) Option { return func(s *Server) { s.maxClients = n } }
func WithReadDeadline(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.readDeadline = d
		}
	}
}
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func (s *Server) Addr() string           { s.mu.RLock(); defer s.mu.RUnlock(); return s.addr }
func (s *Server) setAddr(a string)       { s.mu.Lock(); s.addr = a; s.mu.Unlock() }
func (s *Server) Ready() <-chan struct{} { return s.readyCh }

// Serve accepts subscribers until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrListen, err)
	}
	s.setAddr(ln.Addr().String())
	s.listener = ln
	s.readyOnce.Do(func() { close(s.readyCh) })
	s.logger.Info("relay_listen", "addr", s.Addr())
	go func() { <-ctx.Done(); _ = ln.Close() }()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				time.Sleep(200 * time.Millisecond)
				continue
			}
			return fmt.Errorf("%w: %v", ErrAccept, err)
		}
		s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	if s.maxClients > 0 && s.Hub != nil && s.Hub.Count() >= s.maxClients {
		s.logger.Warn("relay_client_reject_max", "max_clients", s.maxClients)
		_ = conn.Close()
		return
	}
	bufSize := 512
	if s.Hub != nil && s.Hub.OutBufSize > 0 {
		bufSize = s.Hub.OutBufSize
	}
	cl := &Client{Out: make(chan []byte, bufSize), Closed: make(chan struct{})}
	if s.Hub != nil {
		s.Hub.Add(cl)
	}
	s.clientsMu.Lock()
	s.clients[cl] = conn
	s.clientsMu.Unlock()
	s.logger.Info("relay_client_connected", "remote", conn.RemoteAddr().String())

	s.wg.Add(2)
	go s.writeLoop(ctx, conn, cl)
	go s.readLoop(ctx, conn, cl)
}

func (s *Server) writeLoop(ctx context.Context, conn net.Conn, cl *Client) {
	defer s.wg.Done()
	defer func() {
		_ = conn.Close()
		if s.Hub != nil {
			s.Hub.Remove(cl)
		}
		s.logger.Info("relay_client_disconnected", "remote", conn.RemoteAddr().String())
	}()
	for {
		select {
		case frame := <-cl.Out:
			if _, err := conn.Write(frame); err != nil {
				return
			}
		case <-cl.Closed:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) readLoop(ctx context.Context, conn net.Conn, cl *Client) {
	defer s.wg.Done()
	buf := make([]byte, 1024)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(s.readDeadline))
		n, err := conn.Read(buf)
		if n > 0 && s.Engine != nil {
			for _, pm := range s.Engine.ParseBytes(buf[:n]) {
				metrics.IncFramesParsed()
				if !pm.Frame.CRCOK {
					metrics.IncCRCFailure()
				}
				if s.OnInbound != nil {
					s.OnInbound(pm)
				}
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				select {
				case <-ctx.Done():
					return
				default:
					continue
				}
			}
			return
		}
	}
}

// Shutdown closes the listener and every subscriber connection, then
// waits for all goroutines to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.listener = nil
	s.mu.Unlock()
	if ln != nil {
		_ = ln.Close()
	}
	s.clientsMu.Lock()
	for cl, conn := range s.clients {
		_ = conn.Close()
		if s.Hub != nil {
			s.Hub.Remove(cl)
		}
		delete(s.clients, cl)
	}
	s.clientsMu.Unlock()
	done := make(chan struct{})
	go func() { s.wg.Wait(); close(done) }()
	select {
	case <-ctx.Done():
		return fmt.Errorf("relay: shutdown timeout: %w", ctx.Err())
	case <-done:
		return nil
	}
}
