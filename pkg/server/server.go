package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server owns the listeners, the registry and the connection-id counter.
// Every accepted socket, regardless of transport, is served by the same
// line-protocol handler.
type Server struct {
	config   ServerConfig
	registry *Registry
	metrics  *Metrics

	listener     net.Listener
	sshListener  net.Listener
	httpListener net.Listener
	httpServer   *http.Server

	nextConnID atomic.Uint64
	startTime  time.Time
	shutdown   chan struct{}
	wg         sync.WaitGroup
}

// NewServer creates a server and seeds the configured rooms.
func NewServer(config ServerConfig) (*Server, error) {
	s := &Server{
		config:    config,
		registry:  NewRegistry(),
		startTime: time.Now(),
		shutdown:  make(chan struct{}),
	}

	for _, seed := range config.SeedRooms {
		desc := seed.Description
		if desc == "" {
			desc = seed.Name
		}
		if _, err := s.registry.GetOrCreateRoom(seed.Name, desc); err != nil {
			return nil, fmt.Errorf("failed to seed room %q: %w", seed.Name, err)
		}
	}

	return s, nil
}

// SetMetrics attaches Prometheus metrics to the server. Without it the
// server runs unmetered (tests do this to avoid duplicate registration).
func (s *Server) SetMetrics(m *Metrics) {
	s.metrics = m
	m.RecordRoomCount(s.registry.RoomCount())
}

// Registry exposes the registry, mainly for tests and the health endpoint.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Addr returns the TCP listener address, available after Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start binds the TCP listener and the optional SSH and HTTP listeners, then
// begins accepting connections. A failure to bind the TCP port is fatal.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.TCPPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	errorLog.Printf("TCP server listening on %s", listener.Addr())

	if err := s.startSSHServer(); err != nil {
		s.listener.Close()
		return fmt.Errorf("failed to start SSH server: %w", err)
	}

	if err := s.startHTTPServer(); err != nil {
		s.closeListeners()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop closes all listeners and waits for the accept loops to finish.
// In-flight connection handlers terminate when their sockets close or their
// clients quit.
func (s *Server) Stop() {
	close(s.shutdown)
	s.closeListeners()
	s.wg.Wait()
}

func (s *Server) closeListeners() {
	if s.listener != nil {
		s.listener.Close()
	}
	if s.sshListener != nil {
		s.sshListener.Close()
	}
	if s.httpServer != nil {
		s.httpServer.Close()
	}
}

// acceptLoop accepts incoming TCP connections. Failure to accept a single
// connection is logged and the loop continues.
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				errorLog.Printf("accept error: %v", err)
				continue
			}
		}

		go s.handleConnection(conn, "tcp")
	}
}

// startHTTPServer starts the optional HTTP listener carrying the WebSocket
// transport (/ws), Prometheus metrics (/metrics) and a health check
// (/health).
func (s *Server) startHTTPServer() error {
	if s.config.HTTPPort <= 0 {
		return nil
	}

	addr := fmt.Sprintf(":%d", s.config.HTTPPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.httpListener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWebSocket)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", s.HealthHandler)

	s.httpServer = &http.Server{Handler: mux}
	errorLog.Printf("HTTP server listening on %s (WebSocket on /ws)", listener.Addr())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errorLog.Printf("HTTP server error: %v", err)
		}
	}()

	return nil
}

// HealthHandler serves health check status as JSON.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":             "healthy",
		"uptime_seconds":     int64(time.Since(s.startTime).Seconds()),
		"active_connections": s.registry.UserCount(),
		"rooms":              s.registry.RoomCount(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		errorLog.Printf("error encoding health JSON: %v", err)
	}
}
