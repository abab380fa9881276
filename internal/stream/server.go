// Package stream serves the live capture feed to websocket clients as a
// sequence of JPEG frames.
package stream

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/screenrec/screenrec/internal/capture"
	"github.com/screenrec/screenrec/internal/encoder"
	"github.com/screenrec/screenrec/internal/exchange"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server broadcasts JPEG snapshots of the latest captured frame to every
// connected websocket client. It only peeks at the exchange, so it never
// steals frames from the preview consumer, and a slow client only misses
// frames, it never backs up capture.
type Server struct {
	addr     string
	ex       *exchange.Exchange
	interval time.Duration
	quality  int

	mu       sync.Mutex
	clients  map[*websocket.Conn]chan []byte
	listener net.Listener
	httpSrv  *http.Server
	done     chan struct{}
	started  bool
}

// NewServer creates a stream server broadcasting at the given frame rate
// and JPEG quality.
func NewServer(addr string, ex *exchange.Exchange, fps, quality int) *Server {
	if fps <= 0 {
		fps = 15
	}
	return &Server{
		addr:     addr,
		ex:       ex,
		interval: time.Second / time.Duration(fps),
		quality:  quality,
		clients:  make(map[*websocket.Conn]chan []byte),
		done:     make(chan struct{}),
	}
}

// Start binds the listen address and spawns the broadcast loop. Bind
// failures surface here, not asynchronously.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("stream server already started")
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("stream listen %s: %w", s.addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.listener = ln
	s.httpSrv = &http.Server{Handler: mux}
	s.started = true

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("stream server: %v", err)
		}
	}()
	go s.broadcastLoop()

	log.Printf("preview stream at ws://%s/ws", ln.Addr())
	return nil
}

// Stop closes the listener and disconnects every client.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.done)
	for conn, ch := range s.clients {
		close(ch)
		conn.Close()
		delete(s.clients, conn)
	}
	srv := s.httpSrv
	s.mu.Unlock()

	_ = srv.Close()
}

// Addr returns the bound listen address, useful when addr was ":0".
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("stream upgrade: %v", err)
		return
	}

	ch := make(chan []byte, 4)
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.clients[conn] = ch
	n := len(s.clients)
	s.mu.Unlock()
	log.Printf("stream client connected: %s (%d total)", conn.RemoteAddr(), n)

	// Writer: one goroutine per client owns all writes to its conn.
	go func() {
		for data := range ch {
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				break
			}
		}
		s.dropClient(conn)
	}()

	// Reader: drains control frames and detects disconnect.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.dropClient(conn)
				return
			}
		}
	}()
}

func (s *Server) dropClient(conn *websocket.Conn) {
	s.mu.Lock()
	ch, ok := s.clients[conn]
	if ok {
		delete(s.clients, conn)
		close(ch)
	}
	s.mu.Unlock()
	if ok {
		conn.Close()
		log.Printf("stream client disconnected: %s", conn.RemoteAddr())
	}
}

func (s *Server) broadcastLoop() {
	enc := encoder.NewJPEGEncoder(s.quality)
	frame := &capture.Frame{}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		idle := len(s.clients) == 0
		s.mu.Unlock()
		if idle {
			continue
		}
		if !s.ex.PeekLatest(frame) {
			continue
		}

		data, err := enc.Encode(frame)
		if err != nil {
			log.Printf("stream encode: %v", err)
			continue
		}

		s.mu.Lock()
		for _, ch := range s.clients {
			select {
			case ch <- data:
			default:
				// Client is behind; skip this frame for it.
			}
		}
		s.mu.Unlock()
	}
}
