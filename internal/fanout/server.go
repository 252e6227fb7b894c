package fanout

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/charleschow/possession-sim/internal/events"
	"github.com/charleschow/possession-sim/internal/telemetry"
)

const (
	clientSendBuf = 4096
	writeDeadline = 5 * time.Second
	pongWait      = 30 * time.Second
	pingInterval  = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

type viewer struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Server streams bus events to connected viewers. Viewers are read-only:
// anything they send other than control frames is ignored.
type Server struct {
	mu      sync.Mutex
	viewers map[*viewer]struct{}
	srv     *http.Server
	closed  bool
}

func NewServer(bus *events.Bus) *Server {
	s := &Server{
		viewers: make(map[*viewer]struct{}),
	}
	bus.Subscribe(events.EventSweepStarted, s.forward)
	bus.Subscribe(events.EventCellResolved, s.forward)
	bus.Subscribe(events.EventSweepFinished, s.forward)
	bus.Subscribe(events.EventKick, s.forward)
	return s
}

// forward is called on the publisher's goroutine. It serializes the event
// and enqueues it to every viewer's send channel (non-blocking).
func (s *Server) forward(evt events.Event) error {
	data, err := MarshalEvent(evt)
	if err != nil {
		return fmt.Errorf("fanout: marshal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for v := range s.viewers {
		select {
		case v.send <- data:
			telemetry.Metrics.EventsStreamed.Inc()
		default:
			telemetry.Metrics.ViewerDrops.Inc()
			telemetry.Debugf("fanout: dropping %s for slow viewer", evt.Type)
		}
	}
	return nil
}

// Viewers returns the number of connected viewers.
func (s *Server) Viewers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.viewers)
}

// HandleWS is the HTTP handler for WebSocket upgrade requests.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		telemetry.Warnf("fanout: upgrade failed: %v", err)
		return
	}

	v := &viewer{
		conn: conn,
		send: make(chan []byte, clientSendBuf),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	s.viewers[v] = struct{}{}
	s.mu.Unlock()
	telemetry.Metrics.ActiveViewers.Inc()

	telemetry.Infof("fanout: viewer connected from %s", r.RemoteAddr)

	go s.writePump(v)
	go s.readPump(v)
}

// writePump drains the viewer's send channel and writes to the WS connection.
// It owns the viewer lifecycle: on exit it removes the viewer from the map
// (so forward never sends to a stale channel) and closes the connection.
func (s *Server) writePump(v *viewer) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.removeViewer(v)
		v.conn.Close()
	}()

	for {
		select {
		case msg := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := v.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				telemetry.Warnf("fanout: write error: %v", err)
				return
			}
		case <-v.done:
			return
		case <-ticker.C:
			v.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump keeps the connection alive by reading pongs / close frames.
// On exit it signals writePump via v.done (never closes v.send).
func (s *Server) readPump(v *viewer) {
	defer close(v.done)

	v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		v.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) removeViewer(v *viewer) {
	s.mu.Lock()
	delete(s.viewers, v)
	s.mu.Unlock()
	telemetry.Metrics.ActiveViewers.Dec()
	telemetry.Infof("fanout: viewer disconnected")
}

// Handler returns the mux serving /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	return mux
}

// Listen binds the viewer port. Callers that need bind errors before
// starting work call it first and hand the listener to Serve.
func Listen(port int) (net.Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("fanout listen: %w", err)
	}
	return ln, nil
}

// Serve accepts viewers on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ln.Close()
	}
	s.srv = &http.Server{
		Handler:     s.Handler(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	srv := s.srv
	s.mu.Unlock()

	telemetry.Plainf("fanout: streaming on ws://%s/ws", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("fanout serve: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
