package transport

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tanmaysharma2001/collabboard/internal/dispatcher"
	"github.com/tanmaysharma2001/collabboard/pkg/logger"
)

// Server exposes the two HTTP entry points a standalone whiteboard
// server needs: a health check and the WebSocket upgrade. It is the
// "external collaborator" spec.md leaves out of the core, specified
// here so the repository is runnable end to end.
type Server struct {
	dispatcher *dispatcher.Dispatcher
	upgrader   websocket.Upgrader
}

// NewServer returns a Server that dispatches every accepted
// connection's frames through disp.
func NewServer(disp *dispatcher.Dispatcher) *Server {
	return &Server{
		dispatcher: disp,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Health replies 200 OK with a plain-text body, per spec.md §6.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// HandleWebSocket upgrades the request and hands the new connection
// off to its own reader/writer goroutine pair.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("transport: upgrade error: %v", err)
		return
	}

	conn := newConn(ws, s.dispatcher)
	logger.Info("transport: connection accepted from %s", r.RemoteAddr)
	conn.run()
}

// Mux builds the server's http.ServeMux: GET /health, everything else
// upgraded to WebSocket.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.Health)
	mux.HandleFunc("/", s.HandleWebSocket)
	return mux
}
