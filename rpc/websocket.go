package rpc

import (
	"bytes"
	"net/http"
	"time"

	"github.com/ConsenSysQuorum/eea-gateway/log"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

const (
	wsReadLimit    = 1 << 20
	wsWriteTimeout = 10 * time.Second
)

// wsHandler serves JSON-RPC over WebSocket. Each text message is one
// request, dispatched through the HTTP handler with the context of the
// upgrade request so authentication claims carry over.
type wsHandler struct {
	upgrader websocket.Upgrader
	rpc      http.Handler
}

func newWSHandler(rpc http.Handler, origins []string) *wsHandler {
	return &wsHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(origins),
		},
		rpc: rpc,
	}
}

func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	id := middleware.GetReqID(r.Context())
	log.Debug("websocket connection opened", "remote", r.RemoteAddr, "request", id)
	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("websocket connection lost", "remote", r.RemoteAddr, "err", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		resp := h.dispatch(r, msg)
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, resp); err != nil {
			log.Debug("websocket write failed", "remote", r.RemoteAddr, "err", err)
			return
		}
	}
}

func (h *wsHandler) dispatch(upgrade *http.Request, msg []byte) []byte {
	req, err := http.NewRequestWithContext(upgrade.Context(), http.MethodPost, upgrade.URL.String(), bytes.NewReader(msg))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = upgrade.RemoteAddr
	req.Host = upgrade.Host

	w := newBufferedResponse()
	h.rpc.ServeHTTP(w, req)
	return bytes.TrimRight(w.body.Bytes(), "\n")
}

// bufferedResponse collects the JSON-RPC response of one WebSocket message.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header)}
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

// WriteHeader is a no-op, status codes have no WebSocket equivalent.
func (b *bufferedResponse) WriteHeader(int) {}

// originChecker allows requests without an Origin header and origins in the
// list. "*" allows every origin.
func originChecker(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if o == "*" || o == origin {
				return true
			}
		}
		log.Debug("rejected websocket origin", "origin", origin)
		return false
	}
}
