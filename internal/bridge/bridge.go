// Package bridge exposes the engine over a websocket endpoint: clients
// stream JSON input events and the bridge replays them through one
// engine instance.
package bridge

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/jmigpin/xsynth/internal/logger"
)

// Event is one injected action. Type selects which fields apply.
type Event struct {
	Type   string `json:"type"` // move, moverel, click, scroll, char, text
	X      int16  `json:"x,omitempty"`
	Y      int16  `json:"y,omitempty"`
	DX     int32  `json:"dx,omitempty"`
	DY     int32  `json:"dy,omitempty"`
	Button uint8  `json:"button,omitempty"`
	Press  *bool  `json:"press,omitempty"` // click only; nil means press and release
	Char   byte   `json:"char,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Injector is the engine surface the bridge drives.
type Injector interface {
	MovePointer(x, y int16) error
	MovePointerRel(dx, dy int16) error
	Click(x, y int16, button uint8, press bool) error
	Scroll(dx, dy int32) error
	SendChar(b byte) error
	TypeString(s string) error
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// local network tool, any origin may connect
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server replays incoming input events through one injector. The
// engine is not safe for concurrent use, so a mutex serializes
// clients.
type Server struct {
	mu        sync.Mutex
	inj       Injector
	defButton uint8
}

func NewServer(inj Injector, defButton uint8) *Server {
	return &Server{inj: inj, defButton: defButton}
}

// ListenAndServe blocks serving the /input endpoint.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/input", s.handleWS)
	logger.Info("bridge listening", "addr", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("ws upgrade: %v", err)
		return
	}
	defer conn.Close()
	logger.Info("client connected", "remote", r.RemoteAddr)

	for {
		ev := Event{}
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Errorf("ws read: %v", err)
			}
			return
		}
		if err := s.apply(&ev); err != nil {
			logger.Errorf("inject %v: %v", ev.Type, err)
			return
		}
	}
}

func (s *Server) apply(ev *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Button == 0 {
		ev.Button = s.defButton
	}
	switch ev.Type {
	case "move":
		return s.inj.MovePointer(ev.X, ev.Y)
	case "moverel":
		return s.inj.MovePointerRel(ev.X, ev.Y)
	case "click":
		if ev.Press != nil {
			return s.inj.Click(ev.X, ev.Y, ev.Button, *ev.Press)
		}
		if err := s.inj.Click(ev.X, ev.Y, ev.Button, true); err != nil {
			return err
		}
		return s.inj.Click(ev.X, ev.Y, ev.Button, false)
	case "scroll":
		return s.inj.Scroll(ev.DX, ev.DY)
	case "char":
		return s.inj.SendChar(ev.Char)
	case "text":
		return s.inj.TypeString(ev.Text)
	}
	logger.Warn("unknown event type", "type", ev.Type)
	return nil
}
