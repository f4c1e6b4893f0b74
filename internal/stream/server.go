package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/gassim/internal/gas"
	"github.com/san-kum/gassim/internal/physics"
	"github.com/san-kum/gassim/internal/sim"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Command is a control message sent by a client. Value is a number for the
// population and gas-state ops and a model name for "model".
type Command struct {
	Op    string          `json:"op"`
	Value json.RawMessage `json:"value"`
}

type errorReply struct {
	Op    string `json:"op"`
	Error string `json:"error"`
}

// Server streams controller snapshots to websocket clients and applies their
// commands to the controller.
type Server struct {
	ctrl  *sim.Controller
	hub   *hub
	every int
}

// New attaches a server to ctrl. Frames go out every broadcastEvery ticks.
func New(ctrl *sim.Controller, broadcastEvery int) *Server {
	if broadcastEvery < 1 {
		broadcastEvery = 1
	}
	s := &Server{ctrl: ctrl, hub: newHub(), every: broadcastEvery}
	ctrl.AddObserver(sim.ObserverFunc(func(snap sim.Snapshot) {
		if snap.Tick%s.every == 0 {
			s.broadcast(snap)
		}
	}))
	return s
}

func (s *Server) Clients() int { return s.hub.count() }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/state", s.serveState)
	return mux
}

func (s *Server) broadcast(snap sim.Snapshot) {
	msg, err := json.Marshal(snap)
	if err != nil {
		log.Printf("stream: encode frame: %v", err)
		return
	}
	s.hub.broadcast(msg)
}

func (s *Server) serveState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var dump string
	s.ctrl.Do(func(sys *gas.System) { dump = sys.String() })
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, dump)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if _, ok := err.(websocket.HandshakeError); !ok {
			log.Println(err)
		}
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if frame, err := json.Marshal(s.ctrl.Snapshot()); err == nil {
		c.send <- frame
	}
	s.hub.register(c)

	go c.writePump()
	go s.readPump(c)
}

func (s *Server) readPump(c *client) {
	defer s.hub.unregister(c)

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("stream: read: %v", err)
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			s.reply(c, "", fmt.Errorf("invalid command: %w", err))
			continue
		}
		if err := s.Apply(cmd); err != nil {
			s.reply(c, cmd.Op, err)
			continue
		}
		s.broadcast(s.ctrl.Snapshot())
	}
}

func (s *Server) reply(c *client, op string, err error) {
	msg, _ := json.Marshal(errorReply{Op: op, Error: err.Error()})
	s.hub.sendTo(c, msg)
}

// Apply executes one command against the controller.
func (s *Server) Apply(cmd Command) error {
	switch cmd.Op {
	case "model":
		var name string
		if err := json.Unmarshal(cmd.Value, &name); err != nil {
			return fmt.Errorf("model: value must be a string")
		}
		m, err := physics.ParseGasModel(name)
		if err != nil {
			return err
		}
		s.ctrl.Do(func(sys *gas.System) { sys.SetGasModel(m) })
		return nil
	case "scatter":
		w, h := s.ctrl.Bounds()
		s.ctrl.Do(func(sys *gas.System) { sys.Scatter(w, h) })
		return nil
	}

	var v float64
	if err := json.Unmarshal(cmd.Value, &v); err != nil {
		return fmt.Errorf("%s: value must be a number", cmd.Op)
	}

	var applyErr error
	s.ctrl.Do(func(sys *gas.System) {
		switch cmd.Op {
		case "particles":
			n := int(v)
			if n < 0 || n > sys.MaxParticles() {
				applyErr = fmt.Errorf("particles: %d outside [0, %d]", n, sys.MaxParticles())
				return
			}
			sys.SetNumberOfParticles(n)
		case "volume", "temperature", "pressure", "moles":
			applyErr = sys.SetParam(cmd.Op, v)
		default:
			applyErr = fmt.Errorf("unknown op: %q", cmd.Op)
		}
	})
	return applyErr
}

// ListenAndServe serves until ctx is done, then shuts down and disconnects
// every client.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := s.Handler()
	srv := &http.Server{
		Addr: addr,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Print(r.RemoteAddr + " " + r.Method + " " + r.URL.String())
			mux.ServeHTTP(w, r)
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("streaming frames on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.hub.closeAll()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.closeAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
