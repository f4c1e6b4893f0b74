package stream

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/gassim/internal/gas"
	"github.com/san-kum/gassim/internal/sim"
)

type frame struct {
	Tick      int                 `json:"tick"`
	Width     float64             `json:"width"`
	Height    float64             `json:"height"`
	Model     string              `json:"model"`
	Gas       gas.GasState        `json:"gas"`
	Particles []sim.ParticleState `json:"particles"`
	Error     string              `json:"error"`
}

func newTestServer(t *testing.T, n int) (*Server, *sim.Controller, *httptest.Server) {
	t.Helper()
	sys, err := gas.New(n, gas.WithSeed(5))
	if err != nil {
		t.Fatal(err)
	}
	cfg := sim.DefaultConfig()
	sys.Scatter(cfg.Width, cfg.Height)
	ctrl := sim.New(sys, cfg)

	srv := New(ctrl, 1)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ctrl, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func TestInitialFrame(t *testing.T) {
	_, _, ts := newTestServer(t, 12)
	conn := dial(t, ts)

	f := readFrame(t, conn)
	if f.Tick != 0 {
		t.Errorf("expected tick 0, got %d", f.Tick)
	}
	if len(f.Particles) != 12 {
		t.Errorf("expected 12 particles, got %d", len(f.Particles))
	}
	if f.Width != 600 || f.Height != 400 {
		t.Errorf("expected 600x400, got %vx%v", f.Width, f.Height)
	}
	if f.Gas.Volume != 1 {
		t.Errorf("expected default gas state, got %+v", f.Gas)
	}
	if f.Particles[0].Color == "" || f.Particles[0].Radius <= 0 {
		t.Errorf("particle fields missing: %+v", f.Particles[0])
	}
}

func TestBroadcastOnTick(t *testing.T) {
	srv, ctrl, ts := newTestServer(t, 3)
	conn := dial(t, ts)
	readFrame(t, conn)

	deadline := time.Now().Add(2 * time.Second)
	for srv.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	ctrl.Step()
	if f := readFrame(t, conn); f.Tick != 1 {
		t.Errorf("expected tick 1 frame, got %d", f.Tick)
	}
}

func TestCommands(t *testing.T) {
	_, ctrl, ts := newTestServer(t, 10)
	conn := dial(t, ts)
	readFrame(t, conn)

	send := func(op string, value any) frame {
		t.Helper()
		if err := conn.WriteJSON(map[string]any{"op": op, "value": value}); err != nil {
			t.Fatalf("write: %v", err)
		}
		return readFrame(t, conn)
	}

	if f := send("particles", 4); len(f.Particles) != 4 {
		t.Errorf("expected 4 particles, got %d", len(f.Particles))
	}
	if f := send("temperature", 3.5); f.Gas.Temperature != 3.5 {
		t.Errorf("expected temperature 3.5, got %v", f.Gas.Temperature)
	}
	if f := send("moles", 2); f.Gas.Moles != 2 {
		t.Errorf("expected moles 2, got %v", f.Gas.Moles)
	}
	if f := send("model", "van_der_waals"); f.Model != "van_der_waals" {
		t.Errorf("expected van_der_waals, got %s", f.Model)
	}

	if got := ctrl.Snapshot().Gas.Temperature; got != 3.5 {
		t.Errorf("controller did not see the change: %v", got)
	}
}

func TestCommandErrors(t *testing.T) {
	_, _, ts := newTestServer(t, 2)
	conn := dial(t, ts)
	readFrame(t, conn)

	tests := []struct {
		name string
		msg  string
	}{
		{"not json", "hello"},
		{"unknown op", `{"op":"entropy","value":1}`},
		{"bad value", `{"op":"volume","value":"big"}`},
		{"too many", `{"op":"particles","value":100000}`},
		{"bad model", `{"op":"model","value":"plasma"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.msg)); err != nil {
				t.Fatal(err)
			}
			if f := readFrame(t, conn); f.Error == "" {
				t.Errorf("expected error reply, got %+v", f)
			}
		})
	}
}

func TestStateEndpoint(t *testing.T) {
	_, _, ts := newTestServer(t, 7)

	resp, err := http.Get(ts.URL + "/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "'totalParticles':7") {
		t.Errorf("unexpected dump: %s", body)
	}
}

func TestApplyDirect(t *testing.T) {
	srv, ctrl, _ := newTestServer(t, 1)
	raw, _ := json.Marshal(2.0)
	if err := srv.Apply(Command{Op: "pressure", Value: raw}); err != nil {
		t.Fatal(err)
	}
	if got := ctrl.Snapshot().Gas.Pressure; got != 2 {
		t.Errorf("expected pressure 2, got %v", got)
	}
}
