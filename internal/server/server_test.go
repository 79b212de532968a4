package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/san-kum/pocketphys/internal/config"
	"github.com/san-kum/pocketphys/internal/physics"
	"github.com/san-kum/pocketphys/internal/sim"
	"github.com/san-kum/pocketphys/internal/storage"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	sc := config.GetPreset("demo")
	world, _, err := sc.Build()
	if err != nil {
		t.Fatal(err)
	}
	res, err := sim.New(world, sim.PairNone).Run(context.Background(), sim.Config{Dt: sc.Dt, Duration: sc.Duration})
	if err != nil {
		t.Fatal(err)
	}
	runID, err := st.Save(storage.RunInfo{Scene: sc.Name, Dt: sc.Dt, Duration: sc.Duration, Pairing: sc.Pairing}, res)
	if err != nil {
		t.Fatal(err)
	}

	return New(config.GetPreset("pair"), st), runID
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	w := get(t, s.Handler(), "/api/v1/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["scene"] != "pair" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestSceneAndPresets(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(t, s.Handler(), "/api/v1/scene")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "name: pair") {
		t.Errorf("scene: %d %s", w.Code, w.Body.String())
	}

	w = get(t, s.Handler(), "/api/v1/presets")
	var presets struct {
		Presets []string `json:"presets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &presets); err != nil {
		t.Fatal(err)
	}
	if len(presets.Presets) != len(config.ListPresets()) {
		t.Errorf("presets = %v", presets.Presets)
	}

	if w := get(t, s.Handler(), "/api/v1/presets/bounce"); w.Code != http.StatusOK {
		t.Errorf("preset status = %d", w.Code)
	}
	if w := get(t, s.Handler(), "/api/v1/presets/nope"); w.Code != http.StatusNotFound {
		t.Errorf("missing preset status = %d", w.Code)
	}
}

func TestRuns(t *testing.T) {
	s, runID := newTestServer(t)

	w := get(t, s.Handler(), "/api/v1/runs")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), runID) {
		t.Errorf("runs: %d %s", w.Code, w.Body.String())
	}

	w = get(t, s.Handler(), "/api/v1/runs/"+runID)
	var meta storage.RunMetadata
	if err := json.Unmarshal(w.Body.Bytes(), &meta); err != nil {
		t.Fatal(err)
	}
	if meta.Scene != "demo" || meta.Steps != 10 {
		t.Errorf("unexpected metadata %+v", meta)
	}

	w = get(t, s.Handler(), "/api/v1/runs/"+runID+"/export")
	var exported storage.ExportData
	if err := json.Unmarshal(w.Body.Bytes(), &exported); err != nil {
		t.Fatal(err)
	}
	if len(exported.States) != 11 {
		t.Errorf("exported rows = %d, want 11", len(exported.States))
	}

	if w := get(t, s.Handler(), "/api/v1/runs/missing"); w.Code != http.StatusNotFound {
		t.Errorf("missing run status = %d", w.Code)
	}
	if w := get(t, s.Handler(), "/api/v1/runs/missing/export"); w.Code != http.StatusNotFound {
		t.Errorf("missing export status = %d", w.Code)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketStreamsFrames(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return s.Hub().Clients() == 1 })

	s.Hub().OnStep(sim.Frame{Time: 0.25, Bodies: []physics.BodyState{
		{Position: physics.Vec(1, 2), Velocity: physics.Vec(3, 4), Mass: 5},
	}})
	s.Hub().OnCollision(0.25, 0, 1)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame frameMessage
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatal(err)
	}
	want := bodyMessage{X: 1, Y: 2, VX: 3, VY: 4, Mass: 5}
	if frame.Type != "frame" || frame.Time != 0.25 || len(frame.Bodies) != 1 || frame.Bodies[0] != want {
		t.Errorf("unexpected frame %+v", frame)
	}

	var col collisionMessage
	if err := conn.ReadJSON(&col); err != nil {
		t.Fatal(err)
	}
	if col.Type != "collision" || col.A != 0 || col.B != 1 {
		t.Errorf("unexpected collision %+v", col)
	}

	conn.Close()
	waitFor(t, func() bool { return s.Hub().Clients() == 0 })
}

func TestBroadcastWithoutClients(t *testing.T) {
	h := NewHub()
	h.OnStep(sim.Frame{})
	h.Broadcast(map[string]int{"x": 1})
	if h.Clients() != 0 {
		t.Error("no clients expected")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0", 60) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}
}

func TestRunRejectsBadFPS(t *testing.T) {
	s, _ := newTestServer(t)
	if err := s.Run(context.Background(), "127.0.0.1:0", 0); err == nil {
		t.Error("expected error for fps 0")
	}
}
