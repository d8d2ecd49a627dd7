package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watego/pkg/config"
	"watego/pkg/journey"
	"watego/pkg/model"
	"watego/pkg/sequence"
)

type fakeClearer struct {
	calls int
	err   error
}

func (f *fakeClearer) Clear(_ context.Context) error {
	f.calls++
	return f.err
}

func newTestHandlers(t *testing.T) (*journey.Journey, *sequence.Manager, *JourneyHandler) {
	t.Helper()
	cfg := config.DefaultConfig()
	j := journey.New(&cfg.Journey)
	mgr := sequence.NewManager(&cfg.Sequences, j)
	return j, mgr, NewJourneyHandler(j, mgr, nil, nil)
}

func TestHandleState(t *testing.T) {
	j, _, h := newTestHandlers(t)
	j.Start()

	req := httptest.NewRequest(http.MethodGet, "/api/journey", nil)
	rec := httptest.NewRecorder()
	h.HandleState(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp JourneyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, j.ID(), resp.ID)
	assert.Zero(t, resp.Distance)
	assert.Equal(t, model.TravelCruiseControl, resp.TravelMode)
	assert.Equal(t, "Walking", resp.CruiseMode.Name)
	assert.True(t, resp.Started)
	assert.NotEmpty(t, resp.ElapsedTime)
	assert.NotEmpty(t, resp.Coordinates)
	assert.Contains(t, resp.ToCircle, "to circle Earth")
	assert.Nil(t, resp.Waypoint, "no waypoint info before generation")
}

func TestHandleMarkers(t *testing.T) {
	_, _, h := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/markers?viewport=1000", nil)
	rec := httptest.NewRecorder()
	h.HandleMarkers(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var markers []model.Marker
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &markers))
	require.NotEmpty(t, markers)

	var hasOrigin bool
	for _, m := range markers {
		if m.Type == model.MarkerOrigin {
			hasOrigin = true
		}
	}
	assert.True(t, hasOrigin, "origin marker visible at the start")
}

func TestHandleMarkersInvalidViewport(t *testing.T) {
	_, _, h := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/markers?viewport=bogus", nil)
	rec := httptest.NewRecorder()
	h.HandleMarkers(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDrag(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"Start", `{"action":"start","x":100}`, http.StatusOK},
		{"Move", `{"action":"move","x":95}`, http.StatusOK},
		{"End", `{"action":"end"}`, http.StatusOK},
		{"UnknownAction", `{"action":"wiggle"}`, http.StatusBadRequest},
		{"BadBody", `{`, http.StatusBadRequest},
	}

	j, _, h := newTestHandlers(t)
	j.SetTravelMode(model.TravelFreeScroll)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/journey/drag", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.HandleDrag(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHandleScrollMovesJourney(t *testing.T) {
	j, _, h := newTestHandlers(t)
	j.SetTravelMode(model.TravelFreeScroll)

	body := bytes.NewReader([]byte(`{"deltaY":-10}`))
	req := httptest.NewRequest(http.MethodPost, "/api/journey/scroll", body)
	rec := httptest.NewRecorder()
	h.HandleScroll(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	j.Update()
	assert.Greater(t, j.Distance(), 0.0)
}

func TestHandleMode(t *testing.T) {
	j, _, h := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/journey/mode", strings.NewReader(`{"mode":"freeScroll"}`))
	rec := httptest.NewRecorder()
	h.HandleMode(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.TravelFreeScroll, j.TravelMode())

	req = httptest.NewRequest(http.MethodPost, "/api/journey/mode", strings.NewReader(`{"mode":"teleport"}`))
	rec = httptest.NewRecorder()
	h.HandleMode(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.TravelFreeScroll, j.TravelMode(), "invalid mode is ignored")
}

func TestHandleCycleCruise(t *testing.T) {
	_, _, h := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/journey/cruise/cycle", nil)
	rec := httptest.NewRecorder()
	h.HandleCycleCruise(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var mode model.CruiseMode
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mode))
	assert.Equal(t, "Running", mode.Name)
}

func TestHandlePauseResume(t *testing.T) {
	j, _, h := newTestHandlers(t)

	rec := httptest.NewRecorder()
	h.HandlePause(rec, httptest.NewRequest(http.MethodPost, "/api/journey/pause", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, j.Paused())

	rec = httptest.NewRecorder()
	h.HandleResume(rec, httptest.NewRequest(http.MethodPost, "/api/journey/resume", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, j.Paused())
}

func TestHandleRestart(t *testing.T) {
	cfg := config.DefaultConfig()
	j := journey.New(&cfg.Journey)
	mgr := sequence.NewManager(&cfg.Sequences, j)
	clearer := &fakeClearer{}
	var regenerated bool
	h := NewJourneyHandler(j, mgr, clearer, func() { regenerated = true })

	j.Start()
	j.SetTravelMode(model.TravelFreeScroll)
	j.Scroll(-10)
	j.Update()
	mgr.RestoreState([]string{"time-onboarding"})
	oldID := j.ID()
	require.Greater(t, j.Distance(), 0.0)

	req := httptest.NewRequest(http.MethodPost, "/api/restart", nil)
	rec := httptest.NewRecorder()
	h.HandleRestart(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, clearer.calls)
	assert.True(t, regenerated)
	assert.Zero(t, j.Distance())
	assert.False(t, j.Started())
	assert.NotEqual(t, oldID, j.ID())
	assert.Empty(t, mgr.SaveState())
}

func TestHandleSolar(t *testing.T) {
	cfg := config.DefaultConfig()
	j := journey.New(&cfg.Journey)
	h := NewSolarHandler(j)

	req := httptest.NewRequest(http.MethodGet, "/api/solar", nil)
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SolarResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Phase)
	assert.NotEmpty(t, resp.LocalSolarTime)
	// Equatorial start, so never polar conditions.
	assert.False(t, resp.PolarDay)
	assert.False(t, resp.PolarNight)
	require.NotNil(t, resp.Sunrise)
	require.NotNil(t, resp.Sunset)
	assert.True(t, resp.Sunset.After(*resp.Sunrise))
}

func TestHandleSequence(t *testing.T) {
	cfg := config.DefaultConfig()
	j := journey.New(&cfg.Journey)
	mgr := sequence.NewManager(&cfg.Sequences, j)
	h := NewSequenceHandler(mgr)

	rec := httptest.NewRecorder()
	h.HandleCurrent(rec, httptest.NewRequest(http.MethodGet, "/api/sequence", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SequenceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Active)
	assert.Nil(t, resp.Display)

	rec = httptest.NewRecorder()
	h.HandleSkip(rec, httptest.NewRequest(http.MethodPost, "/api/sequence/skip", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerRouting(t *testing.T) {
	cfg := config.DefaultConfig()
	j := journey.New(&cfg.Journey)
	mgr := sequence.NewManager(&cfg.Sequences, j)
	srv := NewServer("localhost:0",
		NewJourneyHandler(j, mgr, nil, nil),
		NewSolarHandler(j),
		NewSequenceHandler(mgr),
		nil,
		func() {})

	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/version")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Method mismatch is a 405 from the mux.
	resp, err = http.Get(ts.URL + "/api/restart")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStreamPushesTicks(t *testing.T) {
	h := NewStreamHandler()
	ts := httptest.NewServer(http.HandlerFunc(h.Handle))
	defer ts.Close()
	defer h.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// The handshake can return before Handle registers the client.
	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.clients) == 1
	}, time.Second, 10*time.Millisecond)

	state := &model.TickState{Distance: 42, Phase: "day", TravelMode: model.TravelCruiseControl}
	h.Update(state)

	var got model.TickState
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, 42.0, got.Distance)
	assert.Equal(t, "day", got.Phase)
}

func TestStreamUpdateDoesNotBlockOnStalledClient(t *testing.T) {
	h := NewStreamHandler()

	// A client whose queue is already full and whose writer never runs.
	c := &streamClient{send: make(chan []byte, streamSendBuffer)}
	for i := 0; i < streamSendBuffer; i++ {
		c.send <- []byte("{}")
	}
	h.clients[c] = struct{}{}

	done := make(chan struct{})
	go func() {
		h.Update(&model.TickState{Distance: 1})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tick sink blocked on a stalled client")
	}

	// The frame was skipped, not queued behind the backlog.
	assert.Len(t, c.send, streamSendBuffer)
}
