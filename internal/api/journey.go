package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"watego/pkg/geo"
	"watego/pkg/journey"
	"watego/pkg/model"
	"watego/pkg/sequence"
)

// StateClearer removes the persisted journey record on restart.
type StateClearer interface {
	Clear(ctx context.Context) error
}

// JourneyHandler handles journey state and input endpoints.
type JourneyHandler struct {
	j       *journey.Journey
	seqMgr  *sequence.Manager
	persist StateClearer
	// regenerate rebuilds the waypoint table after a restart. May be nil.
	regenerate func()
}

// NewJourneyHandler creates a JourneyHandler. persist and regenerate may
// be nil; the restart endpoint degrades gracefully without them.
func NewJourneyHandler(j *journey.Journey, seqMgr *sequence.Manager, persist StateClearer, regenerate func()) *JourneyHandler {
	return &JourneyHandler{j: j, seqMgr: seqMgr, persist: persist, regenerate: regenerate}
}

// JourneyResponse is the full journey snapshot returned by GET /api/journey.
type JourneyResponse struct {
	ID            string              `json:"id"`
	Distance      float64             `json:"distance"`
	OffsetPx      float64             `json:"offset_px"`
	Lat           float64             `json:"lat"`
	Lng           float64             `json:"lng"`
	Coordinates   string              `json:"coordinates"`
	SpeedKmh      float64             `json:"speed_kmh"`
	TravelMode    model.TravelMode    `json:"travel_mode"`
	CruiseMode    model.CruiseMode    `json:"cruise_mode"`
	Throttle      model.ThrottleLevel `json:"throttle"`
	Paused        bool                `json:"paused"`
	Started       bool                `json:"started"`
	VirtualTime   time.Time           `json:"virtual_time"`
	ElapsedTime   string              `json:"elapsed_time,omitempty"`
	TimeRemaining string              `json:"time_remaining"`
	ToCircle      string              `json:"to_circle"`
	Waypoint      *model.Waypoint     `json:"waypoint"`
	StartLocation model.Location      `json:"start_location"`
	Bearing       float64             `json:"bearing"`
}

// HandleState returns the journey snapshot.
// GET /api/journey
func (h *JourneyHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	pos := h.j.CurrentPosition()

	resp := JourneyResponse{
		ID:            h.j.ID(),
		Distance:      h.j.Distance(),
		OffsetPx:      h.j.Offset(),
		Lat:           pos.Lat,
		Lng:           pos.Lng,
		Coordinates:   geo.FormatCoordinates(pos.Lat, pos.Lng),
		SpeedKmh:      h.j.LastSpeed(),
		TravelMode:    h.j.TravelMode(),
		CruiseMode:    h.j.CurrentCruiseMode(),
		Throttle:      h.j.CurrentThrottle(),
		Paused:        h.j.Paused(),
		Started:       h.j.Started(),
		VirtualTime:   h.j.VirtualTime(),
		Waypoint:      h.j.CurrentWaypointInfo(),
		StartLocation: h.j.StartLocation(),
		Bearing:       h.j.Bearing(),
	}

	if elapsed, ok := h.j.ElapsedTime(); ok {
		resp.ElapsedTime = geo.FormatDuration(elapsed)
	}
	resp.TimeRemaining = h.timeRemaining()
	resp.ToCircle = h.toCircle()

	writeJSON(w, resp)
}

func (h *JourneyHandler) timeRemaining() string {
	if remaining, ok := h.j.TimeRemaining(); ok {
		return geo.FormatDuration(remaining)
	}
	return geo.Placeholder
}

func (h *JourneyHandler) toCircle() string {
	if h.j.TravelMode() == model.TravelCruiseControl {
		return geo.FormatCruiseTimeToCircumnavigate(h.j.CurrentCruiseMode().SpeedKmh)
	}
	return geo.FormatTimeToCircumnavigate(h.j.LastSpeed())
}

// HandleMarkers returns the distance markers visible in a viewport.
// GET /api/markers?viewport=<pixels>
func (h *JourneyHandler) HandleMarkers(w http.ResponseWriter, r *http.Request) {
	viewport := 1280.0
	if s := r.URL.Query().Get("viewport"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			http.Error(w, "invalid viewport", http.StatusBadRequest)
			return
		}
		viewport = v
	}

	markers := h.j.VisibleMarkers(viewport)
	if markers == nil {
		markers = []model.Marker{}
	}
	writeJSON(w, markers)
}

// DragRequest is the drag input payload. Action is "start", "move" or
// "end"; X is the pointer position in pixels.
type DragRequest struct {
	Action string  `json:"action"`
	X      float64 `json:"x"`
}

// HandleDrag applies a drag input event.
// POST /api/journey/drag
func (h *JourneyHandler) HandleDrag(w http.ResponseWriter, r *http.Request) {
	var req DragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	switch req.Action {
	case "start":
		h.j.StartDrag(req.X)
	case "move":
		h.j.Drag(req.X)
	case "end":
		h.j.EndDrag()
	default:
		http.Error(w, "unknown drag action", http.StatusBadRequest)
		return
	}
	writeOK(w)
}

// ScrollRequest is the wheel input payload.
type ScrollRequest struct {
	DeltaY float64 `json:"deltaY"`
}

// HandleScroll applies a wheel input event.
// POST /api/journey/scroll
func (h *JourneyHandler) HandleScroll(w http.ResponseWriter, r *http.Request) {
	var req ScrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.j.Scroll(req.DeltaY)
	writeOK(w)
}

// ModeRequest selects a travel mode.
type ModeRequest struct {
	Mode model.TravelMode `json:"mode"`
}

// HandleMode switches the travel mode.
// POST /api/journey/mode
func (h *JourneyHandler) HandleMode(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Mode.Valid() {
		http.Error(w, "unknown travel mode", http.StatusBadRequest)
		return
	}
	h.j.SetTravelMode(req.Mode)
	writeOK(w)
}

// HandleCycleCruise advances to the next cruise mode and returns it.
// POST /api/journey/cruise/cycle
func (h *JourneyHandler) HandleCycleCruise(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.j.CycleCruiseMode())
}

// HandleCycleThrottle advances to the next throttle level and returns it.
// POST /api/journey/throttle/cycle
func (h *JourneyHandler) HandleCycleThrottle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.j.CycleThrottle())
}

// HandleStart marks the journey as started.
// POST /api/journey/start
func (h *JourneyHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.j.Start()
	writeOK(w)
}

// HandlePause pauses virtual time.
// POST /api/journey/pause
func (h *JourneyHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	h.j.Pause()
	writeOK(w)
}

// HandleResume resumes virtual time.
// POST /api/journey/resume
func (h *JourneyHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	h.j.Resume()
	writeOK(w)
}

// HandleRestart clears all saved progress and begins a fresh journey.
// POST /api/restart
func (h *JourneyHandler) HandleRestart(w http.ResponseWriter, r *http.Request) {
	if h.persist != nil {
		if err := h.persist.Clear(r.Context()); err != nil {
			slog.Error("Restart: failed to clear saved state", "error", err)
			http.Error(w, "failed to clear saved state", http.StatusInternalServerError)
			return
		}
	}
	h.j.Reset()
	h.seqMgr.Reset()
	if h.regenerate != nil {
		h.regenerate()
	}
	slog.Info("Journey restarted", "id", h.j.ID())
	writeOK(w)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
