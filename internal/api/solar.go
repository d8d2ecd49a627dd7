package api

import (
	"net/http"
	"time"

	"watego/pkg/journey"
	"watego/pkg/model"
	"watego/pkg/solar"
)

// SolarHandler reports the light conditions at the journey's position.
type SolarHandler struct {
	j *journey.Journey
}

func NewSolarHandler(j *journey.Journey) *SolarHandler {
	return &SolarHandler{j: j}
}

// SolarResponse is the GET /api/solar payload. Sun event times are
// omitted during polar day or polar night.
type SolarResponse struct {
	Phase          string                 `json:"phase"`
	LocalSolarTime string                 `json:"local_solar_time"`
	PolarDay       bool                   `json:"polar_day"`
	PolarNight     bool                   `json:"polar_night"`
	DawnStart      *time.Time             `json:"dawn_start,omitempty"`
	Sunrise        *time.Time             `json:"sunrise,omitempty"`
	Sunset         *time.Time             `json:"sunset,omitempty"`
	DuskEnd        *time.Time             `json:"dusk_end,omitempty"`
	NextTransition *model.SolarTransition `json:"next_transition,omitempty"`
}

// Handle returns sun times, the current phase and the next transition at
// the journey's position and virtual time.
// GET /api/solar
func (h *SolarHandler) Handle(w http.ResponseWriter, r *http.Request) {
	pos := h.j.CurrentPosition()
	vt := h.j.VirtualTime()

	times := solar.Times(pos.Lat, pos.Lng, vt)
	resp := SolarResponse{
		Phase:          string(solar.PhaseAt(pos.Lat, pos.Lng, vt)),
		LocalSolarTime: solar.LocalSolarTime(pos.Lng, vt).String,
		PolarDay:       times.PolarDay,
		PolarNight:     times.PolarNight,
	}
	if !times.PolarDay && !times.PolarNight {
		resp.DawnStart = &times.DawnStart
		resp.Sunrise = &times.Sunrise
		resp.Sunset = &times.Sunset
		resp.DuskEnd = &times.DuskEnd
	}
	if tr, ok := h.j.NextSolarTransition(); ok {
		resp.NextTransition = &tr
	}

	writeJSON(w, resp)
}
