package api

import (
	"net/http"

	"watego/pkg/sequence"
)

// SequenceHandler exposes the narrative playback state.
type SequenceHandler struct {
	mgr *sequence.Manager
}

func NewSequenceHandler(mgr *sequence.Manager) *SequenceHandler {
	return &SequenceHandler{mgr: mgr}
}

// SequenceResponse wraps the active message, if any.
type SequenceResponse struct {
	Active  bool              `json:"active"`
	Display *sequence.Display `json:"display,omitempty"`
}

// HandleCurrent returns the message currently on screen.
// GET /api/sequence
func (h *SequenceHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	resp := SequenceResponse{}
	if d, ok := h.mgr.Current(); ok {
		resp.Active = true
		resp.Display = &d
	}
	writeJSON(w, resp)
}

// HandleSkip dismisses the active sequence.
// POST /api/sequence/skip
func (h *SequenceHandler) HandleSkip(w http.ResponseWriter, r *http.Request) {
	h.mgr.Skip()
	writeOK(w)
}
