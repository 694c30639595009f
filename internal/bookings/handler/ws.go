package handler

import (
	"net/http"

	"facilio/internal/bookings/realtime"

	"github.com/julienschmidt/httprouter"
)

// StreamHandler serves availability update subscriptions.
type StreamHandler struct {
	hub *realtime.Hub
}

func NewStreamHandler(hub *realtime.Hub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

func (h *StreamHandler) Subscribe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.hub.Serve(w, r, ps.ByName("facility_id"))
}

func (h *StreamHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/ws/:facility_id", h.Subscribe)
}
