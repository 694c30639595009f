package handler

import (
	"net/http"
	"strconv"

	"facilio/internal/notifications/service"
	apperrors "facilio/pkg/errors"
	httputil "facilio/pkg/http"
	"facilio/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type NotificationHandler struct {
	service service.NotificationService
	log     *logger.Logger
}

func NewNotificationHandler(service service.NotificationService, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		log:     log,
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	unreadOnly := false
	if raw := r.URL.Query().Get("unread"); raw != "" {
		unreadOnly, err = strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, "List", apperrors.InvalidInput("unread must be a boolean"))
			return
		}
	}

	notifications, total, err := h.service.List(r.Context(), r.URL.Query().Get("user_id"), unreadOnly, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, notifications, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	n, err := h.service.MarkRead(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "MarkRead", err)
		return
	}

	if err := httputil.WriteSuccess(w, n); err != nil {
		h.log.Error("failed to write success response", "handler", "MarkRead", "operation", "WriteSuccess", "error", err)
	}
}

func (h *NotificationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *NotificationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/notifications", h.List)
	router.PATCH("/api/v1/notifications/id/:id/read", h.MarkRead)
}
