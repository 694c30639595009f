package handler

import (
	"net/http"

	"facilio/internal/facilities/service"
	httputil "facilio/pkg/http"
	"facilio/pkg/logger"
	"facilio/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type FacilityHandler struct {
	facilities    service.FacilityService
	subfacilities service.SubfacilityService
	log           *logger.Logger
}

func NewFacilityHandler(facilities service.FacilityService, subfacilities service.SubfacilityService, log *logger.Logger) *FacilityHandler {
	return &FacilityHandler{
		facilities:    facilities,
		subfacilities: subfacilities,
		log:           log,
	}
}

func (h *FacilityHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *FacilityHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var facility model.Facility
	if err := httputil.DecodeJSON(r, &facility); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.facilities.Create(r.Context(), &facility); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, facility); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *FacilityHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	facility, err := h.facilities.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, facility); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FacilityHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	facilities, total, err := h.facilities.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, facilities, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *FacilityHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.FacilityUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	facility, err := h.facilities.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, facility); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FacilityHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.facilities.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *FacilityHandler) CreateSubfacility(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var sub model.Subfacility
	if err := httputil.DecodeJSON(r, &sub); err != nil {
		h.writeError(w, "CreateSubfacility", err)
		return
	}

	if err := h.subfacilities.Create(r.Context(), ps.ByName("id"), &sub); err != nil {
		h.writeError(w, "CreateSubfacility", err)
		return
	}

	if err := httputil.WriteCreated(w, sub); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateSubfacility", "operation", "WriteCreated", "error", err)
	}
}

func (h *FacilityHandler) ListSubfacilities(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	subs, err := h.subfacilities.ListByFacility(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "ListSubfacilities", err)
		return
	}

	if err := httputil.WriteSuccess(w, subs); err != nil {
		h.log.Error("failed to write success response", "handler", "ListSubfacilities", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FacilityHandler) GetSubfacility(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sub, err := h.subfacilities.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetSubfacility", err)
		return
	}

	if err := httputil.WriteSuccess(w, sub); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSubfacility", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FacilityHandler) UpdateSubfacility(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.SubfacilityUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "UpdateSubfacility", err)
		return
	}

	sub, err := h.subfacilities.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "UpdateSubfacility", err)
		return
	}

	if err := httputil.WriteSuccess(w, sub); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateSubfacility", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FacilityHandler) DeleteSubfacility(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.subfacilities.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteSubfacility", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *FacilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/facilities", h.Create)
	router.GET("/api/v1/facilities", h.GetAll)
	router.GET("/api/v1/facilities/id/:id", h.GetByID)
	router.PATCH("/api/v1/facilities/id/:id", h.Update)
	router.DELETE("/api/v1/facilities/id/:id", h.Delete)

	router.POST("/api/v1/facilities/id/:id/subfacilities", h.CreateSubfacility)
	router.GET("/api/v1/facilities/id/:id/subfacilities", h.ListSubfacilities)
	router.GET("/api/v1/subfacilities/id/:id", h.GetSubfacility)
	router.PATCH("/api/v1/subfacilities/id/:id", h.UpdateSubfacility)
	router.DELETE("/api/v1/subfacilities/id/:id", h.DeleteSubfacility)
}
