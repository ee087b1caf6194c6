package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/clinicbook/clinicbook/services/schedule-service/internal/doctors"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/model"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/query"
)

type DoctorService interface {
	Create(ctx context.Context, in doctors.CreateInput) (model.Doctor, error)
	List(ctx context.Context, p query.Pagination) (model.PaginatedDoctors, error)
	Get(ctx context.Context, id string) (model.Doctor, error)
	Update(ctx context.Context, id string, upd model.DoctorUpdate) (model.Doctor, error)
	Delete(ctx context.Context, id string) error
}

type DoctorHandler struct {
	svc    DoctorService
	logger *slog.Logger
}

func NewDoctorHandler(svc DoctorService, logger *slog.Logger) *DoctorHandler {
	return &DoctorHandler{svc: svc, logger: logger}
}

func (h *DoctorHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/doctors", h.collection)
	mux.HandleFunc("/v1/doctors/", h.item)
}

func (h *DoctorHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req doctors.CreateInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, h.logger, &model.ValidationError{Reason: "invalid json body"})
			return
		}
		d, err := h.svc.Create(r.Context(), req)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, d)
	case http.MethodGet:
		q := r.URL.Query()
		p, err := query.ParsePagination(q.Get("page"), q.Get("limit"))
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		out, err := h.svc.List(r.Context(), p)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	default:
		methodNotAllowed(w)
	}
}

func (h *DoctorHandler) item(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/doctors/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, h.logger, &model.NotFoundError{Kind: "doctor"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		d, err := h.svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	case http.MethodPatch:
		var upd model.DoctorUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			writeError(w, h.logger, &model.ValidationError{Reason: "invalid json body"})
			return
		}
		d, err := h.svc.Update(r.Context(), id, upd)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	case http.MethodDelete:
		if err := h.svc.Delete(r.Context(), id); err != nil {
			writeError(w, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}
