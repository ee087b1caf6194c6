package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/clinicbook/clinicbook/services/schedule-service/internal/customers"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/model"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/query"
)

type CustomerService interface {
	Create(ctx context.Context, in customers.CreateInput) (model.Customer, error)
	List(ctx context.Context, p query.Pagination) (model.PaginatedCustomers, error)
	Get(ctx context.Context, id string) (model.Customer, error)
	Update(ctx context.Context, id string, upd model.CustomerUpdate) (model.Customer, error)
	Delete(ctx context.Context, id string) error
}

type CustomerHandler struct {
	svc    CustomerService
	logger *slog.Logger
}

func NewCustomerHandler(svc CustomerService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{svc: svc, logger: logger}
}

func (h *CustomerHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/customers", h.collection)
	mux.HandleFunc("/v1/customers/", h.item)
}

func (h *CustomerHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req customers.CreateInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, h.logger, &model.ValidationError{Reason: "invalid json body"})
			return
		}
		c, err := h.svc.Create(r.Context(), req)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
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

func (h *CustomerHandler) item(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/customers/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, h.logger, &model.NotFoundError{Kind: "customer"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := h.svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	case http.MethodPatch:
		var upd model.CustomerUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			writeError(w, h.logger, &model.ValidationError{Reason: "invalid json body"})
			return
		}
		c, err := h.svc.Update(r.Context(), id, upd)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
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
