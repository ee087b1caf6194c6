package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/clinicbook/clinicbook/services/schedule-service/internal/model"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/query"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/scheduling"
)

type ScheduleService interface {
	Create(ctx context.Context, in scheduling.CreateInput) (model.Schedule, error)
	List(ctx context.Context, args query.ScheduleListArgs) (model.PaginatedSchedules, error)
	Get(ctx context.Context, id string) (model.Schedule, error)
	Cancel(ctx context.Context, id string) (model.Schedule, error)
}

type ScheduleHandler struct {
	svc    ScheduleService
	logger *slog.Logger
}

func NewScheduleHandler(svc ScheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{svc: svc, logger: logger}
}

func (h *ScheduleHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/schedules", h.collection)
	mux.HandleFunc("/v1/schedules/", h.item)
}

type createScheduleRequest struct {
	Objective   string `json:"objective"`
	CustomerID  string `json:"customerId"`
	DoctorID    string `json:"doctorId"`
	ScheduledAt string `json:"scheduledAt"`
}

func (h *ScheduleHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *ScheduleHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, &model.ValidationError{Reason: "invalid json body"})
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		writeError(w, h.logger, &model.ValidationError{Reason: "scheduledAt must be an RFC 3339 timestamp"})
		return
	}

	sched, err := h.svc.Create(r.Context(), scheduling.CreateInput{
		Objective:   req.Objective,
		CustomerID:  strings.TrimSpace(req.CustomerID),
		DoctorID:    strings.TrimSpace(req.DoctorID),
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sched)
}

func (h *ScheduleHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	p, err := query.ParsePagination(q.Get("page"), q.Get("limit"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	args := query.ScheduleListArgs{
		Page:       p.Page,
		Limit:      p.Limit,
		CustomerID: strings.TrimSpace(q.Get("customerId")),
		DoctorID:   strings.TrimSpace(q.Get("doctorId")),
	}
	if args.StartDate, err = parseDateParam(q.Get("startDate")); err != nil {
		writeError(w, h.logger, &model.ValidationError{Reason: "startDate must be an RFC 3339 timestamp"})
		return
	}
	if args.EndDate, err = parseDateParam(q.Get("endDate")); err != nil {
		writeError(w, h.logger, &model.ValidationError{Reason: "endDate must be an RFC 3339 timestamp"})
		return
	}

	out, err := h.svc.List(r.Context(), args)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ScheduleHandler) item(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/schedules/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, h.logger, &model.NotFoundError{Kind: "schedule"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		sched, err := h.svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, sched)
	case http.MethodDelete:
		sched, err := h.svc.Cancel(r.Context(), id)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, sched)
	default:
		methodNotAllowed(w)
	}
}

func parseDateParam(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
