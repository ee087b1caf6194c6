package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/clinicbook/clinicbook/services/schedule-service/internal/model"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/query"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/scheduling"
)

type stubScheduleService struct {
	createFn func(scheduling.CreateInput) (model.Schedule, error)
	listFn   func(query.ScheduleListArgs) (model.PaginatedSchedules, error)
	getFn    func(string) (model.Schedule, error)
	cancelFn func(string) (model.Schedule, error)

	lastArgs query.ScheduleListArgs
}

func (s *stubScheduleService) Create(_ context.Context, in scheduling.CreateInput) (model.Schedule, error) {
	return s.createFn(in)
}

func (s *stubScheduleService) List(_ context.Context, args query.ScheduleListArgs) (model.PaginatedSchedules, error) {
	s.lastArgs = args
	return s.listFn(args)
}

func (s *stubScheduleService) Get(_ context.Context, id string) (model.Schedule, error) {
	return s.getFn(id)
}

func (s *stubScheduleService) Cancel(_ context.Context, id string) (model.Schedule, error) {
	return s.cancelFn(id)
}

func newScheduleMux(svc *stubScheduleService) *http.ServeMux {
	mux := http.NewServeMux()
	NewScheduleHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(mux)
	return mux
}

func TestScheduleCreate_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"created", nil, http.StatusCreated},
		{"customer missing", &model.NotFoundError{Kind: "customer"}, http.StatusNotFound},
		{"slot taken", &model.ConflictError{Reason: "doctor already has a schedule at this time"}, http.StatusConflict},
		{"past date", &model.ValidationError{Reason: "schedule must be in the future"}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubScheduleService{
				createFn: func(in scheduling.CreateInput) (model.Schedule, error) {
					if tc.err != nil {
						return model.Schedule{}, tc.err
					}
					return model.Schedule{ID: "s-1", Objective: in.Objective}, nil
				},
			}
			body := `{"objective":"Checkup","customerId":"c-1","doctorId":"d-1","scheduledAt":"2026-09-01T10:00:00Z"}`
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/schedules", strings.NewReader(body))
			newScheduleMux(svc).ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.status, rec.Body.String())
			}
			if rec.Header().Get("Content-Type") != "application/json" {
				t.Fatalf("content-type = %q", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestScheduleCreate_BadPayload(t *testing.T) {
	svc := &stubScheduleService{
		createFn: func(scheduling.CreateInput) (model.Schedule, error) {
			t.Fatal("service must not be called")
			return model.Schedule{}, nil
		},
	}
	mux := newScheduleMux(svc)

	for name, body := range map[string]string{
		"broken json": `{"objective":`,
		"bad date":    `{"objective":"x","customerId":"c","doctorId":"d","scheduledAt":"tomorrow"}`,
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/schedules", strings.NewReader(body))
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
}

func TestScheduleList_QueryParams(t *testing.T) {
	svc := &stubScheduleService{
		listFn: func(args query.ScheduleListArgs) (model.PaginatedSchedules, error) {
			return model.PaginatedSchedules{Schedules: []model.Schedule{}, Page: args.Page, Limit: args.Limit}, nil
		},
	}
	mux := newScheduleMux(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/schedules?page=2&limit=5&doctorId=d-1&startDate=2026-09-01T00:00:00Z", nil)
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if svc.lastArgs.Page != 2 || svc.lastArgs.Limit != 5 || svc.lastArgs.DoctorID != "d-1" {
		t.Fatalf("args = %+v", svc.lastArgs)
	}
	if svc.lastArgs.StartDate == nil || !svc.lastArgs.StartDate.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("startDate = %v", svc.lastArgs.StartDate)
	}

	// Omitted params fall back to the defaults.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/schedules", nil))
	if svc.lastArgs.Page != 1 || svc.lastArgs.Limit != 10 {
		t.Fatalf("default args = %+v", svc.lastArgs)
	}

	// Malformed pagination is rejected before the service runs.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/schedules?page=zero", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad page status = %d", rec.Code)
	}
}

func TestScheduleItem_GetAndCancel(t *testing.T) {
	svc := &stubScheduleService{
		getFn: func(id string) (model.Schedule, error) {
			if id != "s-1" {
				return model.Schedule{}, &model.NotFoundError{Kind: "schedule"}
			}
			return model.Schedule{ID: "s-1"}, nil
		},
		cancelFn: func(id string) (model.Schedule, error) {
			return model.Schedule{ID: id}, nil
		},
	}
	mux := newScheduleMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/schedules/s-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var sched model.Schedule
	if err := json.Unmarshal(rec.Body.Bytes(), &sched); err != nil || sched.ID != "s-1" {
		t.Fatalf("get body = %s (err %v)", rec.Body.String(), err)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/schedules/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/schedules/s-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/schedules/s-1", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("put status = %d", rec.Code)
	}
}
