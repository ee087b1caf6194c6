// Package scheduling enforces the booking invariants: referenced entities
// must exist, the slot must be in the future, and a doctor can hold at most
// one schedule per instant. The store's unique constraint is the arbiter of
// that last invariant; the pre-check here only fails fast.
package scheduling

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/services/schedule-service/internal/cache"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/model"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/notify"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/query"
)

type CustomerStore interface {
	FindByID(ctx context.Context, id string) (model.Customer, error)
}

type DoctorStore interface {
	FindByID(ctx context.Context, id string) (model.Doctor, error)
}

type ScheduleStore interface {
	Create(ctx context.Context, objective, customerID, doctorID string, scheduledAt time.Time) (model.Schedule, error)
	FindByID(ctx context.Context, id string) (model.Schedule, error)
	FindByDoctorAt(ctx context.Context, doctorID string, scheduledAt time.Time) (model.Schedule, bool, error)
	FindMany(ctx context.Context, f model.ScheduleFilter, skip, take int) ([]model.Schedule, error)
	Count(ctx context.Context, f model.ScheduleFilter) (int, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	schedules  ScheduleStore
	customers  CustomerStore
	doctors    DoctorStore
	cache      cache.Cache
	dispatcher notify.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(schedules ScheduleStore, customers CustomerStore, doctors DoctorStore, c cache.Cache, dispatcher notify.Dispatcher, logger *slog.Logger) *Service {
	return &Service{
		schedules:  schedules,
		customers:  customers,
		doctors:    doctors,
		cache:      c,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

type CreateInput struct {
	Objective   string
	CustomerID  string
	DoctorID    string
	ScheduledAt time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (model.Schedule, error) {
	objective := strings.TrimSpace(in.Objective)
	if objective == "" {
		return model.Schedule{}, &model.ValidationError{Reason: "objective is required"}
	}
	if _, err := uuid.Parse(in.CustomerID); err != nil {
		return model.Schedule{}, &model.ValidationError{Reason: "customerId must be a valid UUID"}
	}
	if _, err := uuid.Parse(in.DoctorID); err != nil {
		return model.Schedule{}, &model.ValidationError{Reason: "doctorId must be a valid UUID"}
	}

	// The two existence checks have no data dependency on each other, so
	// they run concurrently. The customer result is reported first to keep
	// error precedence deterministic.
	var customer model.Customer
	custErrCh := make(chan error, 1)
	go func() {
		var err error
		customer, err = s.customers.FindByID(ctx, in.CustomerID)
		custErrCh <- err
	}()
	doctor, doctorErr := s.doctors.FindByID(ctx, in.DoctorID)
	if err := <-custErrCh; err != nil {
		return model.Schedule{}, err
	}
	if doctorErr != nil {
		return model.Schedule{}, doctorErr
	}

	// Optimistic pre-check: advisory only. Two racing creates can both pass
	// it; the store's unique constraint decides the winner.
	if _, found, err := s.schedules.FindByDoctorAt(ctx, in.DoctorID, in.ScheduledAt); err != nil {
		return model.Schedule{}, err
	} else if found {
		return model.Schedule{}, &model.ConflictError{Reason: "doctor already has a schedule at this time"}
	}

	if !in.ScheduledAt.After(s.now()) {
		return model.Schedule{}, &model.ValidationError{Reason: "schedule must be in the future"}
	}

	sched, err := s.schedules.Create(ctx, objective, in.CustomerID, in.DoctorID, in.ScheduledAt)
	if err != nil {
		return model.Schedule{}, err
	}
	sched.Customer = customer
	sched.Doctor = doctor

	s.cache.Invalidate(ctx, cache.KindSchedules)

	// Reuses the rows fetched during validation; no second round trip, and
	// enqueue failure never unwinds the booking.
	s.dispatcher.Enqueue(ctx, notify.Job{
		RecipientName:   customer.Name,
		RecipientEmail:  customer.Email,
		CounterpartName: doctor.Name,
		ScheduledAt:     sched.ScheduledAt,
		Objective:       sched.Objective,
		Action:          notify.ActionCreated,
	})

	return sched, nil
}

func (s *Service) List(ctx context.Context, args query.ScheduleListArgs) (model.PaginatedSchedules, error) {
	p := args.Pagination()
	if err := p.Validate(); err != nil {
		return model.PaginatedSchedules{}, err
	}

	key := args.CacheKey()
	if b, ok := s.cache.Get(ctx, key); ok {
		var out model.PaginatedSchedules
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		s.logger.Warn("discarding undecodable cache entry", "key", key)
	}

	filter := args.Filter()

	var (
		items    []model.Schedule
		itemsErr error
	)
	itemsDone := make(chan struct{})
	go func() {
		defer close(itemsDone)
		items, itemsErr = s.schedules.FindMany(ctx, filter, p.Skip(), p.Limit)
	}()
	total, countErr := s.schedules.Count(ctx, filter)
	<-itemsDone
	if itemsErr != nil {
		return model.PaginatedSchedules{}, itemsErr
	}
	if countErr != nil {
		return model.PaginatedSchedules{}, countErr
	}

	out := model.PaginatedSchedules{
		Schedules:  items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: query.TotalPages(total, p.Limit),
	}

	if b, err := json.Marshal(out); err == nil {
		s.cache.Set(ctx, key, b, cache.TTL)
	}
	return out, nil
}

// Get always hits the store: single-item lookups are not cached, only
// paginated listings are.
func (s *Service) Get(ctx context.Context, id string) (model.Schedule, error) {
	return s.schedules.FindByID(ctx, id)
}

// Cancel hard-deletes the schedule. The cancellation notification uses the
// customer/doctor snapshot captured at lookup time, so its content reflects
// the appointment as it existed.
func (s *Service) Cancel(ctx context.Context, id string) (model.Schedule, error) {
	sched, err := s.schedules.FindByID(ctx, id)
	if err != nil {
		return model.Schedule{}, err
	}

	if err := s.schedules.Delete(ctx, id); err != nil {
		return model.Schedule{}, err
	}

	s.cache.Invalidate(ctx, cache.KindSchedules)

	s.dispatcher.Enqueue(ctx, notify.Job{
		RecipientName:   sched.Customer.Name,
		RecipientEmail:  sched.Customer.Email,
		CounterpartName: sched.Doctor.Name,
		ScheduledAt:     sched.ScheduledAt,
		Objective:       sched.Objective,
		Action:          notify.ActionCancelled,
	})

	return sched, nil
}
