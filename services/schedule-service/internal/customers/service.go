// Package customers holds the customer-facing registration and profile
// operations behind the schedule service.
package customers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/clinicbook/clinicbook/services/schedule-service/internal/cache"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/model"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/query"
)

type Store interface {
	Create(ctx context.Context, name, email, phone string) (model.Customer, error)
	FindByID(ctx context.Context, id string) (model.Customer, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	FindMany(ctx context.Context, skip, take int) ([]model.Customer, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id string, upd model.CustomerUpdate) (model.Customer, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	store  Store
	cache  cache.Cache
	logger *slog.Logger
}

func NewService(store Store, c cache.Cache, logger *slog.Logger) *Service {
	return &Service{store: store, cache: c, logger: logger}
}

type CreateInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (in *CreateInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" {
		return &model.ValidationError{Reason: "name is required"}
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return &model.ValidationError{Reason: "email must be a valid address"}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (model.Customer, error) {
	if err := in.validate(); err != nil {
		return model.Customer{}, err
	}

	// Friendly pre-check; the unique index on email is the authority and
	// the store translates its violation to the same conflict.
	taken, err := s.store.EmailTaken(ctx, in.Email, "")
	if err != nil {
		return model.Customer{}, err
	}
	if taken {
		return model.Customer{}, &model.ConflictError{Reason: "email already exists"}
	}

	c, err := s.store.Create(ctx, in.Name, in.Email, in.Phone)
	if err != nil {
		return model.Customer{}, err
	}
	s.cache.Invalidate(ctx, cache.KindCustomers)
	return c, nil
}

func (s *Service) List(ctx context.Context, p query.Pagination) (model.PaginatedCustomers, error) {
	if err := p.Validate(); err != nil {
		return model.PaginatedCustomers{}, err
	}

	key := query.ListKey(cache.KindCustomers, p)
	if b, ok := s.cache.Get(ctx, key); ok {
		var out model.PaginatedCustomers
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		s.logger.Warn("discarding undecodable cache entry", "key", key)
	}

	items, err := s.store.FindMany(ctx, p.Skip(), p.Limit)
	if err != nil {
		return model.PaginatedCustomers{}, err
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return model.PaginatedCustomers{}, err
	}

	out := model.PaginatedCustomers{
		Customers:  items,
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

func (s *Service) Get(ctx context.Context, id string) (model.Customer, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, upd model.CustomerUpdate) (model.Customer, error) {
	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			return model.Customer{}, &model.ValidationError{Reason: "email must be a valid address"}
		}
		upd.Email = &email

		taken, err := s.store.EmailTaken(ctx, email, id)
		if err != nil {
			return model.Customer{}, err
		}
		if taken {
			return model.Customer{}, &model.ConflictError{Reason: "email already exists"}
		}
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return model.Customer{}, &model.ValidationError{Reason: "name must not be empty"}
		}
		upd.Name = &name
	}

	c, err := s.store.Update(ctx, id, upd)
	if err != nil {
		return model.Customer{}, err
	}
	s.cache.Invalidate(ctx, cache.KindCustomers)
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.KindCustomers)
	return nil
}
