// Package doctors manages the practitioner directory.
package doctors

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/clinicbook/clinicbook/services/schedule-service/internal/cache"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/model"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/query"
)

type Store interface {
	Create(ctx context.Context, name, specialty string) (model.Doctor, error)
	FindByID(ctx context.Context, id string) (model.Doctor, error)
	FindMany(ctx context.Context, skip, take int) ([]model.Doctor, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id string, upd model.DoctorUpdate) (model.Doctor, error)
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
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (model.Doctor, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Doctor{}, &model.ValidationError{Reason: "name is required"}
	}

	d, err := s.store.Create(ctx, name, strings.TrimSpace(in.Specialty))
	if err != nil {
		return model.Doctor{}, err
	}
	s.cache.Invalidate(ctx, cache.KindDoctors)
	return d, nil
}

func (s *Service) List(ctx context.Context, p query.Pagination) (model.PaginatedDoctors, error) {
	if err := p.Validate(); err != nil {
		return model.PaginatedDoctors{}, err
	}

	key := query.ListKey(cache.KindDoctors, p)
	if b, ok := s.cache.Get(ctx, key); ok {
		var out model.PaginatedDoctors
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		s.logger.Warn("discarding undecodable cache entry", "key", key)
	}

	items, err := s.store.FindMany(ctx, p.Skip(), p.Limit)
	if err != nil {
		return model.PaginatedDoctors{}, err
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return model.PaginatedDoctors{}, err
	}

	out := model.PaginatedDoctors{
		Doctors:    items,
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

func (s *Service) Get(ctx context.Context, id string) (model.Doctor, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, upd model.DoctorUpdate) (model.Doctor, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return model.Doctor{}, &model.ValidationError{Reason: "name must not be empty"}
		}
		upd.Name = &name
	}

	d, err := s.store.Update(ctx, id, upd)
	if err != nil {
		return model.Doctor{}, err
	}
	s.cache.Invalidate(ctx, cache.KindDoctors)
	return d, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.KindDoctors)
	return nil
}
