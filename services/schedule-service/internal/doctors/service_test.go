package doctors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/services/schedule-service/internal/cache"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/model"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/query"
)

type fakeStore struct {
	byID       map[string]model.Doctor
	order      []string
	queryCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[string]model.Doctor{}}
}

func (f *fakeStore) Create(_ context.Context, name, specialty string) (model.Doctor, error) {
	d := model.Doctor{
		ID:        uuid.NewString(),
		Name:      name,
		Specialty: specialty,
		CreatedAt: time.Now().UTC(),
	}
	d.UpdatedAt = d.CreatedAt
	f.byID[d.ID] = d
	f.order = append(f.order, d.ID)
	return d, nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (model.Doctor, error) {
	d, ok := f.byID[id]
	if !ok {
		return model.Doctor{}, &model.NotFoundError{Kind: "doctor"}
	}
	return d, nil
}

func (f *fakeStore) FindMany(_ context.Context, skip, take int) ([]model.Doctor, error) {
	f.queryCalls++
	out := []model.Doctor{}
	for i := len(f.order) - 1 - skip; i >= 0 && len(out) < take; i-- {
		out = append(out, f.byID[f.order[i]])
	}
	return out, nil
}

func (f *fakeStore) Count(_ context.Context) (int, error) {
	return len(f.byID), nil
}

func (f *fakeStore) Update(_ context.Context, id string, upd model.DoctorUpdate) (model.Doctor, error) {
	d, ok := f.byID[id]
	if !ok {
		return model.Doctor{}, &model.NotFoundError{Kind: "doctor"}
	}
	if upd.Name != nil {
		d.Name = *upd.Name
	}
	if upd.Specialty != nil {
		d.Specialty = *upd.Specialty
	}
	f.byID[id] = d
	return d, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return &model.NotFoundError{Kind: "doctor"}
	}
	delete(f.byID, id)
	return nil
}

func newService(store *fakeStore) *Service {
	return NewService(store, cache.NewMemoryCache(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreate_RequiresName(t *testing.T) {
	svc := newService(newFakeStore())
	if _, err := svc.Create(context.Background(), CreateInput{Name: "  "}); !model.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestList_PaginationAndCache(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		in := CreateInput{Name: fmt.Sprintf("Dr. %d", i), Specialty: "GP"}
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	p := query.Pagination{Page: 2, Limit: 10}
	out, err := svc.List(ctx, p)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if out.Total != 12 || out.TotalPages != 2 || len(out.Doctors) != 2 {
		t.Fatalf("total=%d totalPages=%d items=%d", out.Total, out.TotalPages, len(out.Doctors))
	}

	if _, err := svc.List(ctx, p); err != nil {
		t.Fatalf("List (cached) error: %v", err)
	}
	if store.queryCalls != 1 {
		t.Fatalf("store queried %d times, want 1", store.queryCalls)
	}

	if err := svc.Delete(ctx, store.order[0]); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := svc.List(ctx, p); err != nil {
		t.Fatalf("List (after delete) error: %v", err)
	}
	if store.queryCalls != 2 {
		t.Fatalf("store queried %d times after invalidation, want 2", store.queryCalls)
	}
}

func TestUpdate_BlankNameRejected(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	ctx := context.Background()

	d, _ := svc.Create(ctx, CreateInput{Name: "Dr. Who", Specialty: "Time"})

	blank := ""
	if _, err := svc.Update(ctx, d.ID, model.DoctorUpdate{Name: &blank}); !model.IsValidation(err) {
		t.Fatal("expected validation error for blank name")
	}

	spec := "Cardiology"
	got, err := svc.Update(ctx, d.ID, model.DoctorUpdate{Specialty: &spec})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.Specialty != "Cardiology" || got.Name != "Dr. Who" {
		t.Fatalf("partial update result: %+v", got)
	}
}
