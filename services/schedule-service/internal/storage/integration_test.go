package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/clinicbook/clinicbook/libs/db"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/model"
)

// These tests need a migrated database. They are skipped unless
// TEST_DATABASE_URL points at one.
func openTestPool(t *testing.T) *db.Pool {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := db.Open(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "TRUNCATE schedules, customers, doctors CASCADE")
		pool.Close()
	})
	return pool
}

func TestCustomerRepository_Integration(t *testing.T) {
	pool := openTestPool(t)
	repo := NewCustomerRepository(pool)
	ctx := context.Background()

	email := fmt.Sprintf("it-%d@example.com", time.Now().UnixNano())
	c, err := repo.Create(ctx, "Integration Test", email, "555-0100")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		t.Fatalf("missing generated fields: %+v", c)
	}

	if _, err := repo.Create(ctx, "Dup", email, ""); !model.IsConflict(err) {
		t.Fatalf("duplicate email: expected conflict, got %v", err)
	}

	taken, err := repo.EmailTaken(ctx, email, c.ID)
	if err != nil {
		t.Fatalf("EmailTaken: %v", err)
	}
	if taken {
		t.Fatal("own row must be excluded from the email check")
	}

	got, err := repo.FindByID(ctx, c.ID)
	if err != nil || got.Email != email {
		t.Fatalf("FindByID: %+v, %v", got, err)
	}

	if err := repo.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, c.ID); !model.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestScheduleRepository_Integration(t *testing.T) {
	pool := openTestPool(t)
	customerRepo := NewCustomerRepository(pool)
	doctorRepo := NewDoctorRepository(pool)
	repo := NewScheduleRepository(pool)
	ctx := context.Background()

	c, err := customerRepo.Create(ctx, "Pat", fmt.Sprintf("pat-%d@example.com", time.Now().UnixNano()), "")
	if err != nil {
		t.Fatalf("customer: %v", err)
	}
	d, err := doctorRepo.Create(ctx, "Dr. It", "Testing")
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}

	base := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	later := base.Add(2 * time.Hour)

	// Insert out of order to verify scheduledAt ascending ordering.
	if _, err := repo.Create(ctx, "second", c.ID, d.ID, later); err != nil {
		t.Fatalf("Create later: %v", err)
	}
	s1, err := repo.Create(ctx, "first", c.ID, d.ID, base)
	if err != nil {
		t.Fatalf("Create base: %v", err)
	}

	if _, err := repo.Create(ctx, "dup slot", c.ID, d.ID, base); !model.IsConflict(err) {
		t.Fatalf("same doctor and slot: expected conflict, got %v", err)
	}

	got, err := repo.FindByID(ctx, s1.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Customer.Name != "Pat" || got.Doctor.Name != "Dr. It" {
		t.Fatalf("joined snapshots missing: %+v", got)
	}

	items, err := repo.FindMany(ctx, model.ScheduleFilter{DoctorID: d.ID}, 0, 10)
	if err != nil {
		t.Fatalf("FindMany: %v", err)
	}
	if len(items) != 2 || items[0].Objective != "first" || items[1].Objective != "second" {
		t.Fatalf("expected ascending order by scheduledAt: %+v", items)
	}

	existing, found, err := repo.FindByDoctorAt(ctx, d.ID, base)
	if err != nil || !found || existing.ID != s1.ID {
		t.Fatalf("FindByDoctorAt: %+v, %v, %v", existing, found, err)
	}

	count, err := repo.Count(ctx, model.ScheduleFilter{CustomerID: c.ID})
	if err != nil || count != 2 {
		t.Fatalf("Count = %d, %v", count, err)
	}
}
