package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clinicbook/clinicbook/libs/db"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/model"
)

const scheduleColumns = `
	s.id, s.objective, s.customer_id, s.doctor_id, s.scheduled_at, s.created_at, s.updated_at,
	c.id, c.name, c.email, COALESCE(c.phone, ''), c.created_at, c.updated_at,
	d.id, d.name, COALESCE(d.specialty, ''), d.created_at, d.updated_at`

const scheduleJoins = `
	FROM schedules s
	JOIN customers c ON c.id = s.customer_id
	JOIN doctors d ON d.id = s.doctor_id`

type ScheduleRepository struct {
	pool *db.Pool
}

func NewScheduleRepository(pool *db.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// Create persists a schedule and relies on the UNIQUE (doctor_id, scheduled_at)
// constraint as the authoritative double-booking guard. The returned row
// carries no customer/doctor snapshot; the caller already holds both from its
// existence checks.
func (r *ScheduleRepository) Create(ctx context.Context, objective, customerID, doctorID string, scheduledAt time.Time) (model.Schedule, error) {
	s := model.Schedule{
		Objective:   objective,
		CustomerID:  customerID,
		DoctorID:    doctorID,
		ScheduledAt: scheduledAt,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO schedules (objective, customer_id, doctor_id, scheduled_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, objective, customerID, doctorID, scheduledAt).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Schedule{}, &model.ConflictError{Reason: "doctor already has a schedule at this time"}
		}
		return model.Schedule{}, err
	}
	return s, nil
}

func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (model.Schedule, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+scheduleColumns+scheduleJoins+` WHERE s.id = $1`, id)
	s, err := scanSchedule(row)
	if err != nil {
		if isNoRows(err) {
			return model.Schedule{}, &model.NotFoundError{Kind: "schedule"}
		}
		return model.Schedule{}, err
	}
	return s, nil
}

// FindByDoctorAt is the optimistic conflict pre-check. It is advisory only: a
// racing writer can still collide between this lookup and Create, which is why
// Create translates the constraint violation itself.
func (r *ScheduleRepository) FindByDoctorAt(ctx context.Context, doctorID string, scheduledAt time.Time) (model.Schedule, bool, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+scheduleColumns+scheduleJoins+` WHERE s.doctor_id = $1 AND s.scheduled_at = $2`,
		doctorID, scheduledAt)
	s, err := scanSchedule(row)
	if err != nil {
		if isNoRows(err) {
			return model.Schedule{}, false, nil
		}
		return model.Schedule{}, false, err
	}
	return s, true, nil
}

func (r *ScheduleRepository) FindMany(ctx context.Context, f model.ScheduleFilter, skip, take int) ([]model.Schedule, error) {
	where, args := buildScheduleWhere(f)
	args = append(args, skip, take)
	q := fmt.Sprintf(`SELECT %s %s %s ORDER BY s.scheduled_at ASC OFFSET $%d LIMIT $%d`,
		scheduleColumns, scheduleJoins, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := []model.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return schedules, nil
}

func (r *ScheduleRepository) Count(ctx context.Context, f model.ScheduleFilter) (int, error) {
	where, args := buildScheduleWhere(f)
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM schedules s `+where, args...).Scan(&n)
	return n, err
}

func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &model.NotFoundError{Kind: "schedule"}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (model.Schedule, error) {
	var s model.Schedule
	err := row.Scan(
		&s.ID, &s.Objective, &s.CustomerID, &s.DoctorID, &s.ScheduledAt, &s.CreatedAt, &s.UpdatedAt,
		&s.Customer.ID, &s.Customer.Name, &s.Customer.Email, &s.Customer.Phone, &s.Customer.CreatedAt, &s.Customer.UpdatedAt,
		&s.Doctor.ID, &s.Doctor.Name, &s.Doctor.Specialty, &s.Doctor.CreatedAt, &s.Doctor.UpdatedAt,
	)
	if err != nil {
		return model.Schedule{}, err
	}
	return s, nil
}

func buildScheduleWhere(f model.ScheduleFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.CustomerID != "" {
		args = append(args, f.CustomerID)
		clauses = append(clauses, fmt.Sprintf("s.customer_id = $%d", len(args)))
	}
	if f.DoctorID != "" {
		args = append(args, f.DoctorID)
		clauses = append(clauses, fmt.Sprintf("s.doctor_id = $%d", len(args)))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		clauses = append(clauses, fmt.Sprintf("s.scheduled_at >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		clauses = append(clauses, fmt.Sprintf("s.scheduled_at <= $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}
