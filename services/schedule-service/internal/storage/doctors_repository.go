package storage

import (
	"context"

	"github.com/clinicbook/clinicbook/libs/db"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/model"
)

type DoctorRepository struct {
	pool *db.Pool
}

func NewDoctorRepository(pool *db.Pool) *DoctorRepository {
	return &DoctorRepository{pool: pool}
}

func (r *DoctorRepository) Create(ctx context.Context, name, specialty string) (model.Doctor, error) {
	var d model.Doctor
	err := r.pool.QueryRow(ctx, `
		INSERT INTO doctors (name, specialty)
		VALUES ($1, $2)
		RETURNING id, name, COALESCE(specialty, ''), created_at, updated_at
	`, name, nullIfEmpty(specialty)).Scan(&d.ID, &d.Name, &d.Specialty, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return model.Doctor{}, err
	}
	return d, nil
}

func (r *DoctorRepository) FindByID(ctx context.Context, id string) (model.Doctor, error) {
	var d model.Doctor
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(specialty, ''), created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id).Scan(&d.ID, &d.Name, &d.Specialty, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Doctor{}, &model.NotFoundError{Kind: "doctor"}
		}
		return model.Doctor{}, err
	}
	return d, nil
}

func (r *DoctorRepository) FindMany(ctx context.Context, skip, take int) ([]model.Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(specialty, ''), created_at, updated_at
		FROM doctors
		ORDER BY created_at DESC
		OFFSET $1
		LIMIT $2
	`, skip, take)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	doctors := []model.Doctor{}
	for rows.Next() {
		var d model.Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialty, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		doctors = append(doctors, d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return doctors, nil
}

func (r *DoctorRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM doctors`).Scan(&n)
	return n, err
}

func (r *DoctorRepository) Update(ctx context.Context, id string, upd model.DoctorUpdate) (model.Doctor, error) {
	var d model.Doctor
	err := r.pool.QueryRow(ctx, `
		UPDATE doctors
		SET name = COALESCE($2, name),
			specialty = COALESCE($3, specialty),
			updated_at = now()
		WHERE id = $1
		RETURNING id, name, COALESCE(specialty, ''), created_at, updated_at
	`, id, upd.Name, upd.Specialty).Scan(&d.ID, &d.Name, &d.Specialty, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Doctor{}, &model.NotFoundError{Kind: "doctor"}
		}
		return model.Doctor{}, err
	}
	return d, nil
}

func (r *DoctorRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &model.NotFoundError{Kind: "doctor"}
	}
	return nil
}
