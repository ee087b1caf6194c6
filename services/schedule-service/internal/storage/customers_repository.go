package storage

import (
	"context"

	"github.com/clinicbook/clinicbook/libs/db"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/model"
)

type CustomerRepository struct {
	pool *db.Pool
}

func NewCustomerRepository(pool *db.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func (r *CustomerRepository) Create(ctx context.Context, name, email, phone string) (model.Customer, error) {
	var c model.Customer
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customers (name, email, phone)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, COALESCE(phone, ''), created_at, updated_at
	`, name, email, nullIfEmpty(phone)).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Customer{}, &model.ConflictError{Reason: "email already exists"}
		}
		return model.Customer{}, err
	}
	return c, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (model.Customer, error) {
	var c model.Customer
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, COALESCE(phone, ''), created_at, updated_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Customer{}, &model.NotFoundError{Kind: "customer"}
		}
		return model.Customer{}, err
	}
	return c, nil
}

func (r *CustomerRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM customers
			WHERE email = $1 AND ($2 = '' OR id <> $2::uuid)
		)
	`, email, excludeID).Scan(&taken)
	return taken, err
}

func (r *CustomerRepository) FindMany(ctx context.Context, skip, take int) ([]model.Customer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, COALESCE(phone, ''), created_at, updated_at
		FROM customers
		ORDER BY created_at DESC
		OFFSET $1
		LIMIT $2
	`, skip, take)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return customers, nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&n)
	return n, err
}

func (r *CustomerRepository) Update(ctx context.Context, id string, upd model.CustomerUpdate) (model.Customer, error) {
	var c model.Customer
	err := r.pool.QueryRow(ctx, `
		UPDATE customers
		SET name = COALESCE($2, name),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			updated_at = now()
		WHERE id = $1
		RETURNING id, name, email, COALESCE(phone, ''), created_at, updated_at
	`, id, upd.Name, upd.Email, upd.Phone).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return model.Customer{}, &model.NotFoundError{Kind: "customer"}
		}
		if isUniqueViolation(err) {
			return model.Customer{}, &model.ConflictError{Reason: "email already exists"}
		}
		return model.Customer{}, err
	}
	return c, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &model.NotFoundError{Kind: "customer"}
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
