package model

import "time"

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Doctor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Schedule carries the customer and doctor rows as they were when the
// schedule was loaded, so callers (and notifications) see a consistent
// snapshot even if either entity changes afterwards.
type Schedule struct {
	ID          string    `json:"id"`
	Objective   string    `json:"objective"`
	CustomerID  string    `json:"customerId"`
	DoctorID    string    `json:"doctorId"`
	ScheduledAt time.Time `json:"scheduledAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Customer    Customer  `json:"customer"`
	Doctor      Doctor    `json:"doctor"`
}

type ScheduleFilter struct {
	CustomerID string
	DoctorID   string
	StartDate  *time.Time
	EndDate    *time.Time
}

type PaginatedSchedules struct {
	Schedules  []Schedule `json:"schedules"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"totalPages"`
}

type PaginatedCustomers struct {
	Customers  []Customer `json:"customers"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"totalPages"`
}

type PaginatedDoctors struct {
	Doctors    []Doctor `json:"doctors"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"totalPages"`
}

type CustomerUpdate struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

type DoctorUpdate struct {
	Name      *string `json:"name"`
	Specialty *string `json:"specialty"`
}
