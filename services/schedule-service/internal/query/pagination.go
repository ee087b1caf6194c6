// Package query translates filter/pagination arguments into store queries
// and the deterministic cache keys the list caches are addressed by.
package query

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/clinicbook/clinicbook/services/schedule-service/internal/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

type Pagination struct {
	Page  int
	Limit int
}

// ParsePagination parses raw query-string values. Empty values take the
// defaults; anything non-numeric or below 1 is rejected.
func ParsePagination(pageRaw, limitRaw string) (Pagination, error) {
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}

	if pageRaw != "" {
		n, err := strconv.Atoi(pageRaw)
		if err != nil || n < 1 {
			return Pagination{}, &model.ValidationError{Reason: "page must be an integer >= 1"}
		}
		p.Page = n
	}
	if limitRaw != "" {
		n, err := strconv.Atoi(limitRaw)
		if err != nil || n < 1 {
			return Pagination{}, &model.ValidationError{Reason: "limit must be an integer >= 1"}
		}
		p.Limit = n
	}
	return p, nil
}

func (p Pagination) Validate() error {
	if p.Page < 1 {
		return &model.ValidationError{Reason: "page must be an integer >= 1"}
	}
	if p.Limit < 1 {
		return &model.ValidationError{Reason: "limit must be an integer >= 1"}
	}
	return nil
}

func (p Pagination) Skip() int {
	return (p.Page - 1) * p.Limit
}

// ListKey is the cache key for unfiltered listings. The format is persisted
// state shared with external cache tooling; do not change it.
func ListKey(kind string, p Pagination) string {
	return fmt.Sprintf("%s:page:%d:limit:%d", kind, p.Page, p.Limit)
}

func TotalPages(total, limit int) int {
	return (total + limit - 1) / limit
}

// ScheduleListArgs is the full argument set of a schedule listing. Its cache
// key is a deterministic serialization of the whole set: identical arguments
// always map to the same key, and filter presence/absence changes the key.
type ScheduleListArgs struct {
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	CustomerID string     `json:"customerId,omitempty"`
	DoctorID   string     `json:"doctorId,omitempty"`
	StartDate  *time.Time `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
}

func (a ScheduleListArgs) Pagination() Pagination {
	return Pagination{Page: a.Page, Limit: a.Limit}
}

func (a ScheduleListArgs) Filter() model.ScheduleFilter {
	return model.ScheduleFilter{
		CustomerID: a.CustomerID,
		DoctorID:   a.DoctorID,
		StartDate:  a.StartDate,
		EndDate:    a.EndDate,
	}
}

func (a ScheduleListArgs) CacheKey() string {
	// encoding/json emits struct fields in declaration order, which makes
	// the serialization stable across calls.
	b, err := json.Marshal(a)
	if err != nil {
		return fmt.Sprintf("schedules:page:%d:limit:%d", a.Page, a.Limit)
	}
	return "schedules:" + string(b)
}
