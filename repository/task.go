package repository

import (
	"context"
	"time"

	"github.com/gamyam/crm-tasks/domain"
)

// SortOrder mirrors the API-level sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	// DefaultSortField is the API name of the default ordering column.
	DefaultSortField = "dueDate"
)

// Page holds pagination and ordering shared by every list-style query.
// Zero values fall back to the documented defaults when the query runs.
type Page struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder SortOrder
	Search    string
}

// Normalize clamps pagination to the documented defaults.
func (p *Page) Normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.SortBy == "" {
		p.SortBy = DefaultSortField
	}
	if p.SortOrder != SortAsc {
		p.SortOrder = SortDesc
	}
}

// Offset computes the window start for the normalized page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TaskQuery drives the general list operation. Empty fields are omitted from
// the predicate, never treated as "match nothing". IncludeDeleted keeps
// soft-deleted rows visible, matching the historical behavior; callers flip
// it off explicitly when they want live tasks only.
type TaskQuery struct {
	Page

	Status         domain.TaskStatus
	Priority       domain.TaskPriority
	Type           domain.TaskType
	AssignedTo     string
	OrganizationID string

	IncludeDeleted bool
}

// TaskFilter drives the cross-entity lookup: tasks selected by their linkage
// to other CRM objects. Present ids are ANDed together.
type TaskFilter struct {
	Page

	Links  domain.TaskLinks
	Status domain.TaskStatus

	IncludeDeleted bool
}

// TaskRepository is the persistence port for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// List and Filter return the matching window plus the total count for the
	// same predicate.
	List(ctx context.Context, query TaskQuery) ([]domain.Task, int, error)
	Filter(ctx context.Context, filter TaskFilter) ([]domain.Task, int, error)

	// Update applies only the fields set on the patch and returns the stored
	// row; domain.ErrTaskNotFound when the id does not resolve.
	Update(ctx context.Context, id string, patch domain.TaskUpdate) (*domain.Task, error)
	SoftDelete(ctx context.Context, id string, deletedBy string) (*domain.Task, error)
	Save(ctx context.Context, task *domain.Task) error

	// FindOverdue selects Pending tasks whose due date fell inside
	// (now-lookback, now].
	FindOverdue(ctx context.Context, now time.Time, lookback time.Duration) ([]domain.Task, error)
	// UpdateStatusBulk atomically moves every id to the given status and
	// reports how many rows changed.
	UpdateStatusBulk(ctx context.Context, ids []string, status domain.TaskStatus) (int64, error)
}
