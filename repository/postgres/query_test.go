package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamyam/crm-tasks/domain"
	"github.com/gamyam/crm-tasks/repository"
)

func TestListPredicateComposesEqualityFilters(t *testing.T) {
	q := repository.TaskQuery{
		Status:         domain.TaskStatusPending,
		Priority:       domain.TaskPriorityHigh,
		AssignedTo:     "u1",
		IncludeDeleted: true,
	}

	p := listPredicate(q)

	assert.Equal(t, " WHERE status = $1 AND priority = $2 AND assigned_to = $3", p.where())
	assert.Equal(t, []interface{}{"Pending", "High", "u1"}, p.args)
}

func TestListPredicateOmitsAbsentFilters(t *testing.T) {
	p := listPredicate(repository.TaskQuery{IncludeDeleted: true})

	assert.Empty(t, p.where())
	assert.Empty(t, p.args)
}

func TestListPredicateSearch(t *testing.T) {
	p := listPredicate(repository.TaskQuery{
		Status:         domain.TaskStatusPending,
		IncludeDeleted: true,
		Page:           repository.Page{Search: "client"},
	})

	where := p.where()
	assert.Contains(t, where, "status = $1")
	assert.Contains(t, where, "title ILIKE $2")
	assert.Contains(t, where, "description ILIKE $2")
	assert.Contains(t, where, "assigned_to ILIKE $2")
	assert.Contains(t, where, "array_to_string(contributors, ' ') ILIKE $2")
	require.Len(t, p.args, 2)
	assert.Equal(t, "%client%", p.args[1])
}

func TestListPredicateExcludesDeletedOnDemand(t *testing.T) {
	p := listPredicate(repository.TaskQuery{})

	assert.Equal(t, " WHERE deleted_by = ''", p.where())
}

func TestFilterPredicateSingleLinkage(t *testing.T) {
	f := repository.TaskFilter{
		Links:          domain.TaskLinks{LeadID: "lead-1"},
		IncludeDeleted: true,
	}

	p := filterPredicate(f)

	// only the present linkage id participates; no status predicate appears
	// when status is omitted
	assert.Equal(t, " WHERE lead_id = $1", p.where())
	assert.Equal(t, []interface{}{"lead-1"}, p.args)
}

func TestFilterPredicateMultipleLinkagesAndStatus(t *testing.T) {
	f := repository.TaskFilter{
		Links: domain.TaskLinks{
			DealID:    "deal-7",
			ContactID: "contact-3",
		},
		Status:         domain.TaskStatusOverdue,
		IncludeDeleted: true,
	}

	p := filterPredicate(f)

	assert.Equal(t, " WHERE deal_id = $1 AND contact_id = $2 AND status = $3", p.where())
	assert.Equal(t, []interface{}{"deal-7", "contact-3", "Overdue"}, p.args)
}

func TestWindowDefaults(t *testing.T) {
	page := repository.Page{}
	page.Normalize()

	assert.Equal(t, " ORDER BY due_date DESC LIMIT 10 OFFSET 0", window(page))
}

func TestWindowPagingAndSort(t *testing.T) {
	page := repository.Page{Page: 3, Limit: 5, SortBy: "createdAt", SortOrder: repository.SortAsc}
	page.Normalize()

	assert.Equal(t, " ORDER BY created_at ASC LIMIT 5 OFFSET 10", window(page))
}

func TestWindowRejectsUnknownSortColumn(t *testing.T) {
	page := repository.Page{SortBy: "deleted_by; DROP TABLE tasks"}
	page.Normalize()

	assert.Equal(t, " ORDER BY due_date DESC LIMIT 10 OFFSET 0", window(page))
}
