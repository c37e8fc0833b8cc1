package postgres

import (
	"fmt"
	"strings"

	"github.com/gamyam/crm-tasks/repository"
)

// sortColumns whitelists the API sort names against real columns. Anything
// outside the map falls back to the due-date default.
var sortColumns = map[string]string{
	"dueDate":   "due_date",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
	"type":      "type",
}

// predicate accumulates ANDed WHERE clauses with numbered placeholders.
type predicate struct {
	clauses []string
	args    []interface{}
}

func (p *predicate) eq(column, value string) {
	if value == "" {
		return
	}
	p.args = append(p.args, value)
	p.clauses = append(p.clauses, fmt.Sprintf("%s = $%d", column, len(p.args)))
}

// search ORs a case-insensitive substring match over title, description,
// assignee, and the contributors array.
func (p *predicate) search(term string) {
	if term == "" {
		return
	}
	pattern := "%" + term + "%"
	n := len(p.args) + 1
	p.clauses = append(p.clauses, fmt.Sprintf(
		"(title ILIKE $%d OR description ILIKE $%d OR assigned_to ILIKE $%d OR array_to_string(contributors, ' ') ILIKE $%d)",
		n, n, n, n,
	))
	p.args = append(p.args, pattern)
}

func (p *predicate) where() string {
	if len(p.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.clauses, " AND ")
}

// listPredicate translates the general list query into a WHERE fragment.
func listPredicate(q repository.TaskQuery) *predicate {
	p := &predicate{}
	p.eq("status", string(q.Status))
	p.eq("priority", string(q.Priority))
	p.eq("type", string(q.Type))
	p.eq("assigned_to", q.AssignedTo)
	p.eq("organization_id", q.OrganizationID)
	if !q.IncludeDeleted {
		p.clauses = append(p.clauses, "deleted_by = ''")
	}
	p.search(q.Search)
	return p
}

// filterPredicate translates the cross-entity filter into a WHERE fragment.
// Absent linkage ids are omitted, not matched against empty.
func filterPredicate(f repository.TaskFilter) *predicate {
	p := &predicate{}
	p.eq("lead_id", f.Links.LeadID)
	p.eq("deal_id", f.Links.DealID)
	p.eq("contact_id", f.Links.ContactID)
	p.eq("event_id", f.Links.EventID)
	p.eq("note_id", f.Links.NoteID)
	p.eq("mail_id", f.Links.MailID)
	p.eq("ref_task_id", f.Links.RefTaskID)
	p.eq("status", string(f.Status))
	if !f.IncludeDeleted {
		p.clauses = append(p.clauses, "deleted_by = ''")
	}
	p.search(f.Search)
	return p
}

// window renders the deterministic ordering and paging suffix.
func window(page repository.Page) string {
	column, ok := sortColumns[page.SortBy]
	if !ok {
		column = sortColumns[repository.DefaultSortField]
	}
	direction := "DESC"
	if page.SortOrder == repository.SortAsc {
		direction = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s LIMIT %d OFFSET %d", column, direction, page.Limit, page.Offset())
}
